// Package fieldcrypt encrypts individual record fields (member phone
// numbers) before they reach the store. It is deliberately best-effort on
// the read path: a value that fails to decrypt is returned as-is so a lost
// or rotated key never makes the roster unreadable.
package fieldcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Codec encrypts and decrypts field values with a static key.
type Codec struct {
	key []byte
}

// New derives a codec key from the configured secret. Any non-empty secret
// works; it is hashed to the required key size.
func New(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("field encryption secret must not be empty")
	}
	sum := sha256.Sum256([]byte(secret))
	return &Codec{key: sum[:]}, nil
}

// Encrypt transforms a plaintext value into an opaque base64 string.
// Empty values pass through unchanged.
func (c *Codec) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns the raw input unchanged when the
// value is not a valid ciphertext, so callers can treat the result as
// best-effort without branching.
func (c *Codec) Decrypt(opaque string) string {
	if opaque == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		return opaque
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return opaque
	}
	if len(raw) < aead.NonceSize() {
		return opaque
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return opaque
	}
	return string(plain)
}
