package models

import "fmt"

// Member invite status values.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

// Member represents a participant in a group.
//
// A member keyed by an authenticated user is "registered"; a member added by
// name/email before that person has logged in is a placeholder keyed by a
// locally generated ID. Placeholders are re-keyed to the user's ID when the
// invite is reconciled (see service.MembershipService).
type Member struct {
	// ID is derived from the group ID plus either the linked user ID or a
	// locally generated placeholder ID. See MemberID.
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is the display name shown in the roster and balance views.
	Name string

	// Email is optional; it drives invite reconciliation and is matched
	// case-insensitively.
	Email string

	// Phone is optional contact info, stored field-encrypted.
	Phone string

	// IsAdmin grants group administration rights (adding members, archiving).
	IsAdmin bool

	// IsRegistered is true once the member is linked to an authenticated user.
	IsRegistered bool

	// InviteStatus is InviteStatusPending for placeholders and
	// InviteStatusAccepted once linked.
	InviteStatus string

	// CreatedAt is the Unix timestamp when the member record was created.
	CreatedAt int64
}

// MemberID derives the member document key from a group ID and either a user
// ID or a placeholder ID. Within a group at most one member may carry a given
// user ID.
func MemberID(groupID, userOrLocalID string) string {
	return fmt.Sprintf("%s_%s", groupID, userOrLocalID)
}

// IsPlaceholder reports whether this member is still awaiting reconciliation
// with an authenticated user.
func (m *Member) IsPlaceholder() bool {
	return !m.IsRegistered && m.InviteStatus == InviteStatusPending
}
