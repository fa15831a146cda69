package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/fieldcrypt"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// MembershipService manages groups and their member rosters: creation,
// admin-gated member addition, archival, and reconciliation of email invites
// into authenticated identities. It is the only component that writes member
// records.
type MembershipService struct {
	store storage.Store
	crypt *fieldcrypt.Codec
}

// NewMembershipService creates a MembershipService with the given storage
// backend and field codec.
func NewMembershipService(store storage.Store, crypt *fieldcrypt.Codec) *MembershipService {
	return &MembershipService{store: store, crypt: crypt}
}

// CreateGroupInput carries the caller-supplied fields for a new group.
type CreateGroupInput struct {
	Name        string
	Description string
	Address     string
	Categories  []string
}

// AddMemberInput carries the caller-supplied fields for a new member.
type AddMemberInput struct {
	Name    string
	Email   string
	Phone   string
	IsAdmin bool
}

// CreateGroup creates a group and auto-adds the creator as a registered
// admin member.
func (s *MembershipService) CreateGroup(ctx context.Context, principal models.Principal, input CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.KindValidation, "group name is required")
	}

	categories := input.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}

	group := &models.Group{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Address:     input.Address,
		CreatedBy:   principal.ID,
		Status:      models.GroupStatusActive,
		MemberCount: 1,
		Categories:  categories,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, storeErr(err, "failed to create group")
	}

	creator := &models.Member{
		ID:           models.MemberID(group.ID, principal.ID),
		GroupID:      group.ID,
		Name:         principal.DisplayName,
		Email:        strings.ToLower(principal.Email),
		IsAdmin:      true,
		IsRegistered: true,
		InviteStatus: models.InviteStatusAccepted,
	}
	if err := s.store.CreateMember(ctx, creator); err != nil {
		return nil, storeErr(err, "failed to add creator member")
	}

	slog.Info("group created", "group_id", group.ID, "created_by", principal.ID)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *MembershipService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to get group")
	}
	return group, nil
}

// ArchiveGroup soft-deletes a group. Admin only; archived groups reject all
// further mutation but stay readable.
func (s *MembershipService) ArchiveGroup(ctx context.Context, principal models.Principal, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return storeErr(err, "failed to get group")
	}
	if err := s.requireAdmin(ctx, groupID, principal.ID); err != nil {
		return err
	}
	if !group.IsActive() {
		return nil // already archived
	}
	group.Status = models.GroupStatusArchived
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return storeErr(err, "failed to archive group")
	}
	slog.Info("group archived", "group_id", groupID, "by", principal.ID)
	return nil
}

// AddMember adds a member to an active group. The requesting principal must
// be a group admin.
//
// If the email already belongs to a registered user, the member is created
// linked and accepted, keyed by that user's ID. Otherwise a placeholder is
// created with a locally generated key and a pending invite; it is re-keyed
// when the invitee first authenticates (see IsGroupMember).
func (s *MembershipService) AddMember(ctx context.Context, principal models.Principal, groupID string, input AddMemberInput) (*models.Member, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.KindValidation, "member name is required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to get group")
	}
	if err := s.requireAdmin(ctx, groupID, principal.ID); err != nil {
		return nil, err
	}
	if !group.IsActive() {
		return nil, apperr.New(apperr.KindState, "group %s is archived", groupID)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	member := &models.Member{
		GroupID:      groupID,
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		IsAdmin:      input.IsAdmin,
		InviteStatus: models.InviteStatusPending,
	}

	// An email that already belongs to a registered user skips the invite
	// dance entirely.
	if email != "" {
		if user, err := s.store.GetUserByEmail(ctx, email); err == nil {
			member.ID = models.MemberID(groupID, user.ID)
			member.IsRegistered = true
			member.InviteStatus = models.InviteStatusAccepted
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, storeErr(err, "failed to look up user by email")
		}
	}
	if member.ID == "" {
		member.ID = models.MemberID(groupID, uuid.New().String())
	}

	if input.Phone != "" {
		encrypted, err := s.crypt.Encrypt(input.Phone)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStore, err, "failed to encrypt phone")
		}
		member.Phone = encrypted
	}

	if existing, err := s.store.GetMember(ctx, groupID, member.ID); err == nil && existing != nil {
		return nil, apperr.New(apperr.KindConflict, "member %s already exists in group %s", member.ID, groupID)
	}

	if err := s.store.CreateMember(ctx, member); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, apperr.Wrap(apperr.KindConflict, err, "member %s already exists in group %s", member.ID, groupID)
		}
		return nil, storeErr(err, "failed to create member")
	}

	// Read-then-write; concurrent adds can undercount. The counter is
	// advisory, the roster is the source of truth.
	group.MemberCount++
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Warn("failed to bump member count", "group_id", groupID, "error", err)
	}

	slog.Info("member added", "group_id", groupID, "member_id", member.ID,
		"registered", member.IsRegistered, "invite_status", member.InviteStatus)
	return member, nil
}

// ListMembers returns the roster with contact fields decrypted best-effort.
func (s *MembershipService) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to list members")
	}
	for _, member := range members {
		if member.Phone != "" {
			member.Phone = s.crypt.Decrypt(member.Phone)
		}
	}
	return members, nil
}

// IsGroupAdmin reports whether the user is an admin member of the group.
func (s *MembershipService) IsGroupAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	member, err := s.store.GetMember(ctx, groupID, models.MemberID(groupID, userID))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "failed to get member")
	}
	return member.IsAdmin, nil
}

// IsGroupMember reports whether the principal belongs to the group. When no
// direct match exists but the principal's email matches a pending
// placeholder, the invite is reconciled as a side effect and the check
// succeeds.
func (s *MembershipService) IsGroupMember(ctx context.Context, groupID string, principal models.Principal) (bool, error) {
	_, err := s.store.GetMember(ctx, groupID, models.MemberID(groupID, principal.ID))
	if err == nil {
		// Already linked. A placeholder for the same email may linger from a
		// reconciliation that crashed between create and delete; sweep it.
		s.sweepStalePlaceholder(ctx, groupID, principal)
		return true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, storeErr(err, "failed to get member")
	}
	if principal.Email == "" {
		return false, nil
	}
	return s.reconcileInvite(ctx, groupID, principal)
}

// reconcileInvite turns a pending placeholder member into a registered one
// keyed by the principal's user ID (state machine: pending -> accepted).
//
// This is a create-then-delete across two documents with no transaction. A
// crash in between leaves both records; the sweep in IsGroupMember removes
// the leftover on the next check. Expenses and settlements recorded against
// the placeholder ID are deliberately not rewritten, so historical balances
// stay attached to the old ID.
func (s *MembershipService) reconcileInvite(ctx context.Context, groupID string, principal models.Principal) (bool, error) {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return false, storeErr(err, "failed to list members")
	}

	var placeholder *models.Member
	for _, member := range members {
		if member.IsPlaceholder() && strings.EqualFold(member.Email, principal.Email) {
			placeholder = member
			break
		}
	}
	if placeholder == nil {
		return false, nil
	}

	linked := &models.Member{
		ID:           models.MemberID(groupID, principal.ID),
		GroupID:      groupID,
		Name:         placeholder.Name,
		Email:        strings.ToLower(principal.Email),
		Phone:        placeholder.Phone,
		IsAdmin:      placeholder.IsAdmin,
		IsRegistered: true,
		InviteStatus: models.InviteStatusAccepted,
	}
	if err := s.store.CreateMember(ctx, linked); err != nil {
		// A concurrent or retried reconciliation already created it; carry on
		// to placeholder cleanup.
		if !strings.Contains(err.Error(), "already exists") {
			return false, storeErr(err, "failed to create linked member")
		}
	}

	if err := s.store.DeleteMember(ctx, groupID, placeholder.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("failed to delete placeholder after reconciliation",
			"group_id", groupID, "placeholder_id", placeholder.ID, "error", err)
	}

	slog.Info("invite reconciled", "group_id", groupID,
		"placeholder_id", placeholder.ID, "member_id", linked.ID)
	return true, nil
}

// sweepStalePlaceholder removes a pending placeholder whose email matches an
// already-linked principal. Best-effort; failures are logged, never surfaced.
func (s *MembershipService) sweepStalePlaceholder(ctx context.Context, groupID string, principal models.Principal) {
	if principal.Email == "" {
		return
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		slog.Warn("placeholder sweep skipped", "group_id", groupID, "error", err)
		return
	}
	for _, member := range members {
		if member.IsPlaceholder() && strings.EqualFold(member.Email, principal.Email) {
			if err := s.store.DeleteMember(ctx, groupID, member.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				slog.Warn("failed to delete stale placeholder",
					"group_id", groupID, "placeholder_id", member.ID, "error", err)
			}
		}
	}
}

func (s *MembershipService) requireAdmin(ctx context.Context, groupID, userID string) error {
	isAdmin, err := s.IsGroupAdmin(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperr.New(apperr.KindPermission, "user %s is not an admin of group %s", userID, groupID)
	}
	return nil
}

// storeErr maps a storage failure onto the error taxonomy: missing records
// become not-found, everything else a store error.
func storeErr(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "%s", msg)
	}
	return apperr.Wrap(apperr.KindStore, err, "%s", msg)
}
