package service

import (
	"context"
	"log/slog"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// SettlementService records direct payments between members, independent of
// any specific expense. Settlements never touch the group's expense total.
type SettlementService struct {
	store      storage.Store
	membership *MembershipService
}

// NewSettlementService creates a SettlementService with the given storage
// backend and membership checker.
func NewSettlementService(store storage.Store, membership *MembershipService) *SettlementService {
	return &SettlementService{store: store, membership: membership}
}

// AddSettlementInput carries the caller-supplied fields for a new settlement.
type AddSettlementInput struct {
	FromMemberID string
	ToMemberID   string
	Amount       float64
	Note         string
	Date         int64
}

// AddSettlement validates and records a payment between two members.
func (s *SettlementService) AddSettlement(ctx context.Context, principal models.Principal, groupID string, input AddSettlementInput) (*models.Settlement, error) {
	isMember, err := s.membership.IsGroupMember(ctx, groupID, principal)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.New(apperr.KindPermission, "user %s is not a member of group %s", principal.ID, groupID)
	}

	if input.FromMemberID == "" || input.ToMemberID == "" {
		return nil, apperr.New(apperr.KindValidation, "settlement requires both a payer and a receiver")
	}
	if input.FromMemberID == input.ToMemberID {
		return nil, apperr.New(apperr.KindValidation, "settlement payer and receiver must differ")
	}
	if input.Amount <= 0 {
		return nil, apperr.New(apperr.KindValidation, "settlement amount must be positive, got %.2f", input.Amount)
	}

	settlement := &models.Settlement{
		GroupID:      groupID,
		FromMemberID: input.FromMemberID,
		ToMemberID:   input.ToMemberID,
		Amount:       input.Amount,
		Note:         input.Note,
		Date:         input.Date,
		CreatedBy:    principal.ID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, storeErr(err, "failed to create settlement")
	}

	slog.Info("settlement recorded", "group_id", groupID, "settlement_id", settlement.ID,
		"from", settlement.FromMemberID, "to", settlement.ToMemberID, "amount", settlement.Amount)
	return settlement, nil
}

// ListSettlements returns all settlements for a group, newest first. Member
// only.
func (s *SettlementService) ListSettlements(ctx context.Context, principal models.Principal, groupID string) ([]*models.Settlement, error) {
	isMember, err := s.membership.IsGroupMember(ctx, groupID, principal)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.New(apperr.KindPermission, "user %s is not a member of group %s", principal.ID, groupID)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to list settlements")
	}
	return settlements, nil
}
