package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/money"
	"github.com/divvyhq/divvy/internal/storage"
)

// ExpenseService records shared expenses with their per-member splits. It is
// the only component that writes expense records; balances are derived on
// demand, never eagerly recomputed here.
type ExpenseService struct {
	store      storage.Store
	membership *MembershipService
}

// NewExpenseService creates an ExpenseService with the given storage backend
// and membership checker.
func NewExpenseService(store storage.Store, membership *MembershipService) *ExpenseService {
	return &ExpenseService{store: store, membership: membership}
}

// AddExpenseInput carries the caller-supplied fields for a new expense.
type AddExpenseInput struct {
	Description string
	Amount      float64
	Category    string
	Date        int64
	PaidBy      string
	SplitType   string
	Splits      []models.Split
}

// AddExpense validates and records an expense for the group, then bumps the
// group's running expense total.
func (s *ExpenseService) AddExpense(ctx context.Context, principal models.Principal, groupID string, input AddExpenseInput) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to get group")
	}
	isMember, err := s.membership.IsGroupMember(ctx, groupID, principal)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.New(apperr.KindPermission, "user %s is not a member of group %s", principal.ID, groupID)
	}
	if !group.IsActive() {
		return nil, apperr.New(apperr.KindState, "group %s is archived", groupID)
	}

	if err := validateExpense(input); err != nil {
		return nil, err
	}

	splitType := input.SplitType
	if splitType == "" {
		splitType = models.SplitTypeCustom
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Category:    input.Category,
		Date:        input.Date,
		PaidBy:      input.PaidBy,
		SplitType:   splitType,
		Splits:      input.Splits,
		CreatedBy:   principal.ID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeErr(err, "failed to create expense")
	}

	// Read-then-write; no cross-document transaction ties this to the
	// expense insert. The total is advisory only.
	group.TotalExpenses += expense.Amount
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Warn("failed to bump group expense total", "group_id", groupID, "error", err)
	}

	slog.Info("expense recorded", "group_id", groupID, "expense_id", expense.ID,
		"amount", expense.Amount, "paid_by", expense.PaidBy, "splits", len(expense.Splits))
	return expense, nil
}

// ListExpenses returns all expenses for a group, newest first. Member only.
func (s *ExpenseService) ListExpenses(ctx context.Context, principal models.Principal, groupID string) ([]*models.Expense, error) {
	isMember, err := s.membership.IsGroupMember(ctx, groupID, principal)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.New(apperr.KindPermission, "user %s is not a member of group %s", principal.ID, groupID)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err, "failed to list expenses")
	}
	return expenses, nil
}

// EqualSplits builds an equal split of amount across the given members, with
// the rounding remainder folded into the last share so the sum stays exact.
func EqualSplits(amount float64, memberIDs []string) []models.Split {
	if len(memberIDs) == 0 {
		return nil
	}
	share := money.Round2(amount / float64(len(memberIDs)))
	splits := make([]models.Split, len(memberIDs))
	running := 0.0
	for i, memberID := range memberIDs {
		splits[i] = models.Split{MemberID: memberID, Amount: share}
		running += share
		if i == len(memberIDs)-1 {
			splits[i].Amount = money.Round2(share + (amount - running))
		}
	}
	return splits
}

func validateExpense(input AddExpenseInput) error {
	if input.Amount <= 0 {
		return apperr.New(apperr.KindValidation, "expense amount must be positive, got %.2f", input.Amount)
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperr.New(apperr.KindValidation, "expense description is required")
	}
	if input.PaidBy == "" {
		return apperr.New(apperr.KindValidation, "expense payer is required")
	}
	if len(input.Splits) == 0 {
		return apperr.New(apperr.KindValidation, "expense must have at least one split")
	}
	amounts := make([]float64, len(input.Splits))
	for i, split := range input.Splits {
		amounts[i] = split.Amount
	}
	if sum := money.Sum(amounts); !money.WithinTolerance(sum, input.Amount) {
		return apperr.New(apperr.KindValidation,
			"split amounts sum to %.2f but expense amount is %.2f", sum, input.Amount)
	}
	return nil
}
