package service

import (
	"context"
	"log/slog"

	"github.com/divvyhq/divvy/internal/calculator"
	"github.com/divvyhq/divvy/internal/storage"
)

// BalanceService exposes the derived, read-only views: net balances and the
// simplified settle-up plan. It writes nothing and takes no locks; a
// calculation racing an in-flight write reflects whichever snapshot it read,
// which is acceptable for an advisory, recomputed-on-read view.
//
// Store failures are never surfaced: these are best-effort views, so the
// service logs and returns an empty result instead.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a BalanceService with the given storage backend.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// CalculateBalances derives every member's net position from the full
// expense and settlement history. Returns an empty map on store failure.
func (s *BalanceService) CalculateBalances(ctx context.Context, groupID string) map[string]float64 {
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		slog.Error("balance calculation degraded to empty", "group_id", groupID, "error", err)
		return map[string]float64{}
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("balance calculation degraded to empty", "group_id", groupID, "error", err)
		return map[string]float64{}
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("balance calculation degraded to empty", "group_id", groupID, "error", err)
		return map[string]float64{}
	}

	memberIDs := make([]string, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID
	}
	expensesForBalance := make([]calculator.ExpenseForBalance, len(expenses))
	for i, expense := range expenses {
		expensesForBalance[i] = calculator.ExpenseForBalance{
			Amount: expense.Amount,
			PaidBy: expense.PaidBy,
			Splits: expense.Splits,
		}
	}
	settlementsForBalance := make([]calculator.SettlementForBalance, len(settlements))
	for i, settlement := range settlements {
		settlementsForBalance[i] = calculator.SettlementForBalance{
			FromMemberID: settlement.FromMemberID,
			ToMemberID:   settlement.ToMemberID,
			Amount:       settlement.Amount,
		}
	}

	return calculator.ComputeBalances(memberIDs, expensesForBalance, settlementsForBalance)
}

// GetMemberBalance returns one member's net position, or 0 when unknown.
func (s *BalanceService) GetMemberBalance(ctx context.Context, groupID, memberID string) float64 {
	return s.CalculateBalances(ctx, groupID)[memberID]
}

// SimplifyDebts converts the group's net balances into a settle-up plan.
// Returns an empty slice on store failure.
func (s *BalanceService) SimplifyDebts(ctx context.Context, groupID string) []calculator.SuggestedPayment {
	balances := s.CalculateBalances(ctx, groupID)
	if len(balances) == 0 {
		return []calculator.SuggestedPayment{}
	}
	payments := calculator.SimplifyDebts(balances)
	if payments == nil {
		payments = []calculator.SuggestedPayment{}
	}
	return payments
}
