// Package calculator holds the pure ledger math: net balance computation and
// greedy debt simplification. Nothing in this package touches storage.
package calculator

import (
	"github.com/divvyhq/divvy/internal/models"
)

// ExpenseForBalance carries the minimal expense information needed for
// balance computation.
type ExpenseForBalance struct {
	Amount float64
	PaidBy string
	Splits []models.Split
}

// SettlementForBalance carries the minimal settlement information needed for
// balance computation.
type SettlementForBalance struct {
	FromMemberID string // Who paid (debtor settling up)
	ToMemberID   string // Who received (creditor being paid)
	Amount       float64
}

// ComputeBalances derives each member's net position from the full expense
// and settlement history.
//
// Algorithm:
//   - Every known member starts at zero, so settled-up members still appear.
//   - For each expense: payer +amount, each split member -share. A payer who
//     is also a split participant nets the two automatically.
//   - For each settlement: from +amount, to -amount. Paying down a debt
//     raises the debtor's balance toward zero and shrinks the creditor's claim.
//
// For any self-consistent ledger the balances sum to zero (within float
// rounding): each expense distributes exactly its amount, each settlement is
// a zero-sum transfer.
//
// Positive balance = owed money by the group; negative = owes money.
func ComputeBalances(memberIDs []string, expenses []ExpenseForBalance, settlements []SettlementForBalance) map[string]float64 {
	balances := make(map[string]float64, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = 0
	}

	for _, expense := range expenses {
		balances[expense.PaidBy] += expense.Amount
		for _, split := range expense.Splits {
			balances[split.MemberID] -= split.Amount
		}
	}

	for _, settlement := range settlements {
		balances[settlement.FromMemberID] += settlement.Amount
		balances[settlement.ToMemberID] -= settlement.Amount
	}

	return balances
}
