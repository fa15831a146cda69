package service

import (
	"context"
	"math"
	"testing"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
)

func TestAddExpenseSplitValidation(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		splits   []float64
		wantKind apperr.Kind
		wantOK   bool
	}{
		{name: "exact sum", amount: 100, splits: []float64{50, 50}, wantOK: true},
		{name: "one cent over", amount: 100, splits: []float64{50, 50.01}, wantOK: true},
		{name: "fifty cents under", amount: 100, splits: []float64{50, 49.50}, wantKind: apperr.KindValidation},
		{name: "fifty cents over", amount: 100, splits: []float64{50, 50.50}, wantKind: apperr.KindValidation},
		{name: "no splits", amount: 100, splits: nil, wantKind: apperr.KindValidation},
		{name: "negative amount", amount: -5, splits: []float64{-5}, wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			group := env.mustCreateGroup(t, alice, "Flat 12")
			payer := models.MemberID(group.ID, alice.ID)

			var splits []models.Split
			for _, amount := range tt.splits {
				splits = append(splits, models.Split{MemberID: payer, Amount: amount})
			}

			_, err := env.expenses.AddExpense(ctx, alice, group.ID, AddExpenseInput{
				Description: "groceries",
				Amount:      tt.amount,
				PaidBy:      payer,
				Splits:      splits,
			})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("AddExpense failed: %v", err)
				}
				return
			}
			if !apperr.IsKind(err, tt.wantKind) {
				t.Errorf("error kind = %v, want %v (err: %v)", apperr.KindOf(err), tt.wantKind, err)
			}
		})
	}
}

func TestAddExpenseRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	_, err := env.expenses.AddExpense(ctx, carol, group.ID, AddExpenseInput{
		Description: "groceries",
		Amount:      20,
		PaidBy:      models.MemberID(group.ID, alice.ID),
		Splits:      []models.Split{{MemberID: models.MemberID(group.ID, alice.ID), Amount: 20}},
	})
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("error kind = %v, want permission", apperr.KindOf(err))
	}
}

func TestAddExpenseArchivedGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")
	if err := env.membership.ArchiveGroup(ctx, alice, group.ID); err != nil {
		t.Fatalf("ArchiveGroup failed: %v", err)
	}

	payer := models.MemberID(group.ID, alice.ID)
	_, err := env.expenses.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "groceries",
		Amount:      20,
		PaidBy:      payer,
		Splits:      []models.Split{{MemberID: payer, Amount: 20}},
	})
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("error kind = %v, want state", apperr.KindOf(err))
	}
}

func TestAddExpenseBumpsGroupTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")
	payer := models.MemberID(group.ID, alice.ID)

	for _, amount := range []float64{30, 12.50} {
		if _, err := env.expenses.AddExpense(ctx, alice, group.ID, AddExpenseInput{
			Description: "groceries",
			Amount:      amount,
			PaidBy:      payer,
			Splits:      []models.Split{{MemberID: payer, Amount: amount}},
		}); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	updated, err := env.membership.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if math.Abs(updated.TotalExpenses-42.50) > 0.01 {
		t.Errorf("total expenses = %v, want 42.50", updated.TotalExpenses)
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")
	payer := models.MemberID(group.ID, alice.ID)

	for i, date := range []int64{1000, 3000, 2000} {
		if _, err := env.expenses.AddExpense(ctx, alice, group.ID, AddExpenseInput{
			Description: "expense",
			Amount:      float64(10 * (i + 1)),
			Date:        date,
			PaidBy:      payer,
			Splits:      []models.Split{{MemberID: payer, Amount: float64(10 * (i + 1))}},
		}); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	expenses, err := env.expenses.ListExpenses(ctx, alice, group.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("got %d expenses, want 3", len(expenses))
	}
	for i := 1; i < len(expenses); i++ {
		if expenses[i-1].Date < expenses[i].Date {
			t.Errorf("expenses not sorted newest first: %d before %d", expenses[i-1].Date, expenses[i].Date)
		}
	}
}

func TestEqualSplits(t *testing.T) {
	splits := EqualSplits(100, []string{"a", "b", "c"})
	if len(splits) != 3 {
		t.Fatalf("got %d splits, want 3", len(splits))
	}
	sum := 0.0
	for _, split := range splits {
		sum += split.Amount
	}
	if math.Abs(sum-100) > 0.001 {
		t.Errorf("splits sum to %v, want exactly 100", sum)
	}
	// Remainder lands on the last share.
	if splits[0].Amount != 33.33 || splits[2].Amount != 33.34 {
		t.Errorf("splits = %+v, want 33.33/33.33/33.34", splits)
	}
}
