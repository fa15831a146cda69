package calculator

import (
	"math"
	"testing"

	"github.com/divvyhq/divvy/internal/models"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		memberIDs   []string
		expenses    []ExpenseForBalance
		settlements []SettlementForBalance
		want        map[string]float64
	}{
		{
			name:      "single expense split two ways",
			memberIDs: []string{"alice", "bob"},
			expenses: []ExpenseForBalance{
				{Amount: 100, PaidBy: "alice", Splits: []models.Split{
					{MemberID: "alice", Amount: 50},
					{MemberID: "bob", Amount: 50},
				}},
			},
			want: map[string]float64{"alice": 50, "bob": -50},
		},
		{
			name:      "payer who is also a split participant nets automatically",
			memberIDs: []string{"alice", "bob", "carol"},
			expenses: []ExpenseForBalance{
				{Amount: 90, PaidBy: "alice", Splits: []models.Split{
					{MemberID: "alice", Amount: 30},
					{MemberID: "bob", Amount: 30},
					{MemberID: "carol", Amount: 30},
				}},
			},
			want: map[string]float64{"alice": 60, "bob": -30, "carol": -30},
		},
		{
			name:      "settlement shifts fifty between two members only",
			memberIDs: []string{"alice", "bob", "carol"},
			expenses: []ExpenseForBalance{
				{Amount: 100, PaidBy: "bob", Splits: []models.Split{
					{MemberID: "alice", Amount: 50},
					{MemberID: "carol", Amount: 50},
				}},
			},
			settlements: []SettlementForBalance{
				{FromMemberID: "alice", ToMemberID: "bob", Amount: 50},
			},
			want: map[string]float64{"alice": 0, "bob": 50, "carol": -50},
		},
		{
			name:      "settled-up members still appear at zero",
			memberIDs: []string{"alice", "bob"},
			want:      map[string]float64{"alice": 0, "bob": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.memberIDs, tt.expenses, tt.settlements)
			if len(got) < len(tt.want) {
				t.Fatalf("got %d balances, want at least %d", len(got), len(tt.want))
			}
			for memberID, want := range tt.want {
				if math.Abs(got[memberID]-want) > 0.01 {
					t.Errorf("balance[%s] = %v, want %v", memberID, got[memberID], want)
				}
			}
		})
	}
}

// Conservation: any mix of valid expenses and settlements sums to zero.
func TestComputeBalancesConservation(t *testing.T) {
	memberIDs := []string{"a", "b", "c", "d"}
	expenses := []ExpenseForBalance{
		{Amount: 120.30, PaidBy: "a", Splits: []models.Split{
			{MemberID: "a", Amount: 30.08}, {MemberID: "b", Amount: 30.08},
			{MemberID: "c", Amount: 30.07}, {MemberID: "d", Amount: 30.07},
		}},
		{Amount: 75.00, PaidBy: "b", Splits: []models.Split{
			{MemberID: "c", Amount: 40.00}, {MemberID: "d", Amount: 35.00},
		}},
		{Amount: 9.99, PaidBy: "d", Splits: []models.Split{
			{MemberID: "a", Amount: 9.99},
		}},
	}
	settlements := []SettlementForBalance{
		{FromMemberID: "c", ToMemberID: "a", Amount: 25.00},
		{FromMemberID: "d", ToMemberID: "b", Amount: 12.34},
	}

	balances := ComputeBalances(memberIDs, expenses, settlements)
	sum := 0.0
	for _, balance := range balances {
		sum += balance
	}
	if math.Abs(sum) > 0.01 {
		t.Errorf("balances sum to %v, want 0", sum)
	}
}

func TestComputeBalancesSettlementSymmetry(t *testing.T) {
	memberIDs := []string{"a", "b", "c"}
	expenses := []ExpenseForBalance{
		{Amount: 300, PaidBy: "b", Splits: []models.Split{
			{MemberID: "a", Amount: 100}, {MemberID: "b", Amount: 100}, {MemberID: "c", Amount: 100},
		}},
	}

	before := ComputeBalances(memberIDs, expenses, nil)
	after := ComputeBalances(memberIDs, expenses, []SettlementForBalance{
		{FromMemberID: "a", ToMemberID: "b", Amount: 50},
	})

	if diff := after["a"] - before["a"]; math.Abs(diff-50) > 0.01 {
		t.Errorf("payer balance changed by %v, want +50", diff)
	}
	if diff := after["b"] - before["b"]; math.Abs(diff+50) > 0.01 {
		t.Errorf("receiver balance changed by %v, want -50", diff)
	}
	if diff := after["c"] - before["c"]; math.Abs(diff) > 0.01 {
		t.Errorf("bystander balance changed by %v, want 0", diff)
	}
}
