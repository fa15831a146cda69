package calculator

import (
	"sort"

	"github.com/divvyhq/divvy/internal/money"
)

// SuggestedPayment is one transaction in the simplified settle-up plan.
type SuggestedPayment struct {
	From   string  // Member who should pay
	To     string  // Member who should receive
	Amount float64 // Rounded to 2 decimals
}

type party struct {
	memberID string
	amount   float64 // always positive
}

// SimplifyDebts converts net balances into a settle-up plan using greedy
// largest-creditor / largest-debtor matching.
//
// Members inside the 0.01 zero band are ignored. The result has at most
// (#creditors + #debtors - 1) payments; it is not guaranteed globally
// minimal, but executing every payment drives all balances to zero.
func SimplifyDebts(balances map[string]float64) []SuggestedPayment {
	var creditors, debtors []party
	for memberID, balance := range balances {
		switch {
		case balance > 0.01:
			creditors = append(creditors, party{memberID: memberID, amount: balance})
		case balance < -0.01:
			debtors = append(debtors, party{memberID: memberID, amount: -balance})
		}
	}

	// Largest amounts first; ties broken by ID so the plan is deterministic.
	sortParties(creditors)
	sortParties(debtors)

	var payments []SuggestedPayment
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		if amount > 0.01 { // Avoid floating point noise
			payments = append(payments, SuggestedPayment{
				From:   debtor.memberID,
				To:     creditor.memberID,
				Amount: money.Round2(amount),
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount < 0.01 {
			i++
		}
		if creditor.amount < 0.01 {
			j++
		}
	}

	return payments
}

func sortParties(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].amount != parties[j].amount {
			return parties[i].amount > parties[j].amount
		}
		return parties[i].memberID < parties[j].memberID
	})
}
