package models

// Settlement represents a direct payment between group members to clear
// debts, independent of any specific expense.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount, always positive.
	Amount float64

	// Note is an optional description for the settlement.
	Note string

	// Date is the Unix timestamp of when the payment happened.
	Date int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
