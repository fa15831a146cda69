package models

// Expense split type values.
const (
	SplitTypeEqual  = "equal"
	SplitTypeCustom = "custom"
)

// Expense represents a shared cost paid by one member and split across the
// group. Expenses are immutable once recorded: corrections happen through
// settlements, never edits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Weekly groceries").
	Description string

	// Amount is the full amount paid, always positive.
	Amount float64

	// Category is one of the group's allowed expense categories.
	Category string

	// Date is the Unix timestamp of when the cost was incurred.
	Date int64

	// PaidBy is the member ID of the payer.
	PaidBy string

	// SplitType is SplitTypeEqual or SplitTypeCustom. Equal splits are still
	// stored as explicit per-member amounts so history survives roster changes.
	SplitType string

	// Splits is the per-member breakdown. The split amounts must sum to
	// Amount within a 0.01 tolerance.
	Splits []Split

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one member's owed share of an expense. Splits are embedded in
// their expense and never stored standalone.
type Split struct {
	// MemberID identifies who owes this share.
	MemberID string

	// Amount is the share owed, in the same currency as the expense.
	Amount float64
}
