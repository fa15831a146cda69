package models

// Group status values.
const (
	GroupStatusActive   = "active"
	GroupStatusArchived = "archived"
)

// DefaultCategories is the category set assigned to new groups that don't
// specify their own.
var DefaultCategories = []string{"groceries", "rent", "utilities", "dining", "travel", "other"}

// Group represents a shared-expense context (flatmates, a trip, a team).
// A group owns its members and is the scoping key for every expense and
// settlement query.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Lisbon Trip").
	Name string

	// Description is an optional free-form description.
	Description string

	// Address is an optional location, used by house-share groups.
	Address string

	// CreatedBy is the user ID of the creator. The creator is always added
	// as an admin member.
	CreatedBy string

	// Status is either GroupStatusActive or GroupStatusArchived. Archived
	// groups are soft-deleted: reads still work, mutations are rejected.
	Status string

	// MemberCount is a denormalized counter maintained on member add. It is
	// advisory; the member list is the source of truth.
	MemberCount int

	// TotalExpenses is a denormalized running sum of expense amounts. Like
	// MemberCount it is advisory only and never feeds balance computation.
	TotalExpenses float64

	// Categories is the set of expense categories allowed in this group.
	Categories []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// IsActive reports whether the group still accepts mutations.
func (g *Group) IsActive() bool {
	return g.Status == GroupStatusActive
}
