// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/divvyhq/divvy/internal/models"
)

// ErrNotFound is returned by Get* methods when the requested record does not
// exist. Backends must return it (possibly wrapped) so services can
// distinguish "absent" from "store broken".
var ErrNotFound = errors.New("record not found")

// Store defines the persistence contract for the group ledger. This
// abstraction allows swapping storage backends (SQLite, MongoDB, in-memory)
// without changing the service layer.
//
// No method spans more than one record atomically; services are written for
// a document store without cross-collection transactions.
type Store interface {
	// CreateGroup persists a new group. The group.ID field is populated by
	// the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound when absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroup overwrites an existing group record.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// CreateMember persists a new member. Fails if a member with the same ID
	// already exists in the group.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member by its derived ID. Returns ErrNotFound
	// when absent.
	GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error)

	// ListMembers retrieves all members of a group.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)

	// DeleteMember removes a member record. Used only by invitation
	// reconciliation to retire placeholders.
	DeleteMember(ctx context.Context, groupID, memberID string) error

	// CreateExpense persists a new expense with its embedded splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup retrieves all expenses for a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup retrieves all settlements for a group, newest
	// first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by normalized email. Returns
	// ErrNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
