// Package memory provides an in-memory implementation of storage.Store used
// for unit testing service logic without a database, including forced-failure
// scenarios.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with plain maps. All methods are
// safe for concurrent use.
type MemoryStore struct {
	mu          sync.Mutex
	groups      map[string]*models.Group
	members     map[string]map[string]*models.Member // groupID -> memberID -> member
	expenses    map[string][]*models.Expense         // groupID -> expenses
	settlements map[string][]*models.Settlement      // groupID -> settlements
	users       map[string]*models.User              // userID -> user
	err         error
}

// New instantiates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		groups:      make(map[string]*models.Group),
		members:     make(map[string]map[string]*models.Member),
		expenses:    make(map[string][]*models.Expense),
		settlements: make(map[string][]*models.Settlement),
		users:       make(map[string]*models.User),
	}
}

// WithError configures the store to return the provided error for all
// subsequent calls. Passing nil clears it.
func (m *MemoryStore) WithError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryStore) CreateGroup(_ context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Status == "" {
		group.Status = models.GroupStatusActive
	}
	cp := *group
	m.groups[group.ID] = &cp
	return nil
}

func (m *MemoryStore) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	group, ok := m.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	cp := *group
	return &cp, nil
}

func (m *MemoryStore) UpdateGroup(_ context.Context, group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.groups[group.ID]; !ok {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	cp := *group
	m.groups[group.ID] = &cp
	return nil
}

func (m *MemoryStore) CreateMember(_ context.Context, member *models.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.InviteStatus == "" {
		member.InviteStatus = models.InviteStatusPending
	}
	group := m.members[member.GroupID]
	if group == nil {
		group = make(map[string]*models.Member)
		m.members[member.GroupID] = group
	}
	if _, exists := group[member.ID]; exists {
		return fmt.Errorf("member %s already exists in group %s: UNIQUE constraint failed", member.ID, member.GroupID)
	}
	cp := *member
	group[member.ID] = &cp
	return nil
}

func (m *MemoryStore) GetMember(_ context.Context, groupID, memberID string) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	member, ok := m.members[groupID][memberID]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	cp := *member
	return &cp, nil
}

func (m *MemoryStore) ListMembers(_ context.Context, groupID string) ([]*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var members []*models.Member
	for _, member := range m.members[groupID] {
		cp := *member
		members = append(members, &cp)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt != members[j].CreatedAt {
			return members[i].CreatedAt < members[j].CreatedAt
		}
		return members[i].ID < members[j].ID
	})
	return members, nil
}

func (m *MemoryStore) DeleteMember(_ context.Context, groupID, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.members[groupID][memberID]; !ok {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	delete(m.members[groupID], memberID)
	return nil
}

func (m *MemoryStore) CreateExpense(_ context.Context, expense *models.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}
	cp := *expense
	cp.Splits = append([]models.Split(nil), expense.Splits...)
	m.expenses[expense.GroupID] = append(m.expenses[expense.GroupID], &cp)
	return nil
}

func (m *MemoryStore) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	expenses := make([]*models.Expense, 0, len(m.expenses[groupID]))
	for _, e := range m.expenses[groupID] {
		cp := *e
		cp.Splits = append([]models.Split(nil), e.Splits...)
		expenses = append(expenses, &cp)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date > expenses[j].Date })
	return expenses, nil
}

func (m *MemoryStore) CreateSettlement(_ context.Context, settlement *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = settlement.CreatedAt
	}
	cp := *settlement
	m.settlements[settlement.GroupID] = append(m.settlements[settlement.GroupID], &cp)
	return nil
}

func (m *MemoryStore) ListSettlementsByGroup(_ context.Context, groupID string) ([]*models.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	settlements := make([]*models.Settlement, 0, len(m.settlements[groupID]))
	for _, s := range m.settlements[groupID] {
		cp := *s
		settlements = append(settlements, &cp)
	}
	sort.Slice(settlements, func(i, j int) bool { return settlements[i].Date > settlements[j].Date })
	return settlements, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	user.Email = strings.ToLower(user.Email)
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user email %s already exists: UNIQUE constraint failed", user.Email)
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
