package service

import (
	"context"
	"testing"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/fieldcrypt"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage/memory"
)

var (
	alice = models.Principal{ID: "alice", DisplayName: "Alice", Email: "alice@x.com"}
	bob   = models.Principal{ID: "bob", DisplayName: "Bob", Email: "bob@x.com"}
	carol = models.Principal{ID: "carol", DisplayName: "Carol", Email: "carol@x.com"}
)

type testEnv struct {
	store       *memory.MemoryStore
	membership  *MembershipService
	expenses    *ExpenseService
	settlements *SettlementService
	balances    *BalanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	crypt, err := fieldcrypt.New("test-field-secret")
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	membership := NewMembershipService(store, crypt)
	return &testEnv{
		store:       store,
		membership:  membership,
		expenses:    NewExpenseService(store, membership),
		settlements: NewSettlementService(store, membership),
		balances:    NewBalanceService(store),
	}
}

func (e *testEnv) mustCreateGroup(t *testing.T, principal models.Principal, name string) *models.Group {
	t.Helper()
	group, err := e.membership.CreateGroup(context.Background(), principal, CreateGroupInput{Name: name})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.mustCreateGroup(t, alice, "Flat 12")

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Status != models.GroupStatusActive {
		t.Errorf("status = %s, want active", group.Status)
	}
	if group.MemberCount != 1 {
		t.Errorf("member count = %d, want 1", group.MemberCount)
	}
	if len(group.Categories) == 0 {
		t.Error("expected default categories")
	}

	// The creator must be a registered admin member.
	isAdmin, err := env.membership.IsGroupAdmin(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("IsGroupAdmin failed: %v", err)
	}
	if !isAdmin {
		t.Error("creator should be a group admin")
	}
}

func TestCreateGroupEmptyName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.membership.CreateGroup(context.Background(), alice, CreateGroupInput{Name: "   "})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("error kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestAddMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	member, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{
		Name:  "Bob",
		Email: "bob@x.com",
		Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if member.InviteStatus != models.InviteStatusPending {
		t.Errorf("invite status = %s, want pending", member.InviteStatus)
	}
	if member.IsRegistered {
		t.Error("unlinked invite should not be registered")
	}
	if member.Phone == "555-0100" {
		t.Error("phone should be stored encrypted")
	}

	// Roster read decrypts the phone.
	members, err := env.membership.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	for _, m := range members {
		if m.ID == member.ID && m.Phone != "555-0100" {
			t.Errorf("phone = %q, want decrypted 555-0100", m.Phone)
		}
	}

	// Member count was bumped.
	updated, err := env.membership.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if updated.MemberCount != 2 {
		t.Errorf("member count = %d, want 2", updated.MemberCount)
	}
}

func TestAddMemberKnownUserIsLinked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Bob already has an account.
	if err := env.store.CreateUser(ctx, &models.User{ID: "bob", Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group := env.mustCreateGroup(t, alice, "Flat 12")

	member, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob", Email: "Bob@X.com"})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if member.ID != models.MemberID(group.ID, "bob") {
		t.Errorf("member ID = %s, want keyed by bob's user ID", member.ID)
	}
	if !member.IsRegistered || member.InviteStatus != models.InviteStatusAccepted {
		t.Errorf("member should be linked and accepted, got registered=%v status=%s",
			member.IsRegistered, member.InviteStatus)
	}
}

func TestAddMemberPermissionAndState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	// Non-admin cannot add members.
	_, err := env.membership.AddMember(ctx, bob, group.ID, AddMemberInput{Name: "Carol"})
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("error kind = %v, want permission", apperr.KindOf(err))
	}

	// Archived groups reject member adds.
	if err := env.membership.ArchiveGroup(ctx, alice, group.ID); err != nil {
		t.Fatalf("ArchiveGroup failed: %v", err)
	}
	_, err = env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Carol"})
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("error kind = %v, want state", apperr.KindOf(err))
	}
}

func TestAddMemberDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.store.CreateUser(ctx, &models.User{ID: "bob", Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group := env.mustCreateGroup(t, alice, "Flat 12")

	if _, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	_, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob again", Email: "bob@x.com"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("error kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestArchiveGroupRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	if _, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Bob reconciles in as a non-admin member.
	if ok, err := env.membership.IsGroupMember(ctx, group.ID, bob); err != nil || !ok {
		t.Fatalf("IsGroupMember = %v, %v; want member", ok, err)
	}

	err := env.membership.ArchiveGroup(ctx, bob, group.ID)
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("error kind = %v, want permission", apperr.KindOf(err))
	}
}

func TestInviteReconciliation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	placeholder, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{
		Name:    "Bob",
		Email:   "bob@x.com",
		IsAdmin: true,
	})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	// Bob logs in; the membership check reconciles the invite.
	isMember, err := env.membership.IsGroupMember(ctx, group.ID, bob)
	if err != nil {
		t.Fatalf("IsGroupMember failed: %v", err)
	}
	if !isMember {
		t.Fatal("bob should be a member after reconciliation")
	}

	members, err := env.membership.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	var linked *models.Member
	for _, member := range members {
		if member.ID == placeholder.ID {
			t.Error("placeholder should be deleted after reconciliation")
		}
		if member.ID == models.MemberID(group.ID, bob.ID) {
			linked = member
		}
	}
	if linked == nil {
		t.Fatal("expected a member keyed by bob's user ID")
	}
	if !linked.IsRegistered || linked.InviteStatus != models.InviteStatusAccepted {
		t.Errorf("linked member registered=%v status=%s, want registered+accepted",
			linked.IsRegistered, linked.InviteStatus)
	}
	if !linked.IsAdmin {
		t.Error("admin flag should be copied from the placeholder")
	}
}

func TestInviteReconciliationIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	if _, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		isMember, err := env.membership.IsGroupMember(ctx, group.ID, bob)
		if err != nil {
			t.Fatalf("IsGroupMember pass %d failed: %v", i, err)
		}
		if !isMember {
			t.Fatalf("pass %d: bob should be a member", i)
		}
	}

	members, err := env.membership.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	bobRecords := 0
	for _, member := range members {
		if member.ID == models.MemberID(group.ID, bob.ID) {
			bobRecords++
		}
	}
	if bobRecords != 1 {
		t.Errorf("got %d member records for bob, want exactly 1", bobRecords)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}
}

// A reconciliation that crashed between create and delete leaves both
// records; the next membership check sweeps the stale placeholder.
func TestReconciliationCrashLeftoverIsSwept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")

	// Simulate the crash: linked record exists AND the placeholder survived.
	placeholderID := models.MemberID(group.ID, "local-123")
	if err := env.store.CreateMember(ctx, &models.Member{
		ID: placeholderID, GroupID: group.ID, Name: "Bob", Email: "bob@x.com",
		InviteStatus: models.InviteStatusPending,
	}); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	if err := env.store.CreateMember(ctx, &models.Member{
		ID: models.MemberID(group.ID, bob.ID), GroupID: group.ID, Name: "Bob",
		Email: "bob@x.com", IsRegistered: true, InviteStatus: models.InviteStatusAccepted,
	}); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	if ok, err := env.membership.IsGroupMember(ctx, group.ID, bob); err != nil || !ok {
		t.Fatalf("IsGroupMember = %v, %v; want member", ok, err)
	}

	if _, err := env.store.GetMember(ctx, group.ID, placeholderID); err == nil {
		t.Error("stale placeholder should have been deleted")
	}
}

// Reconciliation re-keys the member but never rewrites historical splits:
// balances recorded against the placeholder ID stay attached to it.
func TestReconciliationLeavesHistoricalReferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group := env.mustCreateGroup(t, alice, "Flat 12")
	aliceMemberID := models.MemberID(group.ID, alice.ID)

	placeholder, err := env.membership.AddMember(ctx, alice, group.ID, AddMemberInput{Name: "Bob", Email: "bob@x.com"})
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	_, err = env.expenses.AddExpense(ctx, alice, group.ID, AddExpenseInput{
		Description: "deposit",
		Amount:      300,
		PaidBy:      aliceMemberID,
		Splits: []models.Split{
			{MemberID: aliceMemberID, Amount: 150},
			{MemberID: placeholder.ID, Amount: 150},
		},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	before := env.balances.CalculateBalances(ctx, group.ID)
	if before[aliceMemberID] != 150 || before[placeholder.ID] != -150 {
		t.Fatalf("balances before reconciliation = %v", before)
	}

	// Bob logs in and is reconciled.
	if ok, err := env.membership.IsGroupMember(ctx, group.ID, bob); err != nil || !ok {
		t.Fatalf("IsGroupMember = %v, %v; want member", ok, err)
	}

	after := env.balances.CalculateBalances(ctx, group.ID)
	if after[placeholder.ID] != -150 {
		t.Errorf("placeholder balance = %v, want -150 (splits are not rewritten)", after[placeholder.ID])
	}
	bobMemberID := models.MemberID(group.ID, bob.ID)
	if after[bobMemberID] != 0 {
		t.Errorf("linked member balance = %v, want stale 0", after[bobMemberID])
	}
}
