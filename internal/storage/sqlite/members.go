package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// CreateMember persists a new member record. The member ID is derived by the
// service layer, never generated here.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.InviteStatus == "" {
		member.InviteStatus = models.InviteStatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, group_id, name, email, phone, is_admin, is_registered, invite_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.GroupID, member.Name, member.Email, member.Phone,
		boolToInt(member.IsAdmin), boolToInt(member.IsRegistered),
		member.InviteStatus, member.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("member %s already exists in group %s: %w", member.ID, member.GroupID, err)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by its derived ID.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error) {
	member := &models.Member{}
	var isAdmin, isRegistered int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, email, phone, is_admin, is_registered, invite_status, created_at
		 FROM members WHERE group_id = ? AND id = ?`,
		groupID, memberID,
	).Scan(&member.ID, &member.GroupID, &member.Name, &member.Email, &member.Phone,
		&isAdmin, &isRegistered, &member.InviteStatus, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.IsAdmin = isAdmin != 0
	member.IsRegistered = isRegistered != 0
	return member, nil
}

// ListMembers retrieves all members of a group ordered by creation time.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, email, phone, is_admin, is_registered, invite_status, created_at
		 FROM members WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var isAdmin, isRegistered int
		if err := rows.Scan(&member.ID, &member.GroupID, &member.Name, &member.Email, &member.Phone,
			&isAdmin, &isRegistered, &member.InviteStatus, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.IsAdmin = isAdmin != 0
		member.IsRegistered = isRegistered != 0
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// DeleteMember removes a member record.
func (s *SQLiteStore) DeleteMember(ctx context.Context, groupID, memberID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM members WHERE group_id = ? AND id = ?",
		groupID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
