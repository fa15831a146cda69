package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/divvyhq/divvy/internal/models"
)

// CreateExpense persists a new expense and its embedded splits in one
// transaction. The splits never exist without their expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, amount, category, date, paid_by, split_type, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Category,
		expense.Date, expense.PaidBy, expense.SplitType, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, member_id, amount) VALUES (?, ?, ?)",
			expense.ID, split.MemberID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpensesByGroup retrieves all expenses for a group with their splits,
// newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, category, date, paid_by, split_type, created_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
			&expense.Category, &expense.Date, &expense.PaidBy, &expense.SplitType,
			&expense.CreatedBy, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		splitRows, err := s.db.QueryContext(ctx,
			"SELECT member_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY member_id",
			expense.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get splits: %w", err)
		}
		for splitRows.Next() {
			var split models.Split
			if err := splitRows.Scan(&split.MemberID, &split.Amount); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("failed to scan split: %w", err)
			}
			expense.Splits = append(expense.Splits, split)
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate splits: %w", err)
		}
	}

	return expenses, nil
}
