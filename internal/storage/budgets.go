package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

const budgetColumns = `id, user_id, category_id, month, year, limit_amount, created_at, updated_at, sync_status`

// SaveBudget inserts or replaces the budget for its natural key
// (user, category, month, year). Saving twice for the same key keeps one
// row, the stored id, and the latest limit. An UPSERT queue entry is made
// either way.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	now := time.Now().UTC()
	budget.UpdatedAt = now
	budget.SyncStatus = model.SyncPending

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var existingID string
		var existingCreated time.Time
		err := tx.QueryRow(`
			SELECT id, created_at FROM budgets
			WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?`,
			budget.UserID, budget.CategoryID, budget.Month, budget.Year).
			Scan(&existingID, &existingCreated)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if budget.ID == "" {
				budget.ID = uuid.NewString()
			}
			budget.CreatedAt = now
			if _, err := tx.Exec(`
				INSERT INTO budgets (`+budgetColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				budget.ID, budget.UserID, budget.CategoryID, budget.Month, budget.Year,
				budget.Limit, budget.CreatedAt, budget.UpdatedAt, string(budget.SyncStatus)); err != nil {
				return fmt.Errorf("failed to insert budget: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to check existing budget: %w", err)
		default:
			budget.ID = existingID
			budget.CreatedAt = existingCreated
			if _, err := tx.Exec(`
				UPDATE budgets
				SET limit_amount = ?, updated_at = ?, sync_status = ?
				WHERE id = ?`,
				budget.Limit, budget.UpdatedAt, string(budget.SyncStatus), existingID); err != nil {
				return fmt.Errorf("failed to update budget: %w", err)
			}
		}

		return enqueueTx(tx, model.TableBudgets, model.OpUpsert, budget.ID, nil)
	})
}

// GetBudgetByID returns a budget or nil when absent.
func (s *SQLiteStorage) GetBudgetByID(ctx context.Context, id string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE id = ?`, id)

	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns a user's budgets, optionally narrowed to one period.
func (s *SQLiteStorage) ListBudgets(ctx context.Context, userID string, filter service.BudgetFilter) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = ?`
	args := []any{userID}
	if filter.Month > 0 {
		query += ` AND month = ?`
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		query += ` AND year = ?`
		args = append(args, filter.Year)
	}
	query += ` ORDER BY year DESC, month DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget and enqueues its DELETE with the pre-delete
// snapshot. Returns (nil, nil) when the id is unknown.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	budget, err := s.GetBudgetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM budgets WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete budget: %w", err)
		}
		return enqueueTx(tx, model.TableBudgets, model.OpDelete, id, budget)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// BulkUpsertBudgets stores budgets pulled from the remote, marked synced,
// with no queue side effects.
func (s *SQLiteStorage) BulkUpsertBudgets(ctx context.Context, budgets []model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(budgets) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO budgets (` + budgetColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i := range budgets {
			budget := &budgets[i]
			budget.SyncStatus = model.SyncSynced
			if _, err := stmt.Exec(
				budget.ID, budget.UserID, budget.CategoryID, budget.Month, budget.Year,
				budget.Limit, budget.CreatedAt, budget.UpdatedAt, string(budget.SyncStatus)); err != nil {
				return fmt.Errorf("failed to upsert budget %s: %w", budget.ID, err)
			}
		}
		return nil
	})
}

func scanBudget(row rowScanner) (*model.Budget, error) {
	var budget model.Budget
	var syncStatus string

	err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &budget.Month,
		&budget.Year, &budget.Limit, &budget.CreatedAt, &budget.UpdatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}

	budget.SyncStatus = model.SyncStatus(syncStatus)
	return &budget, nil
}
