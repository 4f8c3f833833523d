package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, deadline, icon, color, created_at, updated_at, sync_status`

// CreateGoal persists a new goal and its INSERT queue entry.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.SyncStatus = model.SyncPending

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO goals (`+goalColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			goal.ID, goal.UserID, goal.Name, goal.Target, goal.Current,
			goal.Deadline, nullString(goal.Icon), nullString(goal.Color),
			goal.CreatedAt, goal.UpdatedAt, string(goal.SyncStatus))
		if err != nil {
			return fmt.Errorf("failed to insert goal: %w", err)
		}
		return enqueueTx(tx, model.TableGoals, model.OpInsert, goal.ID, nil)
	})
}

// UpdateGoal merges the patch into an existing goal and enqueues an UPDATE.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, id string, patch model.GoalPatch) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	goal, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}

	patch.Apply(goal)
	if err := validateGoal(goal); err != nil {
		return nil, err
	}
	goal.UpdatedAt = time.Now().UTC()
	goal.SyncStatus = model.SyncPending

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE goals
			SET name = ?, target_amount = ?, deadline = ?, icon = ?, color = ?,
				updated_at = ?, sync_status = ?
			WHERE id = ?`,
			goal.Name, goal.Target, goal.Deadline, nullString(goal.Icon),
			nullString(goal.Color), goal.UpdatedAt, string(goal.SyncStatus), id)
		if err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}
		return enqueueTx(tx, model.TableGoals, model.OpUpdate, id, nil)
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// AddGoalFunds moves the goal's current amount by the given delta. The
// current amount is only ever adjusted through this path, never recomputed
// from transactions.
func (s *SQLiteStorage) AddGoalFunds(ctx context.Context, id string, amount decimal.Decimal) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	goal, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}

	goal.Current = goal.Current.Add(amount)
	if goal.Current.IsNegative() {
		goal.Current = decimal.Zero
	}
	goal.UpdatedAt = time.Now().UTC()
	goal.SyncStatus = model.SyncPending

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE goals
			SET current_amount = ?, updated_at = ?, sync_status = ?
			WHERE id = ?`,
			goal.Current, goal.UpdatedAt, string(goal.SyncStatus), id)
		if err != nil {
			return fmt.Errorf("failed to add goal funds: %w", err)
		}
		return enqueueTx(tx, model.TableGoals, model.OpUpdate, id, nil)
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// DeleteGoal removes a goal and enqueues a DELETE with its snapshot.
// Absent ids return (nil, nil).
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	goal, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM goals WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}
		return enqueueTx(tx, model.TableGoals, model.OpDelete, id, goal)
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// GetGoalByID returns a goal or nil when absent.
func (s *SQLiteStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE id = ?`, id)

	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns a user's goals sorted by name.
func (s *SQLiteStorage) ListGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ?
		ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// BulkUpsertGoals stores goals pulled from the remote, marked synced, with
// no queue side effects.
func (s *SQLiteStorage) BulkUpsertGoals(ctx context.Context, goals []model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(goals) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO goals (` + goalColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i := range goals {
			goal := &goals[i]
			goal.SyncStatus = model.SyncSynced
			if _, err := stmt.Exec(
				goal.ID, goal.UserID, goal.Name, goal.Target, goal.Current,
				goal.Deadline, nullString(goal.Icon), nullString(goal.Color),
				goal.CreatedAt, goal.UpdatedAt, string(goal.SyncStatus)); err != nil {
				return fmt.Errorf("failed to upsert goal %s: %w", goal.ID, err)
			}
		}
		return nil
	})
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var goal model.Goal
	var icon, color sql.NullString
	var syncStatus string

	err := row.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.Target, &goal.Current,
		&goal.Deadline, &icon, &color, &goal.CreatedAt, &goal.UpdatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}

	goal.Icon = icon.String
	goal.Color = color.String
	goal.SyncStatus = model.SyncStatus(syncStatus)
	return &goal, nil
}
