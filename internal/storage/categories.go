package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
)

const categoryColumns = `id, user_id, name, type, icon, color, created_at, updated_at, sync_status`

// CreateCategory persists a new category and its INSERT queue entry.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	cat.SyncStatus = model.SyncPending

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO categories (`+categoryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cat.ID, cat.UserID, cat.Name, string(cat.Type),
			nullString(cat.Icon), nullString(cat.Color),
			cat.CreatedAt, cat.UpdatedAt, string(cat.SyncStatus))
		if err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
		return enqueueTx(tx, model.TableCategories, model.OpInsert, cat.ID, nil)
	})
	if err != nil {
		return err
	}

	slog.Debug("created category", "id", cat.ID, "name", cat.Name, "type", cat.Type)
	return nil
}

// UpdateCategory merges the patch into an existing category and enqueues an
// UPDATE.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	cat, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	patch.Apply(cat)
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	cat.UpdatedAt = time.Now().UTC()
	cat.SyncStatus = model.SyncPending

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE categories
			SET name = ?, icon = ?, color = ?, updated_at = ?, sync_status = ?
			WHERE id = ?`,
			cat.Name, nullString(cat.Icon), nullString(cat.Color),
			cat.UpdatedAt, string(cat.SyncStatus), id)
		if err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		return enqueueTx(tx, model.TableCategories, model.OpUpdate, id, nil)
	})
	if err != nil {
		return nil, err
	}

	return cat, nil
}

// DeleteCategory removes a category and enqueues a DELETE with its
// snapshot. Absent ids return (nil, nil).
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	cat, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return enqueueTx(tx, model.TableCategories, model.OpDelete, id, cat)
	})
	if err != nil {
		return nil, err
	}

	return cat, nil
}

// GetCategoryByID returns a category or nil when absent.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// ListCategories returns a user's categories sorted by name, optionally
// narrowed to one type.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID string, categoryType model.RecordType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if categoryType != "" {
		query += ` AND type = ?`
		args = append(args, string(categoryType))
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return cats, nil
}

// BulkUpsertCategories stores categories pulled from the remote, marked
// synced, with no queue side effects.
func (s *SQLiteStorage) BulkUpsertCategories(ctx context.Context, cats []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(cats) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO categories (` + categoryColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i := range cats {
			cat := &cats[i]
			cat.SyncStatus = model.SyncSynced
			if _, err := stmt.Exec(
				cat.ID, cat.UserID, cat.Name, string(cat.Type),
				nullString(cat.Icon), nullString(cat.Color),
				cat.CreatedAt, cat.UpdatedAt, string(cat.SyncStatus)); err != nil {
				return fmt.Errorf("failed to upsert category %s: %w", cat.ID, err)
			}
		}
		return nil
	})
}

// DeleteCategoriesLocal hard-deletes categories without queue entries. This
// is the dedup repair path: the duplicates being removed are legitimately
// present remotely and must not be deleted there.
func (s *SQLiteStorage) DeleteCategoriesLocal(ctx context.Context, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to delete duplicate categories: %w", err)
	}

	slog.Info("removed duplicate categories", "count", len(ids))
	return nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var icon, color sql.NullString
	var recordType, syncStatus string

	err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &recordType, &icon, &color,
		&cat.CreatedAt, &cat.UpdatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}

	cat.Type = model.RecordType(recordType)
	cat.Icon = icon.String
	cat.Color = color.String
	cat.SyncStatus = model.SyncStatus(syncStatus)
	return &cat, nil
}
