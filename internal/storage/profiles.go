package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// GetProfile returns the local profile mirror for a user, or nil.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.Profile
	var email, displayName sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, created_at, updated_at
		FROM profiles
		WHERE id = ?`, userID).
		Scan(&profile.ID, &email, &displayName, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile.Email = email.String
	profile.DisplayName = displayName.String
	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updatedAt.Time
	return &profile, nil
}

// SaveProfile stores the profile mirror. Profiles are pulled from the
// remote, never queued.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if err := validateString(profile.ID, "profile.ID"); err != nil {
		return err
	}

	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profiles (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		profile.ID, nullString(profile.Email), nullString(profile.DisplayName),
		profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// WipeUser atomically clears all five collections for one user plus the
// full operation queue. Used on logout and account deletion.
func (s *SQLiteStorage) WipeUser(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		statements := []struct {
			query string
			args  []any
		}{
			{`DELETE FROM transactions WHERE user_id = ?`, []any{userID}},
			{`DELETE FROM categories WHERE user_id = ?`, []any{userID}},
			{`DELETE FROM budgets WHERE user_id = ?`, []any{userID}},
			{`DELETE FROM goals WHERE user_id = ?`, []any{userID}},
			{`DELETE FROM profiles WHERE id = ?`, []any{userID}},
			{`DELETE FROM sync_queue`, nil},
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt.query, stmt.args...); err != nil {
				return fmt.Errorf("failed to wipe user data: %w", err)
			}
		}
		return nil
	})
}
