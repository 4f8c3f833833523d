package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

// bootstrapRetry bounds the per-resource pull during Initialize. Failures
// degrade to the local mirror instead of blocking startup.
var bootstrapRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// Initialize attaches a user session: it repairs duplicated categories,
// seeds the starter catalogue for brand-new users, and then refreshes the
// local mirror from the remote when reachable. Repair runs before seeding
// so defaults are never stacked on top of a corrupted duplicate set, and
// seeding runs before the pull so pulled categories cannot double up with
// a seed happening in the same pass. Pull failures are logged and skipped
// per resource, so an unreachable remote still yields a usable offline
// session.
func (m *Manager) Initialize(ctx context.Context, userID string) error {
	if userID == "" {
		return common.ValidationError("user id is required")
	}

	m.mu.Lock()
	m.userID = userID
	m.mu.Unlock()
	if m.engine != nil {
		m.engine.SetUser(userID)
	}

	if err := m.dedupCategories(ctx, userID); err != nil {
		return fmt.Errorf("failed to repair categories: %w", err)
	}
	if err := m.ensureDefaultCategories(ctx, userID); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	if m.engine == nil || m.engine.Online() {
		m.pullAll(ctx, userID)
	} else {
		slog.Debug("offline, serving local mirror", "user_id", userID)
	}

	m.scheduleSync()
	return nil
}

// pullAll refreshes every mirrored collection. Each resource is pulled
// independently: one failing fetch never blocks the others.
func (m *Manager) pullAll(ctx context.Context, userID string) {
	if m.remote == nil {
		return
	}

	pulls := []struct {
		name string
		fn   func() error
	}{
		{"categories", func() error {
			cats, err := m.remote.FetchCategories(ctx, userID)
			if err != nil {
				return err
			}
			return m.store.BulkUpsertCategories(ctx, cats)
		}},
		{"transactions", func() error {
			txns, err := m.remote.FetchTransactions(ctx, userID)
			if err != nil {
				return err
			}
			return m.store.BulkUpsertTransactions(ctx, txns)
		}},
		{"budgets", func() error {
			budgets, err := m.remote.FetchBudgets(ctx, userID)
			if err != nil {
				return err
			}
			return m.store.BulkUpsertBudgets(ctx, budgets)
		}},
		{"goals", func() error {
			goals, err := m.remote.FetchGoals(ctx, userID)
			if err != nil {
				return err
			}
			return m.store.BulkUpsertGoals(ctx, goals)
		}},
		{"profile", func() error {
			profile, err := m.remote.FetchProfile(ctx, userID)
			if err != nil {
				return err
			}
			if profile == nil {
				return nil
			}
			return m.store.SaveProfile(ctx, profile)
		}},
	}

	for _, pull := range pulls {
		err := common.WithRetry(ctx, pull.fn, bootstrapRetry)
		if err != nil {
			slog.Warn("pull failed, keeping local mirror",
				"resource", pull.name,
				"error", err)
		}
	}
}

// dedupCategories repairs the duplicated-catalogue state a double seed or
// a crossed sync can leave behind. It only fires when the user holds more
// categories than the starter catalogue, and for each (name, type) pair it
// keeps the earliest-created entry. Removal is local-only: the duplicates
// were never meaningful remote state worth tombstoning.
func (m *Manager) dedupCategories(ctx context.Context, userID string) error {
	cats, err := m.store.ListCategories(ctx, userID, "")
	if err != nil {
		return err
	}
	if len(cats) <= len(defaultCategories) {
		return nil
	}

	keep := make(map[string]model.Category, len(cats))
	var losers []string
	for _, cat := range cats {
		key := cat.Key()
		current, seen := keep[key]
		if !seen {
			keep[key] = cat
			continue
		}
		if cat.CreatedAt.Before(current.CreatedAt) {
			losers = append(losers, current.ID)
			keep[key] = cat
		} else {
			losers = append(losers, cat.ID)
		}
	}
	if len(losers) == 0 {
		return nil
	}

	slog.Info("removing duplicated categories",
		"user_id", userID,
		"count", len(losers))
	return m.store.DeleteCategoriesLocal(ctx, losers)
}

// ensureDefaultCategories seeds the starter catalogue for users with no
// categories at all. The seeds go through the normal write path, so they
// are queued and reach the remote on the next drain.
func (m *Manager) ensureDefaultCategories(ctx context.Context, userID string) error {
	cats, err := m.store.ListCategories(ctx, userID, "")
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		return nil
	}

	slog.Info("seeding default categories", "user_id", userID)
	for _, seed := range defaultCategories {
		cat := &model.Category{
			UserID: userID,
			Name:   seed.Name,
			Type:   seed.Type,
			Icon:   seed.Icon,
			Color:  seed.Color,
		}
		if err := m.store.CreateCategory(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}
