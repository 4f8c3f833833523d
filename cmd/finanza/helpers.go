package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/adriaviles2711/finanzaApp/internal/config"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/remote"
	"github.com/adriaviles2711/finanzaApp/internal/service"
	"github.com/adriaviles2711/finanzaApp/internal/storage"
	syncengine "github.com/adriaviles2711/finanzaApp/internal/sync"
	"github.com/adriaviles2711/finanzaApp/internal/tracker"
)

// app bundles the wired components one CLI invocation needs.
type app struct {
	store   *storage.SQLiteStorage
	engine  *syncengine.Engine
	manager *tracker.Manager
}

// openApp wires storage, the remote client, the sync engine and the
// tracker façade from configuration, and attaches the configured user
// session.
func openApp(ctx context.Context) (*app, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	store, err := storage.NewSQLiteStorage(config.ExpandPath(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var remoteClient service.RemoteClient
	if url := viper.GetString("remote.url"); url != "" {
		client, err := remote.NewClient(url, viper.GetString("remote.api_key"))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to build remote client: %w", err)
		}
		remoteClient = client
	}

	engine := syncengine.NewEngine(store, remoteClient, syncengine.DefaultConfig())
	engine.SetOnline(remoteClient != nil && !viper.GetBool("sync.offline"))

	manager := tracker.NewManager(store, remoteClient, engine)

	if userID := viper.GetString("user.id"); userID != "" {
		if err := manager.Initialize(ctx, userID); err != nil {
			engine.Stop()
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize session: %w", err)
		}
	}

	return &app{store: store, engine: engine, manager: manager}, nil
}

func (a *app) Close() error {
	a.engine.Stop()
	return a.store.Close()
}

// flush drains the queue before the process exits. A one-shot CLI cannot
// lean on the debounce timer, so mutations push eagerly; failures are
// fine, the queue keeps its entries for the next run.
func (a *app) flush(ctx context.Context) {
	if !a.engine.Online() {
		return
	}
	if err := a.manager.Sync(ctx); err != nil {
		slog.Warn("sync failed, changes remain queued", "error", err)
	}
}

// parseAmount reads a positive decimal amount from a CLI argument.
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

// parseDateFlag reads a --date value, defaulting to today.
func parseDateFlag(s string) (model.Date, error) {
	if s == "" {
		return model.DateOf(time.Now()), nil
	}
	return model.ParseDate(s)
}

// currentMonth fills zero month/year flags with the current period.
func currentMonth(month, year int) (int, int) {
	now := time.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}
