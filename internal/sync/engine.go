// Package sync implements the engine that bridges the local store and the
// remote backend: local-first writes are queued, then lazily replayed in
// FIFO order when a drain pass runs.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

// Config holds the engine's tunables.
type Config struct {
	// DebounceDelay is how long a burst of triggers settles before one
	// drain pass runs.
	DebounceDelay time.Duration
	// CallTimeout bounds each remote call so a hung request cannot hold
	// the single-flight guard forever.
	CallTimeout time.Duration
	// PeriodicSpec is the cron schedule for background drains.
	PeriodicSpec string
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: time.Second,
		CallTimeout:   30 * time.Second,
		PeriodicSpec:  "@every 5m",
	}
}

// Engine owns the connectivity and session state the drain loop depends
// on. All of it lives here rather than in package-level variables so
// independent engines (and tests) never cross-contaminate.
type Engine struct {
	store  service.Storage
	remote service.RemoteClient
	config Config

	mu     sync.Mutex
	timer  *time.Timer
	online bool
	userID string
	cron   *cron.Cron

	syncing atomic.Bool
}

// NewEngine creates a sync engine over the given store and remote client.
func NewEngine(store service.Storage, remote service.RemoteClient, config Config) *Engine {
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = time.Second
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 30 * time.Second
	}
	return &Engine{
		store:  store,
		remote: remote,
		config: config,
	}
}

// SetUser binds the engine to a session. An empty id detaches it.
func (e *Engine) SetUser(userID string) {
	e.mu.Lock()
	e.userID = userID
	e.mu.Unlock()
}

// UserID returns the bound session's user id, or "".
func (e *Engine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

// SetOnline records connectivity. Coming back online kicks off a drain in
// the background, so everything queued while offline flushes immediately.
func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	wasOnline := e.online
	e.online = online
	e.mu.Unlock()

	if online && !wasOnline {
		slog.Info("connection restored, starting sync")
		go func() {
			if err := e.Drain(context.Background()); err != nil {
				slog.Error("background drain failed", "error", err)
			}
		}()
	}
	if !online && wasOnline {
		slog.Info("connection lost, working offline")
	}
}

// Online reports current connectivity.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// ScheduleDrain coalesces triggers: each call resets the single debounce
// timer, so a burst of local mutations produces exactly one drain pass
// after the burst settles.
func (e *Engine) ScheduleDrain() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.config.DebounceDelay, func() {
		if err := e.Drain(context.Background()); err != nil {
			slog.Error("scheduled drain failed", "error", err)
		}
	})
}

// StartPeriodic begins the cron-driven background trigger. It is a
// safety net for queue entries stranded by earlier failures.
func (e *Engine) StartPeriodic() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(e.config.PeriodicSpec, e.ScheduleDrain); err != nil {
		return fmt.Errorf("invalid periodic sync schedule %q: %w", e.config.PeriodicSpec, err)
	}
	c.Start()
	e.cron = c
	return nil
}

// Stop halts the periodic trigger and any pending debounce timer.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cron != nil {
		e.cron.Stop()
		e.cron = nil
	}
}

// Drain replays the pending queue against the remote, oldest entry first.
// At most one pass runs at a time; a trigger arriving mid-pass is covered
// by the fact that the pass reads the queue snapshot to completion and
// triggers are frequent. Failed entries are logged and left queued so the
// next pass retries them; one stuck entry never blocks the rest.
func (e *Engine) Drain(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	e.mu.Lock()
	online, userID := e.online, e.userID
	e.mu.Unlock()

	if !online || userID == "" {
		return nil
	}

	ops, err := e.store.PendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending operations: %w", err)
	}
	if len(ops) == 0 {
		return nil
	}

	slog.Info("draining sync queue", "pending", len(ops))

	var replayed, failed int
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.replay(ctx, op); err != nil {
			failed++
			slog.Error("replay failed, entry kept for retry",
				"entry", op.ID,
				"table", op.Table,
				"op", op.Kind,
				"record", op.RecordID,
				"error", err)
			continue
		}

		if err := e.store.RemovePendingOperation(ctx, op.ID); err != nil {
			return fmt.Errorf("failed to remove queue entry %d: %w", op.ID, err)
		}
		replayed++
	}

	slog.Info("sync pass complete", "replayed", replayed, "failed", failed)
	return nil
}

// replay pushes one queued operation to the remote and, for surviving
// records, marks the local row synced. A record that vanished locally
// before its INSERT/UPDATE replayed has nothing left to say; that counts
// as success so the entry retires.
func (e *Engine) replay(ctx context.Context, op model.PendingOperation) error {
	callCtx, cancel := context.WithTimeout(ctx, e.config.CallTimeout)
	defer cancel()

	switch op.Kind {
	case model.OpInsert, model.OpUpdate:
		record, err := e.localRecord(callCtx, op.Table, op.RecordID)
		if err != nil {
			return err
		}
		if record == nil {
			slog.Debug("queued record no longer exists locally, skipping",
				"table", op.Table, "record", op.RecordID)
			return nil
		}
		if op.Kind == model.OpInsert {
			err = e.remote.Create(callCtx, op.Table, record)
		} else {
			err = e.remote.Update(callCtx, op.Table, op.RecordID, record)
		}
		if err != nil {
			return err
		}
		return e.store.MarkRecordSynced(ctx, op.Table, op.RecordID)

	case model.OpDelete:
		// The local record is already gone; the client treats a remote
		// 404 as success, so the entry cannot accumulate forever.
		return e.remote.Delete(callCtx, op.Table, op.RecordID)

	case model.OpUpsert:
		record, err := e.localRecord(callCtx, op.Table, op.RecordID)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}
		conflictKey := ""
		if op.Table == model.TableBudgets {
			conflictKey = model.BudgetConflictKey
		}
		if err := e.remote.Upsert(callCtx, op.Table, record, conflictKey); err != nil {
			return err
		}
		return e.store.MarkRecordSynced(ctx, op.Table, op.RecordID)

	default:
		return fmt.Errorf("unknown queue operation %q", op.Kind)
	}
}

// localRecord loads the current local row for replay. Returning a typed
// record keeps json marshaling consistent with the pull path, and the
// json:"-" tag on sync status strips the local-only field from the wire.
func (e *Engine) localRecord(ctx context.Context, table, id string) (any, error) {
	switch table {
	case model.TableTransactions:
		txn, err := e.store.GetTransactionByID(ctx, id)
		if err != nil || txn == nil {
			return nil, err
		}
		return txn, nil
	case model.TableCategories:
		cat, err := e.store.GetCategoryByID(ctx, id)
		if err != nil || cat == nil {
			return nil, err
		}
		return cat, nil
	case model.TableBudgets:
		budget, err := e.store.GetBudgetByID(ctx, id)
		if err != nil || budget == nil {
			return nil, err
		}
		return budget, nil
	case model.TableGoals:
		goal, err := e.store.GetGoalByID(ctx, id)
		if err != nil || goal == nil {
			return nil, err
		}
		return goal, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}
