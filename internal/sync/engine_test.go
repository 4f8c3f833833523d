package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
	"github.com/adriaviles2711/finanzaApp/internal/storage"
)

var _ service.RemoteClient = (*fakeRemote)(nil)

// fakeRemote records calls and can be told to fail or block.
type fakeRemote struct {
	mu       sync.Mutex
	calls    []string
	failWith map[string]error
	blocked  chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{failWith: make(map[string]error)}
}

func (f *fakeRemote) record(call string) error {
	if f.blocked != nil {
		<-f.blocked
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failWith[call]
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) fail(call string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith[call] = err
}

func recordID(record any) string {
	switch r := record.(type) {
	case *model.Transaction:
		return r.ID
	case *model.Category:
		return r.ID
	case *model.Budget:
		return r.ID
	case *model.Goal:
		return r.ID
	default:
		return fmt.Sprintf("%T", record)
	}
}

func (f *fakeRemote) FetchTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	return nil, nil
}
func (f *fakeRemote) FetchCategories(_ context.Context, _ string) ([]model.Category, error) {
	return nil, nil
}
func (f *fakeRemote) FetchBudgets(_ context.Context, _ string) ([]model.Budget, error) {
	return nil, nil
}
func (f *fakeRemote) FetchGoals(_ context.Context, _ string) ([]model.Goal, error) {
	return nil, nil
}
func (f *fakeRemote) FetchProfile(_ context.Context, _ string) (*model.Profile, error) {
	return nil, nil
}

func (f *fakeRemote) Create(_ context.Context, table string, record any) error {
	return f.record("create:" + table + ":" + recordID(record))
}

func (f *fakeRemote) Update(_ context.Context, table, id string, _ any) error {
	return f.record("update:" + table + ":" + id)
}

func (f *fakeRemote) Delete(_ context.Context, table, id string) error {
	return f.record("delete:" + table + ":" + id)
}

func (f *fakeRemote) Upsert(_ context.Context, table string, record any, _ string) error {
	return f.record("upsert:" + table + ":" + recordID(record))
}

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage, *fakeRemote) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	remote := newFakeRemote()
	engine := NewEngine(store, remote, Config{
		DebounceDelay: 30 * time.Millisecond,
		CallTimeout:   5 * time.Second,
	})
	engine.SetUser("user-1")
	engine.SetOnline(true)
	t.Cleanup(engine.Stop)

	return engine, store, remote
}

func addTransaction(t *testing.T, store *storage.SQLiteStorage, amount string) *model.Transaction {
	t.Helper()
	txn := &model.Transaction{
		UserID:     "user-1",
		CategoryID: "cat-1",
		Type:       model.TypeExpense,
		Amount:     decimal.RequireFromString(amount),
		Date:       model.NewDate(2026, 4, 1),
	}
	require.NoError(t, store.CreateTransaction(context.Background(), txn))
	return txn
}

func pendingCount(t *testing.T, store *storage.SQLiteStorage) int {
	t.Helper()
	ops, err := store.PendingOperations(context.Background())
	require.NoError(t, err)
	return len(ops)
}

func TestDrainReplaysQueueInOrder(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	first := addTransaction(t, store, "1.00")
	second := addTransaction(t, store, "2.00")
	desc := "edited"
	_, err := store.UpdateTransaction(ctx, first.ID, model.TransactionPatch{Description: &desc})
	require.NoError(t, err)

	require.NoError(t, engine.Drain(ctx))

	want := []string{
		"create:transactions:" + first.ID,
		"create:transactions:" + second.ID,
		"update:transactions:" + first.ID,
	}
	assert.Equal(t, want, remote.callLog())
	assert.Equal(t, 0, pendingCount(t, store))

	got, err := store.GetTransactionByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, got.SyncStatus)
}

func TestDrainKeepsFailedEntriesForRetry(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	bad := addTransaction(t, store, "1.00")
	good := addTransaction(t, store, "2.00")
	remote.fail("create:transactions:"+bad.ID, fmt.Errorf("boom"))

	require.NoError(t, engine.Drain(ctx))

	// The failing entry stays queued, the one behind it still went out.
	ops, err := store.PendingOperations(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, bad.ID, ops[0].RecordID)
	assert.Contains(t, remote.callLog(), "create:transactions:"+good.ID)

	// Next pass delivers it once the remote recovers.
	remote.fail("create:transactions:"+bad.ID, nil)
	require.NoError(t, engine.Drain(ctx))
	assert.Equal(t, 0, pendingCount(t, store))
}

func TestDrainSkipsVanishedRecords(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	txn := addTransaction(t, store, "1.00")
	_, err := store.DeleteTransaction(ctx, txn.ID)
	require.NoError(t, err)

	require.NoError(t, engine.Drain(ctx))

	// The insert found nothing to push; only the delete hit the remote.
	assert.Equal(t, []string{"delete:transactions:" + txn.ID}, remote.callLog())
	assert.Equal(t, 0, pendingCount(t, store))
}

func TestDrainDoesNothingOffline(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	addTransaction(t, store, "1.00")
	engine.SetOnline(false)

	require.NoError(t, engine.Drain(ctx))

	assert.Empty(t, remote.callLog())
	assert.Equal(t, 1, pendingCount(t, store))
}

func TestDrainRequiresUser(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	addTransaction(t, store, "1.00")
	engine.SetUser("")

	require.NoError(t, engine.Drain(ctx))

	assert.Empty(t, remote.callLog())
	assert.Equal(t, 1, pendingCount(t, store))
}

func TestDrainSingleFlight(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	addTransaction(t, store, "1.00")
	remote.blocked = make(chan struct{})

	done := make(chan struct{})
	go func() {
		_ = engine.Drain(ctx)
		close(done)
	}()

	// Give the first pass time to grab the guard and block in the call.
	time.Sleep(50 * time.Millisecond)

	// A concurrent pass must bail out immediately instead of replaying
	// the same entries twice.
	require.NoError(t, engine.Drain(ctx))

	close(remote.blocked)
	<-done

	assert.Len(t, remote.callLog(), 1)
	assert.Equal(t, 0, pendingCount(t, store))
}

func TestScheduleDrainDebounces(t *testing.T) {
	engine, store, remote := newTestEngine(t)

	txn := addTransaction(t, store, "1.00")

	// A burst of triggers settles into exactly one pass.
	for i := 0; i < 5; i++ {
		engine.ScheduleDrain()
	}
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, []string{"create:transactions:" + txn.ID}, remote.callLog())
	assert.Equal(t, 0, pendingCount(t, store))
}

func TestComingOnlineTriggersDrain(t *testing.T) {
	engine, store, remote := newTestEngine(t)

	engine.SetOnline(false)
	txn := addTransaction(t, store, "1.00")
	assert.Empty(t, remote.callLog())

	engine.SetOnline(true)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"create:transactions:" + txn.ID}, remote.callLog())
	assert.Equal(t, 0, pendingCount(t, store))
}

func TestPeriodicTriggerDrainsStrandedEntries(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	remote := newFakeRemote()
	engine := NewEngine(store, remote, Config{
		DebounceDelay: 10 * time.Millisecond,
		CallTimeout:   5 * time.Second,
		PeriodicSpec:  "@every 1s",
	})
	engine.SetUser("user-1")
	engine.SetOnline(true)
	t.Cleanup(engine.Stop)

	// An entry nobody schedules a drain for: only the periodic trigger
	// can pick it up.
	txn := addTransaction(t, store, "1.00")

	require.NoError(t, engine.StartPeriodic())
	require.NoError(t, engine.StartPeriodic()) // second start is a no-op

	require.Eventually(t, func() bool {
		return pendingCount(t, store) == 0
	}, 5*time.Second, 50*time.Millisecond, "periodic trigger never drained the queue")
	assert.Contains(t, remote.callLog(), "create:transactions:"+txn.ID)

	engine.Stop()
}

func TestBudgetReplaysAsUpsert(t *testing.T) {
	engine, store, remote := newTestEngine(t)
	ctx := context.Background()

	budget := &model.Budget{
		UserID:     "user-1",
		CategoryID: "cat-1",
		Month:      4,
		Year:       2026,
		Limit:      decimal.RequireFromString("250"),
	}
	require.NoError(t, store.SaveBudget(ctx, budget))

	require.NoError(t, engine.Drain(ctx))

	assert.Equal(t, []string{"upsert:budgets:" + budget.ID}, remote.callLog())
}
