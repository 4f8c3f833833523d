package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testTransaction(userID string, amount string) *model.Transaction {
	return &model.Transaction{
		UserID:      userID,
		CategoryID:  "cat-1",
		Type:        model.TypeExpense,
		Amount:      decimal.RequireFromString(amount),
		Date:        model.NewDate(2026, 3, 15),
		Description: "Lunch",
	}
}

func TestCreateTransactionQueuesOperation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("user-1", "12.50")
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	if txn.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if txn.SyncStatus != model.SyncPending {
		t.Errorf("Expected sync status pending, got %s", txn.SyncStatus)
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("Expected 1 pending operation, got %d", len(ops))
	}
	if ops[0].Kind != model.OpInsert || ops[0].Table != model.TableTransactions || ops[0].RecordID != txn.ID {
		t.Errorf("Unexpected operation: %+v", ops[0])
	}
}

func TestQueueKeepsInsertionOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	// Several writes in quick succession land with identical wall-clock
	// timestamps; the queue must still replay them in write order.
	first := testTransaction("user-1", "1.00")
	if err := store.CreateTransaction(ctx, first); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	desc := "edited"
	if _, err := store.UpdateTransaction(ctx, first.ID, model.TransactionPatch{Description: &desc}); err != nil {
		t.Fatalf("Failed to update transaction: %v", err)
	}
	if _, err := store.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatalf("Failed to delete transaction: %v", err)
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("Expected 3 pending operations, got %d", len(ops))
	}

	wantKinds := []model.OpKind{model.OpInsert, model.OpUpdate, model.OpDelete}
	for i, op := range ops {
		if op.Kind != wantKinds[i] {
			t.Errorf("Operation %d: expected %s, got %s", i, wantKinds[i], op.Kind)
		}
		if i > 0 && ops[i].ID <= ops[i-1].ID {
			t.Errorf("Queue ids not monotonic: %d then %d", ops[i-1].ID, ops[i].ID)
		}
	}
}

func TestDeleteTransactionKeepsSnapshot(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("user-1", "42.00")
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	deleted, err := store.DeleteTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Failed to delete transaction: %v", err)
	}
	if deleted == nil || deleted.ID != txn.ID {
		t.Fatal("Expected the deleted record back")
	}

	// The local row is gone but the queue still carries the operation
	// with a snapshot, so the remote delete can happen later.
	if got, err := store.GetTransactionByID(ctx, txn.ID); err != nil || got != nil {
		t.Fatalf("Expected local row gone, got %v (err %v)", got, err)
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	deleteOp := ops[len(ops)-1]
	if deleteOp.Kind != model.OpDelete {
		t.Fatalf("Expected delete operation, got %s", deleteOp.Kind)
	}
	if len(deleteOp.Snapshot) == 0 {
		t.Error("Expected delete operation to carry a snapshot")
	}
}

func TestDeleteAbsentTransactionIsNoop(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	deleted, err := store.DeleteTransaction(ctx, "missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deleted != nil {
		t.Error("Expected nil for an absent record")
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("Expected empty queue, got %d operations", len(ops))
	}
}

func TestBulkUpsertDoesNotQueue(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := []model.Transaction{
		{
			ID:         "remote-1",
			UserID:     "user-1",
			CategoryID: "cat-1",
			Type:       model.TypeIncome,
			Amount:     decimal.RequireFromString("100"),
			Date:       model.NewDate(2026, 1, 2),
		},
		{
			ID:         "remote-2",
			UserID:     "user-1",
			CategoryID: "cat-1",
			Type:       model.TypeExpense,
			Amount:     decimal.RequireFromString("7.77"),
			Date:       model.NewDate(2026, 1, 3),
		},
	}
	if err := store.BulkUpsertTransactions(ctx, txns); err != nil {
		t.Fatalf("Failed to bulk upsert: %v", err)
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	if len(ops) != 0 {
		t.Errorf("Bulk upsert must not queue operations, got %d", len(ops))
	}

	got, err := store.GetTransactionByID(ctx, "remote-1")
	if err != nil {
		t.Fatalf("Failed to load transaction: %v", err)
	}
	if got.SyncStatus != model.SyncSynced {
		t.Errorf("Expected remote rows to land synced, got %s", got.SyncStatus)
	}
}

func TestMarkRecordSynced(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testTransaction("user-1", "5.00")
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	if err := store.MarkRecordSynced(ctx, model.TableTransactions, txn.ID); err != nil {
		t.Fatalf("Failed to mark synced: %v", err)
	}

	got, err := store.GetTransactionByID(ctx, txn.ID)
	if err != nil {
		t.Fatalf("Failed to load transaction: %v", err)
	}
	if got.SyncStatus != model.SyncSynced {
		t.Errorf("Expected synced, got %s", got.SyncStatus)
	}

	if err := store.MarkRecordSynced(ctx, "sqlite_master", txn.ID); err == nil {
		t.Error("Expected unknown table to be rejected")
	}
}

func TestSaveBudgetUpsertsOnNaturalKey(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	budget := &model.Budget{
		UserID:     "user-1",
		CategoryID: "cat-1",
		Month:      3,
		Year:       2026,
		Limit:      decimal.RequireFromString("300"),
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("Failed to save budget: %v", err)
	}
	firstID := budget.ID

	// Same period again: the limit changes, the row does not duplicate.
	second := &model.Budget{
		UserID:     "user-1",
		CategoryID: "cat-1",
		Month:      3,
		Year:       2026,
		Limit:      decimal.RequireFromString("450"),
	}
	if err := store.SaveBudget(ctx, second); err != nil {
		t.Fatalf("Failed to save budget twice: %v", err)
	}
	if second.ID != firstID {
		t.Errorf("Expected the stored id %s to survive, got %s", firstID, second.ID)
	}

	budgets, err := store.ListBudgets(ctx, "user-1", service.BudgetFilter{Month: 3, Year: 2026})
	if err != nil {
		t.Fatalf("Failed to list budgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("Expected 1 budget, got %d", len(budgets))
	}
	if !budgets[0].Limit.Equal(decimal.RequireFromString("450")) {
		t.Errorf("Expected limit 450, got %s", budgets[0].Limit)
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	for _, op := range ops {
		if op.Table == model.TableBudgets && op.Kind != model.OpUpsert {
			t.Errorf("Budget writes must queue as upserts, got %s", op.Kind)
		}
	}
}

func TestDeleteBudgetQueuesSnapshot(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	budget := &model.Budget{
		UserID:     "user-1",
		CategoryID: "cat-1",
		Month:      5,
		Year:       2026,
		Limit:      decimal.RequireFromString("200"),
	}
	if err := store.SaveBudget(ctx, budget); err != nil {
		t.Fatalf("Failed to save budget: %v", err)
	}

	deleted, err := store.DeleteBudget(ctx, budget.ID)
	if err != nil {
		t.Fatalf("Failed to delete budget: %v", err)
	}
	if deleted == nil || deleted.ID != budget.ID {
		t.Fatalf("Expected the deleted budget back, got %+v", deleted)
	}

	remaining, err := store.ListBudgets(ctx, "user-1", service.BudgetFilter{})
	if err != nil {
		t.Fatalf("Failed to list budgets: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected no budgets left, got %d", len(remaining))
	}

	ops, err := store.PendingOperations(ctx)
	if err != nil {
		t.Fatalf("Failed to list pending operations: %v", err)
	}
	last := ops[len(ops)-1]
	if last.Kind != model.OpDelete || last.Table != model.TableBudgets {
		t.Errorf("Expected a budget DELETE entry, got %s on %s", last.Kind, last.Table)
	}
	if len(last.Snapshot) == 0 {
		t.Error("Expected the delete entry to carry the pre-delete snapshot")
	}

	absent, err := store.DeleteBudget(ctx, "missing")
	if err != nil {
		t.Fatalf("Deleting an absent budget should not error: %v", err)
	}
	if absent != nil {
		t.Errorf("Expected nil for an absent budget, got %+v", absent)
	}
}

func TestAddGoalFundsClampsAtZero(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	goal := &model.Goal{
		UserID: "user-1",
		Name:   "Vacaciones",
		Target: decimal.RequireFromString("1000"),
	}
	if err := store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("Failed to create goal: %v", err)
	}

	updated, err := store.AddGoalFunds(ctx, goal.ID, decimal.RequireFromString("150"))
	if err != nil {
		t.Fatalf("Failed to add funds: %v", err)
	}
	if !updated.Current.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Expected 150, got %s", updated.Current)
	}

	updated, err = store.AddGoalFunds(ctx, goal.ID, decimal.RequireFromString("-500"))
	if err != nil {
		t.Fatalf("Failed to withdraw funds: %v", err)
	}
	if !updated.Current.IsZero() {
		t.Errorf("Expected withdrawal to clamp at zero, got %s", updated.Current)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	dates := []model.Date{
		model.NewDate(2026, 1, 10),
		model.NewDate(2026, 2, 10),
		model.NewDate(2026, 3, 10),
	}
	for i, date := range dates {
		txn := testTransaction("user-1", "10.00")
		txn.Date = date
		if i == 1 {
			txn.Type = model.TypeIncome
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("Failed to create transaction: %v", err)
		}
	}
	other := testTransaction("user-2", "99.00")
	if err := store.CreateTransaction(ctx, other); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	all, err := store.ListTransactions(ctx, "user-1", service.TransactionFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 transactions for user-1, got %d", len(all))
	}
	// Newest first.
	if !all[0].Date.After(all[2].Date.Time) {
		t.Error("Expected newest-first ordering")
	}

	from := model.NewDate(2026, 2, 1)
	to := model.NewDate(2026, 2, 28)
	feb, err := store.ListTransactions(ctx, "user-1", service.TransactionFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(feb) != 1 {
		t.Fatalf("Expected 1 February transaction, got %d", len(feb))
	}

	incomes, err := store.ListTransactions(ctx, "user-1", service.TransactionFilter{Type: model.TypeIncome})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(incomes) != 1 {
		t.Fatalf("Expected 1 income, got %d", len(incomes))
	}
}

func TestWipeUserClearsEverything(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := &model.Category{UserID: "user-1", Name: "Comida", Type: model.TypeExpense}
	if err := store.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	txn := testTransaction("user-1", "10.00")
	if err := store.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	if err := store.SaveProfile(ctx, &model.Profile{ID: "user-1", Email: "a@b.c"}); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	if err := store.WipeUser(ctx, "user-1"); err != nil {
		t.Fatalf("Failed to wipe: %v", err)
	}

	cats, _ := store.ListCategories(ctx, "user-1", "")
	txns, _ := store.ListTransactions(ctx, "user-1", service.TransactionFilter{})
	profile, _ := store.GetProfile(ctx, "user-1")
	ops, _ := store.PendingOperations(ctx)

	if len(cats) != 0 || len(txns) != 0 || profile != nil {
		t.Error("Expected all user rows gone")
	}
	if len(ops) != 0 {
		t.Errorf("Expected the queue emptied, got %d operations", len(ops))
	}
}

func TestUpdateMissingTransactionReturnsNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	desc := "nope"
	_, err := store.UpdateTransaction(ctx, "missing", model.TransactionPatch{Description: &desc})
	if err == nil {
		t.Fatal("Expected an error for a missing record")
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	bad := testTransaction("user-1", "10.00")
	bad.Amount = decimal.RequireFromString("-5")
	if err := store.CreateTransaction(ctx, bad); err == nil {
		t.Error("Expected negative amount to be rejected")
	}

	bad = testTransaction("user-1", "10.00")
	bad.Type = "transfer"
	if err := store.CreateTransaction(ctx, bad); err == nil {
		t.Error("Expected unknown type to be rejected")
	}
}
