// Package service defines the boundary contracts between the local store,
// the sync engine, the remote backend and the user-facing façade.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// TransactionFilter narrows a per-user transaction query. Zero values mean
// "no constraint". Results are ordered by date descending.
type TransactionFilter struct {
	Type       model.RecordType
	CategoryID string
	From       *model.Date
	To         *model.Date
	Limit      int
}

// BudgetFilter narrows a per-user budget query.
type BudgetFilter struct {
	Month int
	Year  int
}

// Storage is the contract for the local mirror store. Every mutating call
// persists the record and its queue entry atomically; bulk upserts are the
// pull path and never touch the queue.
type Storage interface {
	// Transactions
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]model.Transaction, error)
	BulkUpsertTransactions(ctx context.Context, txns []model.Transaction) error

	// Categories
	CreateCategory(ctx context.Context, cat *model.Category) error
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, userID string, categoryType model.RecordType) ([]model.Category, error)
	BulkUpsertCategories(ctx context.Context, cats []model.Category) error
	// DeleteCategoriesLocal is the dedup repair path: hard delete with no
	// queue entries, so legitimate remote rows are never deleted upstream.
	DeleteCategoriesLocal(ctx context.Context, ids []string) error

	// Budgets
	SaveBudget(ctx context.Context, budget *model.Budget) error
	GetBudgetByID(ctx context.Context, id string) (*model.Budget, error)
	DeleteBudget(ctx context.Context, id string) (*model.Budget, error)
	ListBudgets(ctx context.Context, userID string, filter BudgetFilter) ([]model.Budget, error)
	BulkUpsertBudgets(ctx context.Context, budgets []model.Budget) error

	// Goals
	CreateGoal(ctx context.Context, goal *model.Goal) error
	UpdateGoal(ctx context.Context, id string, patch model.GoalPatch) (*model.Goal, error)
	AddGoalFunds(ctx context.Context, id string, amount decimal.Decimal) (*model.Goal, error)
	DeleteGoal(ctx context.Context, id string) (*model.Goal, error)
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]model.Goal, error)
	BulkUpsertGoals(ctx context.Context, goals []model.Goal) error

	// Profile
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error

	// Operation queue
	PendingOperations(ctx context.Context) ([]model.PendingOperation, error)
	RemovePendingOperation(ctx context.Context, id int64) error
	MarkRecordSynced(ctx context.Context, table, id string) error

	// Lifecycle
	WipeUser(ctx context.Context, userID string) error
	Migrate(ctx context.Context) error
	Close() error
}

// RemoteClient is the contract for the hosted backend. Implementations must
// make Delete idempotent: deleting an id the remote no longer has is
// success, otherwise queue entries would retry forever.
type RemoteClient interface {
	FetchTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	FetchCategories(ctx context.Context, userID string) ([]model.Category, error)
	FetchBudgets(ctx context.Context, userID string) ([]model.Budget, error)
	FetchGoals(ctx context.Context, userID string) ([]model.Goal, error)
	FetchProfile(ctx context.Context, userID string) (*model.Profile, error)

	Create(ctx context.Context, table string, record any) error
	Update(ctx context.Context, table, id string, record any) error
	Delete(ctx context.Context, table, id string) error
	Upsert(ctx context.Context, table string, record any, conflictKey string) error
}

// MonthSummary aggregates one calendar month of transactions.
type MonthSummary struct {
	Month        int
	Year         int
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Balance      decimal.Decimal
	Transactions int
}

// CategoryExpense is one slice of the expenses-by-category breakdown.
type CategoryExpense struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Total      decimal.Decimal
	Count      int
}

// ImportSummary reports what an import run did. Invalid rows are counted,
// never fatal to the batch.
type ImportSummary struct {
	Categories   int
	Transactions int
	Errors       int
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
