// Package tracker exposes the offline-first façade the UI layers call.
// Every write lands in the local store first and returns immediately; the
// sync engine flushes the queue to the remote in the background.
package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
	syncengine "github.com/adriaviles2711/finanzaApp/internal/sync"
)

// Manager is the data manager façade. It owns the active session's user id
// and coordinates the local store, the remote client and the sync engine.
type Manager struct {
	store  service.Storage
	remote service.RemoteClient
	engine *syncengine.Engine

	mu     sync.Mutex
	userID string
}

// NewManager wires a façade over its collaborators.
func NewManager(store service.Storage, remote service.RemoteClient, engine *syncengine.Engine) *Manager {
	return &Manager{
		store:  store,
		remote: remote,
		engine: engine,
	}
}

// UserID returns the active session's user id, or "".
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

func (m *Manager) requireUser() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userID == "" {
		return "", common.ErrNotAuthenticated
	}
	return m.userID, nil
}

// scheduleSync kicks the debounced background drain after a successful
// local mutation.
func (m *Manager) scheduleSync() {
	if m.engine != nil {
		m.engine.ScheduleDrain()
	}
}

// Sync runs a drain pass immediately.
func (m *Manager) Sync(ctx context.Context) error {
	if m.engine == nil {
		return nil
	}
	return m.engine.Drain(ctx)
}

// ClearUserData wipes all local state for the active user and detaches the
// session. Local-only, all-or-nothing; nothing is queued.
func (m *Manager) ClearUserData(ctx context.Context) error {
	userID, err := m.requireUser()
	if err != nil {
		return err
	}
	if err := m.store.WipeUser(ctx, userID); err != nil {
		return err
	}

	m.mu.Lock()
	m.userID = ""
	m.mu.Unlock()
	if m.engine != nil {
		m.engine.SetUser("")
	}
	return nil
}

// ----- Transactions -----

// NewTransaction carries the caller-supplied fields of a transaction.
type NewTransaction struct {
	CategoryID     string
	Type           model.RecordType
	Amount         decimal.Decimal
	Date           model.Date
	Description    string
	AttachmentURL  string
	AttachmentName string
}

// CreateTransaction validates and stores a transaction locally, then
// schedules a background sync. The stored record is returned before any
// remote round-trip happens.
func (m *Manager) CreateTransaction(ctx context.Context, input NewTransaction) (*model.Transaction, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, common.ValidationError("transaction type must be expense or income, got %q", input.Type)
	}
	if input.Amount.IsNegative() {
		return nil, common.ValidationError("amount cannot be negative")
	}
	if input.Date.IsZero() {
		return nil, common.ValidationError("date is required")
	}

	txn := &model.Transaction{
		UserID:         userID,
		CategoryID:     input.CategoryID,
		Type:           input.Type,
		Amount:         input.Amount,
		Date:           input.Date,
		Description:    input.Description,
		AttachmentURL:  input.AttachmentURL,
		AttachmentName: input.AttachmentName,
	}
	if err := m.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	m.scheduleSync()
	return txn, nil
}

// UpdateTransaction patches a transaction locally and schedules a sync.
func (m *Manager) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if _, err := m.requireUser(); err != nil {
		return nil, err
	}
	txn, err := m.store.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	m.scheduleSync()
	return txn, nil
}

// DeleteTransaction removes a transaction locally and schedules a sync.
// Deleting an absent id is a no-op.
func (m *Manager) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := m.requireUser(); err != nil {
		return err
	}
	deleted, err := m.store.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if deleted != nil {
		m.scheduleSync()
	}
	return nil
}

// Transactions lists the active user's transactions, newest first.
func (m *Manager) Transactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	return m.store.ListTransactions(ctx, userID, filter)
}

// ----- Categories -----

// NewCategory carries the caller-supplied fields of a category.
type NewCategory struct {
	Name  string
	Type  model.RecordType
	Icon  string
	Color string
}

// CreateCategory validates and stores a category locally.
func (m *Manager) CreateCategory(ctx context.Context, input NewCategory) (*model.Category, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, common.ValidationError("category name is required")
	}
	if !input.Type.Valid() {
		return nil, common.ValidationError("category type must be expense or income, got %q", input.Type)
	}

	cat := &model.Category{
		UserID: userID,
		Name:   input.Name,
		Type:   input.Type,
		Icon:   input.Icon,
		Color:  input.Color,
	}
	if err := m.store.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	m.scheduleSync()
	return cat, nil
}

// UpdateCategory patches a category locally and schedules a sync.
func (m *Manager) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if _, err := m.requireUser(); err != nil {
		return nil, err
	}
	cat, err := m.store.UpdateCategory(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	m.scheduleSync()
	return cat, nil
}

// DeleteCategory removes a category locally and schedules a sync.
func (m *Manager) DeleteCategory(ctx context.Context, id string) error {
	if _, err := m.requireUser(); err != nil {
		return err
	}
	deleted, err := m.store.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if deleted != nil {
		m.scheduleSync()
	}
	return nil
}

// Categories lists the active user's categories, optionally narrowed to
// one type.
func (m *Manager) Categories(ctx context.Context, categoryType model.RecordType) ([]model.Category, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	return m.store.ListCategories(ctx, userID, categoryType)
}

// ----- Budgets -----

// NewBudget carries the caller-supplied fields of a budget.
type NewBudget struct {
	CategoryID string
	Month      int
	Year       int
	Limit      decimal.Decimal
}

// SaveBudget upserts the budget for (user, category, month, year).
func (m *Manager) SaveBudget(ctx context.Context, input NewBudget) (*model.Budget, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, common.ValidationError("month %d out of range", input.Month)
	}
	if !input.Limit.IsPositive() {
		return nil, common.ValidationError("budget limit must be positive")
	}
	if input.CategoryID == "" {
		return nil, common.ValidationError("category is required")
	}

	budget := &model.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Month:      input.Month,
		Year:       input.Year,
		Limit:      input.Limit,
	}
	if err := m.store.SaveBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	m.scheduleSync()
	return budget, nil
}

// DeleteBudget removes a budget locally and schedules a sync. Deleting an
// absent id is a no-op.
func (m *Manager) DeleteBudget(ctx context.Context, id string) error {
	if _, err := m.requireUser(); err != nil {
		return err
	}
	deleted, err := m.store.DeleteBudget(ctx, id)
	if err != nil {
		return err
	}
	if deleted != nil {
		m.scheduleSync()
	}
	return nil
}

// Budgets lists the active user's budgets for an optional period.
func (m *Manager) Budgets(ctx context.Context, filter service.BudgetFilter) ([]model.Budget, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	return m.store.ListBudgets(ctx, userID, filter)
}

// ----- Goals -----

// NewGoal carries the caller-supplied fields of a goal.
type NewGoal struct {
	Name     string
	Target   decimal.Decimal
	Deadline model.Date
	Icon     string
	Color    string
}

// CreateGoal validates and stores a goal locally.
func (m *Manager) CreateGoal(ctx context.Context, input NewGoal) (*model.Goal, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, common.ValidationError("goal name is required")
	}
	if input.Target.IsNegative() {
		return nil, common.ValidationError("goal target cannot be negative")
	}

	goal := &model.Goal{
		UserID:   userID,
		Name:     input.Name,
		Target:   input.Target,
		Current:  decimal.Zero,
		Deadline: input.Deadline,
		Icon:     input.Icon,
		Color:    input.Color,
	}
	if err := m.store.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	m.scheduleSync()
	return goal, nil
}

// UpdateGoal patches a goal locally and schedules a sync.
func (m *Manager) UpdateGoal(ctx context.Context, id string, patch model.GoalPatch) (*model.Goal, error) {
	if _, err := m.requireUser(); err != nil {
		return nil, err
	}
	goal, err := m.store.UpdateGoal(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	m.scheduleSync()
	return goal, nil
}

// AddGoalFunds moves a goal's saved amount by the given delta.
func (m *Manager) AddGoalFunds(ctx context.Context, id string, amount decimal.Decimal) (*model.Goal, error) {
	if _, err := m.requireUser(); err != nil {
		return nil, err
	}
	goal, err := m.store.AddGoalFunds(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	m.scheduleSync()
	return goal, nil
}

// DeleteGoal removes a goal locally and schedules a sync.
func (m *Manager) DeleteGoal(ctx context.Context, id string) error {
	if _, err := m.requireUser(); err != nil {
		return err
	}
	deleted, err := m.store.DeleteGoal(ctx, id)
	if err != nil {
		return err
	}
	if deleted != nil {
		m.scheduleSync()
	}
	return nil
}

// Goals lists the active user's goals.
func (m *Manager) Goals(ctx context.Context) ([]model.Goal, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	return m.store.ListGoals(ctx, userID)
}

// Profile returns the locally mirrored profile, or nil.
func (m *Manager) Profile(ctx context.Context) (*model.Profile, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	return m.store.GetProfile(ctx, userID)
}
