package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category in one month. The natural key is
// (user, category, month, year); saving twice for the same key replaces the
// limit instead of creating a second row.
type Budget struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CategoryID string          `json:"category_id"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	Limit      decimal.Decimal `json:"limit_amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	SyncStatus SyncStatus      `json:"-"`
}

// BudgetConflictKey is the remote upsert conflict target for budgets.
const BudgetConflictKey = "user_id,category_id,month,year"
