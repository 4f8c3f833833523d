package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. Current is only moved by explicit add-funds
// operations, never recomputed from transactions.
type Goal struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Target     decimal.Decimal `json:"target_amount"`
	Current    decimal.Decimal `json:"current_amount"`
	Deadline   Date            `json:"deadline,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	Color      string          `json:"color,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	SyncStatus SyncStatus      `json:"-"`
}

// GoalPatch holds the fields an update may change.
type GoalPatch struct {
	Name     *string
	Target   *decimal.Decimal
	Deadline *Date
	Icon     *string
	Color    *string
}

// Apply merges the patch into g.
func (p GoalPatch) Apply(g *Goal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.Deadline != nil {
		g.Deadline = *p.Deadline
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
}
