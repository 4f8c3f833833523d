package model

import (
	"strings"
	"time"
)

// Category groups transactions of one type under a name, icon and color.
// (Name, Type) is unique per user; bootstrap repairs violations.
type Category struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Type       RecordType `json:"type"`
	Icon       string     `json:"icon,omitempty"`
	Color      string     `json:"color,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	SyncStatus SyncStatus `json:"-"`
}

// Key returns the case-insensitive (name, type) identity used for
// deduplication and import matching.
func (c Category) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "_" + string(c.Type)
}

// CategoryPatch holds the fields an update may change.
type CategoryPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

// Apply merges the patch into c.
func (p CategoryPatch) Apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
}
