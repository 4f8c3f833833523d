package model

import (
	"encoding/json"
	"time"
)

// OpKind is the mutation recorded in the sync queue.
type OpKind string

// Queue operation kinds.
const (
	OpInsert OpKind = "INSERT"
	OpUpdate OpKind = "UPDATE"
	OpDelete OpKind = "DELETE"
	OpUpsert OpKind = "UPSERT"
)

// Valid reports whether k is a known operation kind.
func (k OpKind) Valid() bool {
	switch k {
	case OpInsert, OpUpdate, OpDelete, OpUpsert:
		return true
	}
	return false
}

// Table names the queue and the remote client address.
const (
	TableTransactions = "transactions"
	TableCategories   = "categories"
	TableBudgets      = "budgets"
	TableGoals        = "goals"
	TableProfiles     = "profiles"
)

// KnownTable reports whether name is one of the synced collections.
func KnownTable(name string) bool {
	switch name {
	case TableTransactions, TableCategories, TableBudgets, TableGoals:
		return true
	}
	return false
}

// PendingOperation is one queued local mutation awaiting remote replay.
// ID comes from the queue's AUTOINCREMENT column and is the replay order:
// strictly monotonic, immune to wall-clock collisions. Snapshot is only set
// for DELETE, where the local record is already gone by replay time.
type PendingOperation struct {
	ID         int64           `json:"id"`
	Table      string          `json:"table"`
	Kind       OpKind          `json:"kind"`
	RecordID   string          `json:"record_id"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}
