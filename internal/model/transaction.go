// Package model defines the domain records shared by the local store, the
// sync engine and the remote client.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType distinguishes money moving in from money moving out.
type RecordType string

// Valid record types. The amount is always non-negative; the type carries
// the sign.
const (
	TypeExpense RecordType = "expense"
	TypeIncome  RecordType = "income"
)

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// SyncStatus tracks whether a record has been confirmed by the remote
// backend. It moves pending → synced after a successful replay and back to
// pending on every local mutation.
type SyncStatus string

// Sync states.
const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// Transaction is a single expense or income entry.
type Transaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	CategoryID     string          `json:"category_id,omitempty"`
	Type           RecordType      `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Date           Date            `json:"date"`
	Description    string          `json:"description,omitempty"`
	AttachmentURL  string          `json:"attachment_url,omitempty"`
	AttachmentName string          `json:"attachment_name,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	SyncStatus     SyncStatus      `json:"-"`
}

// TransactionPatch holds the fields an update may change. Nil fields are
// left untouched.
type TransactionPatch struct {
	CategoryID     *string
	Type           *RecordType
	Amount         *decimal.Decimal
	Date           *Date
	Description    *string
	AttachmentURL  *string
	AttachmentName *string
}

// Apply merges the patch into t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AttachmentURL != nil {
		t.AttachmentURL = *p.AttachmentURL
	}
	if p.AttachmentName != nil {
		t.AttachmentName = *p.AttachmentName
	}
}
