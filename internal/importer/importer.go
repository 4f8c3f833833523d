// Package importer parses external transaction data (CSV exports, JSON
// backups) into neutral rows. Category resolution and persistence happen
// in the tracker layer, so parsers stay free of storage concerns.
package importer

import (
	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// ParsedTransaction is one imported row, already normalized: the amount is
// always non-negative and the type carries the direction.
type ParsedTransaction struct {
	Date         model.Date
	Amount       decimal.Decimal
	Type         model.RecordType
	CategoryName string
	Description  string
}

// ParsedCategory is one category entry from a backup file.
type ParsedCategory struct {
	ID    string
	Name  string
	Type  model.RecordType
	Icon  string
	Color string
}

// Backup is the decoded content of a JSON backup file. Transactions
// reference categories by the ids the backup carried, which rarely match
// the ids in the receiving account.
type Backup struct {
	Categories   []ParsedCategory
	Transactions []BackupTransaction
}

// BackupTransaction is one transaction entry from a backup file.
type BackupTransaction struct {
	Date           model.Date
	Amount         decimal.Decimal
	Type           model.RecordType
	CategoryID     string
	Description    string
	AttachmentURL  string
	AttachmentName string
}
