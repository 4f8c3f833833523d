package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

const transactionColumns = `id, user_id, category_id, type, amount, date, description,
	attachment_url, attachment_name, created_at, updated_at, sync_status`

// CreateTransaction persists a new transaction and its INSERT queue entry
// atomically. An id is assigned when absent; timestamps are stamped and the
// record starts pending.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	txn.SyncStatus = model.SyncPending

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID, txn.UserID, nullString(txn.CategoryID), string(txn.Type),
			txn.Amount, txn.Date, nullString(txn.Description),
			nullString(txn.AttachmentURL), nullString(txn.AttachmentName),
			txn.CreatedAt, txn.UpdatedAt, string(txn.SyncStatus))
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return enqueueTx(tx, model.TableTransactions, model.OpInsert, txn.ID, nil)
	})
	if err != nil {
		return err
	}

	slog.Debug("created transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return nil
}

// UpdateTransaction merges the patch into an existing transaction, resets
// its sync status to pending and enqueues an UPDATE.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	txn, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}

	patch.Apply(txn)
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}
	txn.UpdatedAt = time.Now().UTC()
	txn.SyncStatus = model.SyncPending

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			UPDATE transactions
			SET category_id = ?, type = ?, amount = ?, date = ?, description = ?,
				attachment_url = ?, attachment_name = ?, updated_at = ?, sync_status = ?
			WHERE id = ?`,
			nullString(txn.CategoryID), string(txn.Type), txn.Amount, txn.Date,
			nullString(txn.Description), nullString(txn.AttachmentURL),
			nullString(txn.AttachmentName), txn.UpdatedAt, string(txn.SyncStatus), id)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return enqueueTx(tx, model.TableTransactions, model.OpUpdate, id, nil)
	})
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// DeleteTransaction removes a transaction and enqueues a DELETE carrying
// the pre-delete snapshot. Deleting an absent id returns (nil, nil) and
// leaves the queue untouched.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	txn, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return enqueueTx(tx, model.TableTransactions, model.OpDelete, id, txn)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("deleted transaction", "id", id)
	return txn, nil
}

// GetTransactionByID returns a transaction or nil when absent.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns a user's transactions, newest first, narrowed by
// the optional filter fields.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`)
	args := []any{userID}

	if filter.Type != "" {
		sb.WriteString(` AND type = ?`)
		args = append(args, string(filter.Type))
	}
	if filter.CategoryID != "" {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, filter.CategoryID)
	}
	if filter.From != nil {
		sb.WriteString(` AND date >= ?`)
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		sb.WriteString(` AND date <= ?`)
		args = append(args, filter.To.String())
	}
	sb.WriteString(` ORDER BY date DESC, created_at DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

// BulkUpsertTransactions stores records freshly pulled from the remote.
// They arrive confirmed, so they land synced and no queue entries are made.
func (s *SQLiteStorage) BulkUpsertTransactions(ctx context.Context, txns []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(txns) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO transactions (` + transactionColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i := range txns {
			txn := &txns[i]
			txn.SyncStatus = model.SyncSynced
			if _, err := stmt.Exec(
				txn.ID, txn.UserID, nullString(txn.CategoryID), string(txn.Type),
				txn.Amount, txn.Date, nullString(txn.Description),
				nullString(txn.AttachmentURL), nullString(txn.AttachmentName),
				txn.CreatedAt, txn.UpdatedAt, string(txn.SyncStatus)); err != nil {
				return fmt.Errorf("failed to upsert transaction %s: %w", txn.ID, err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var categoryID, description, attachmentURL, attachmentName sql.NullString
	var recordType, syncStatus string

	err := row.Scan(&txn.ID, &txn.UserID, &categoryID, &recordType, &txn.Amount,
		&txn.Date, &description, &attachmentURL, &attachmentName,
		&txn.CreatedAt, &txn.UpdatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}

	txn.CategoryID = categoryID.String
	txn.Type = model.RecordType(recordType)
	txn.Description = description.String
	txn.AttachmentURL = attachmentURL.String
	txn.AttachmentName = attachmentName.String
	txn.SyncStatus = model.SyncStatus(syncStatus)
	return &txn, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
