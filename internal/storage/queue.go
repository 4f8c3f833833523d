package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// enqueueTx appends an operation to the sync queue inside the caller's
// transaction. Ordering comes from the AUTOINCREMENT id, not the timestamp,
// so rapid writes in the same millisecond still replay in causal order.
func enqueueTx(tx *sql.Tx, table string, kind model.OpKind, recordID string, snapshot any) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("invalid queue operation: %q", kind)
	}

	var snapshotJSON sql.NullString
	if snapshot != nil {
		raw, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		snapshotJSON = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := tx.Exec(`
		INSERT INTO sync_queue (table_name, op, record_id, snapshot, enqueued_at)
		VALUES (?, ?, ?, ?, ?)`,
		table, string(kind), recordID, snapshotJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue %s on %s: %w", kind, table, err)
	}
	return nil
}

// PendingOperations returns all queued operations oldest first.
func (s *SQLiteStorage) PendingOperations(ctx context.Context) ([]model.PendingOperation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, op, record_id, snapshot, enqueued_at
		FROM sync_queue
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync queue: %w", err)
	}
	defer rows.Close()

	var ops []model.PendingOperation
	for rows.Next() {
		var op model.PendingOperation
		var kind string
		var snapshot sql.NullString
		if err := rows.Scan(&op.ID, &op.Table, &kind, &op.RecordID, &snapshot, &op.EnqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		op.Kind = model.OpKind(kind)
		if snapshot.Valid {
			op.Snapshot = json.RawMessage(snapshot.String)
		}
		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync queue: %w", err)
	}

	slog.Debug("read pending operations", "count", len(ops))
	return ops, nil
}

// RemovePendingOperation deletes one queue entry after successful replay.
func (s *SQLiteStorage) RemovePendingOperation(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove queue entry %d: %w", id, err)
	}
	return nil
}

// MarkRecordSynced flips a record's sync status after the remote confirmed
// it. Missing records are not an error; the record may have been deleted
// while the drain was running.
func (s *SQLiteStorage) MarkRecordSynced(ctx context.Context, table, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTable(table); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	// table is validated against the fixed collection list above.
	query := fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE id = ?`, table)
	if _, err := s.db.ExecContext(ctx, query, string(model.SyncSynced), id); err != nil {
		return fmt.Errorf("failed to mark %s/%s synced: %w", table, id, err)
	}
	return nil
}
