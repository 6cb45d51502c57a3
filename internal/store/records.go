package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sodcapital/reconcile/internal/model"
)

// CreateRecord creates the reconciliation record for a freshly stored
// statement transaction, in unresolved status.
func (s *Store) CreateRecord(transactionID int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var newID int64
	err := s.db.QueryRow(`
		INSERT INTO reconciliation_records (transaction_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id;
	`, transactionID, model.StatusUnresolved, now, now).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("creating reconciliation record: %w", err)
	}
	return newID, nil
}

// GetRecord returns a reconciliation record by id, or ErrNotFound.
func (s *Store) GetRecord(recordID int64) (*model.ReconciliationRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, transaction_id, entry_id, status, note, created_at, updated_at
		FROM reconciliation_records
		WHERE id = ?
	`, recordID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading reconciliation record %d: %w", recordID, err)
	}
	return rec, nil
}

// ListRecords returns reconciliation records for an account in ascending
// posting-date order of their transactions. An empty status lists all.
func (s *Store) ListRecords(account string, status model.RecordStatus) ([]*model.ReconciliationRecord, error) {
	query := `
		SELECT r.id, r.transaction_id, r.entry_id, r.status, r.note, r.created_at, r.updated_at
		FROM reconciliation_records r
		JOIN statement_transactions t ON t.id = r.transaction_id
		WHERE t.account = ?`
	args := []any{account}

	if status != "" {
		query += " AND r.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY t.posted_on, r.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reconciliation records: %w", err)
	}
	defer rows.Close()

	var records []*model.ReconciliationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reconciliation record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateRecord transitions a record to a new status, replacing its entry
// link and note. The partial unique index on active entry links turns a
// double-claim into ErrEntryAlreadyReconciled.
func (s *Store) UpdateRecord(recordID int64, status model.RecordStatus, entryID *int64, note string) error {
	res, err := s.db.Exec(`
		UPDATE reconciliation_records
		SET status = ?, entry_id = ?, note = ?, updated_at = ?
		WHERE id = ?
	`, status, entryID, note, time.Now().UTC().Format(time.RFC3339), recordID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: reconciliation_records.entry_id") {
			return ErrEntryAlreadyReconciled
		}
		return fmt.Errorf("updating reconciliation record %d: %w", recordID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating reconciliation record %d: %w", recordID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumedEntryIDs returns the ledger entry ids currently claimed by
// matched or divergent records for an account.
func (s *Store) ConsumedEntryIDs(account string) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT r.entry_id
		FROM reconciliation_records r
		JOIN statement_transactions t ON t.id = r.transaction_id
		WHERE t.account = ? AND r.status IN (?, ?) AND r.entry_id IS NOT NULL
	`, account, model.StatusMatched, model.StatusDivergent)
	if err != nil {
		return nil, fmt.Errorf("listing consumed entries: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var entryID int64
		if err := rows.Scan(&entryID); err != nil {
			return nil, fmt.Errorf("scanning consumed entry id: %w", err)
		}
		ids = append(ids, entryID)
	}
	return ids, rows.Err()
}

func scanRecord(row scanner) (*model.ReconciliationRecord, error) {
	var rec model.ReconciliationRecord
	var entryID sql.NullInt64
	var createdAt, updatedAt string

	if err := row.Scan(&rec.ID, &rec.TransactionID, &entryID, &rec.Status, &rec.Note, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if entryID.Valid {
		rec.EntryID = &entryID.Int64
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	return &rec, nil
}
