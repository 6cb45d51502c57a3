package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/ledger"
	"github.com/sodcapital/reconcile/internal/model"
)

// The store satisfies ledger.Source by reading the ledger_entries table,
// which the surrounding application maintains. The reconciliation
// subsystem never writes to it outside of fixtures.

// SettledEntries returns settled entries for an account whose effective
// date falls within [from, to], in ascending id order.
func (s *Store) SettledEntries(account string, from, to time.Time) ([]model.LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, account, direction, amount, due_date, settled_on, status, description
		FROM ledger_entries
		WHERE account = ? AND status = ?
		  AND COALESCE(settled_on, due_date) BETWEEN ? AND ?
		ORDER BY id
	`, account, model.SettlementSettled, from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("listing settled ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Entry returns a ledger entry by id, or ledger.ErrNotFound.
func (s *Store) Entry(entryID int64) (*model.LedgerEntry, error) {
	row := s.db.QueryRow(`
		SELECT id, account, direction, amount, due_date, settled_on, status, description
		FROM ledger_entries
		WHERE id = ?
	`, entryID)

	e, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading ledger entry %d: %w", entryID, err)
	}
	return e, nil
}

// InsertLedgerEntry stores a ledger entry and returns its id. Used by
// fixtures and the surrounding application's sync job, never by the
// reconciliation pipeline itself.
func (s *Store) InsertLedgerEntry(e model.LedgerEntry) (int64, error) {
	var settledOn any
	if e.SettledOn != nil {
		settledOn = e.SettledOn.Format(dateFormat)
	}

	var newID int64
	err := s.db.QueryRow(`
		INSERT INTO ledger_entries (account, direction, amount, due_date, settled_on, status, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id;
	`, e.Account, e.Direction, e.Amount.StringFixed(2), e.DueDate.Format(dateFormat),
		settledOn, e.Status, e.Description).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("inserting ledger entry: %w", err)
	}
	return newID, nil
}

func scanLedgerEntry(row scanner) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	var amount, dueDate string
	var settledOn sql.NullString

	if err := row.Scan(&e.ID, &e.Account, &e.Direction, &amount, &dueDate, &settledOn, &e.Status, &e.Description); err != nil {
		return nil, err
	}

	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if e.DueDate, err = time.Parse(dateFormat, dueDate); err != nil {
		return nil, fmt.Errorf("parsing due_date %q: %w", dueDate, err)
	}
	if settledOn.Valid {
		d, err := time.Parse(dateFormat, settledOn.String)
		if err != nil {
			return nil, fmt.Errorf("parsing settled_on %q: %w", settledOn.String, err)
		}
		e.SettledOn = &d
	}
	return &e, nil
}
