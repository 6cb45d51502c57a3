package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/model"
)

const (
	numFields    = 8
	dateFormat   = "2006-01-02"
	colID        = 0
	colAccount   = 1
	colDirection = 2
	colAmount    = 3
	colDueDate   = 4
	colSettledOn = 5
	colStatus    = 6
	colDesc      = 7
)

// ReadEntries reads a ledger entries CSV.
func ReadEntries(r io.Reader) ([]model.LedgerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.LedgerEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes a ledger entries CSV (including header).
func WriteEntries(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"entry_id", "account", "direction", "amount", "due_date", "settled_on", "status", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts a LedgerEntry to a CSV row.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(e.ID, 10)
	row[colAccount] = e.Account
	row[colDirection] = string(e.Direction)
	row[colAmount] = e.Amount.StringFixed(2)
	row[colDueDate] = e.DueDate.Format(dateFormat)
	if e.SettledOn != nil {
		row[colSettledOn] = e.SettledOn.Format(dateFormat)
	}
	row[colStatus] = string(e.Status)
	row[colDesc] = e.Description
	return row
}

// UnmarshalEntry converts a CSV row to a LedgerEntry.
func UnmarshalEntry(record []string) (model.LedgerEntry, error) {
	if len(record) != numFields {
		return model.LedgerEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	entryID, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing entry_id %q: %w", record[colID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	dueDate, err := time.Parse(dateFormat, record[colDueDate])
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing due_date %q: %w", record[colDueDate], err)
	}

	var settledOn *time.Time
	if record[colSettledOn] != "" {
		d, err := time.Parse(dateFormat, record[colSettledOn])
		if err != nil {
			return model.LedgerEntry{}, fmt.Errorf("parsing settled_on %q: %w", record[colSettledOn], err)
		}
		settledOn = &d
	}

	return model.LedgerEntry{
		ID:          entryID,
		Account:     record[colAccount],
		Direction:   model.Direction(record[colDirection]),
		Amount:      amount,
		DueDate:     dueDate,
		SettledOn:   settledOn,
		Status:      model.SettlementStatus(record[colStatus]),
		Description: record[colDesc],
	}, nil
}
