package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/id"
	"github.com/sodcapital/reconcile/internal/model"
)

// CSVParser parses generic bank CSV exports. CSV exports carry no bank or
// account metadata and no closing balance; the statement period is derived
// from the row dates, and rows without a reference number get a
// deterministic fingerprint as their external identifier.
type CSVParser struct{}

const (
	csvDateFormat = "2006-01-02"
	csvNumFields  = 5
	csvColDate    = 0
	csvColDesc    = 1
	csvColAmount  = 2
	csvColType    = 3
	csvColRef     = 4
)

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a bank CSV export and returns a normalized Statement.
func (p *CSVParser) Parse(r io.Reader) (*model.Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformed)
	}

	stmt := &model.Statement{}

	// Ordinal per (date, amount, memo) keeps fingerprints stable across
	// re-imports while separating identical rows within one file.
	seen := make(map[string]int)

	for i, rec := range records[1:] {
		txn, err := parseCSVRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		if txn.ExternalID == "" {
			key := txn.PostedOn.Format(csvDateFormat) + "|" + txn.Amount.StringFixed(2) + "|" + txn.Memo
			txn.ExternalID = id.Fingerprint(txn.PostedOn, txn.Amount, txn.Memo, seen[key])
			seen[key]++
		}

		if stmt.PeriodStart.IsZero() || txn.PostedOn.Before(stmt.PeriodStart) {
			stmt.PeriodStart = txn.PostedOn
		}
		if txn.PostedOn.After(stmt.PeriodEnd) {
			stmt.PeriodEnd = txn.PostedOn
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}

	if len(stmt.Transactions) == 0 {
		return stmt, ErrEmptyStatement
	}
	return stmt, nil
}

func parseCSVRow(rec []string) (model.StatementTransaction, error) {
	posted, err := time.Parse(csvDateFormat, rec[csvColDate])
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("%w: bad date %q", ErrMalformed, rec[csvColDate])
	}

	amount, err := decimal.NewFromString(rec[csvColAmount])
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("%w: bad amount %q", ErrMalformed, rec[csvColAmount])
	}

	return model.StatementTransaction{
		ExternalID: rec[csvColRef],
		PostedOn:   dateOnly(posted),
		Amount:     amount,
		Memo:       rec[csvColDesc],
		Reference:  rec[csvColRef],
	}, nil
}
