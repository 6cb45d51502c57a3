package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement is a normalized bank statement export.
type Statement struct {
	Bank           string
	Account        string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ClosingBalance decimal.Decimal
	Transactions   []StatementTransaction
}

// StatementTransaction is one line item from a bank statement.
// Identity is (Account, ExternalID); rows are immutable once stored.
type StatementTransaction struct {
	ID         int64
	Account    string
	ExternalID string
	PostedOn   time.Time       // date-only, normalized to YYYY-MM-DD
	Amount     decimal.Decimal // positive = credit, negative = debit
	Memo       string
	Reference  string // optional check/reference number
	BatchID    string // import batch that first stored the row
}

// IsCredit reports whether the transaction is money into the account.
func (t StatementTransaction) IsCredit() bool {
	return t.Amount.IsPositive()
}
