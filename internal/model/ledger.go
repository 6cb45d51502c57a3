package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a ledger entry as money in or money out.
type Direction string

const (
	DirectionInbound  Direction = "inbound"  // receivable
	DirectionOutbound Direction = "outbound" // payable
)

// SettlementStatus is the settlement lifecycle state of a ledger entry.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// LedgerEntry is an internally recorded receivable or payable. The
// reconciliation subsystem only ever reads these.
type LedgerEntry struct {
	ID          int64
	Account     string
	Direction   Direction
	Amount      decimal.Decimal // net amount, non-negative
	DueDate     time.Time
	SettledOn   *time.Time
	Status      SettlementStatus
	Description string
}

// EffectiveDate returns the settlement date, falling back to the due date.
func (e LedgerEntry) EffectiveDate() time.Time {
	if e.SettledOn != nil {
		return *e.SettledOn
	}
	return e.DueDate
}
