package model

import "time"

// RecordStatus is the lifecycle state of a reconciliation record.
type RecordStatus string

const (
	StatusUnresolved RecordStatus = "unresolved"
	StatusMatched    RecordStatus = "matched"
	StatusIgnored    RecordStatus = "ignored"
	StatusDivergent  RecordStatus = "divergent"
)

// ConsumesEntry reports whether records in this status hold an exclusive
// claim on their linked ledger entry.
func (s RecordStatus) ConsumesEntry() bool {
	return s == StatusMatched || s == StatusDivergent
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition. Records are only ever re-transitioned, never deleted.
func (s RecordStatus) CanTransitionTo(target RecordStatus) bool {
	switch s {
	case StatusUnresolved:
		return target == StatusMatched || target == StatusIgnored
	case StatusMatched:
		return target == StatusUnresolved || target == StatusDivergent
	case StatusIgnored, StatusDivergent:
		return target == StatusUnresolved
	}
	return false
}

// ReconciliationRecord links one statement transaction to at most one
// ledger entry, with the decision history preserved through the note and
// timestamps.
type ReconciliationRecord struct {
	ID            int64
	TransactionID int64
	EntryID       *int64 // set iff Status.ConsumesEntry()
	Status        RecordStatus
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
