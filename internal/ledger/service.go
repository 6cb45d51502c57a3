// Package ledger provides read-only access to internally recorded
// financial entries (receivables and payables). The reconciliation
// subsystem consumes entries through the Source interface and never
// mutates them.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sodcapital/reconcile/internal/model"
)

// ErrNotFound reports a lookup for an entry that does not exist.
var ErrNotFound = errors.New("ledger entry not found")

// Source provides match candidates from the internal ledger.
// Implementations must only return entries in settled status; unsettled
// entries are never match candidates.
type Source interface {
	// SettledEntries returns settled entries for an account whose
	// effective date falls within [from, to], in ascending id order.
	SettledEntries(account string, from, to time.Time) ([]model.LedgerEntry, error)

	// Entry returns a single entry by id, or ErrNotFound.
	Entry(entryID int64) (*model.LedgerEntry, error)
}

// Service provides in-memory lookup over a fixed set of ledger entries.
type Service struct {
	entries []model.LedgerEntry
	byID    map[int64]model.LedgerEntry
}

// NewService creates a Service from a slice of entries.
func NewService(entries []model.LedgerEntry) *Service {
	byID := make(map[int64]model.LedgerEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return &Service{entries: entries, byID: byID}
}

// Load reads a ledger entries CSV file and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}
	return NewService(entries), nil
}

// All returns all entries.
func (s *Service) All() []model.LedgerEntry {
	return s.entries
}

// Entry returns an entry by id, or ErrNotFound.
func (s *Service) Entry(entryID int64) (*model.LedgerEntry, error) {
	e, ok := s.byID[entryID]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

// SettledEntries returns settled entries for an account whose effective
// date falls within [from, to], in ascending id order. Entries are stored
// in id order, so filtering preserves it.
func (s *Service) SettledEntries(account string, from, to time.Time) ([]model.LedgerEntry, error) {
	var result []model.LedgerEntry
	for _, e := range s.entries {
		if e.Account != account || e.Status != model.SettlementSettled {
			continue
		}
		d := e.EffectiveDate()
		if d.Before(from) || d.After(to) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
