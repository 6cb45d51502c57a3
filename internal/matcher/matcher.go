// Package matcher decides whether a statement transaction corresponds to
// an internally recorded ledger entry. Matching is a pure decision:
// recording the outcome is the caller's responsibility.
package matcher

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/model"
)

// Config holds the matching thresholds.
type Config struct {
	Tolerance  decimal.Decimal // max absolute amount difference
	WindowDays int             // approximate-match window, ± calendar days
}

// DefaultConfig returns the standard thresholds: one cent of amount
// tolerance and a ±3 calendar day window.
func DefaultConfig() Config {
	return Config{
		Tolerance:  decimal.New(1, -2),
		WindowDays: 3,
	}
}

// Pool is the mutable candidate set for one import run. Entries are
// removed the moment they are consumed, so two statement lines can never
// claim the same ledger entry.
type Pool struct {
	entries map[int64]model.LedgerEntry
}

// NewPool creates a Pool from a slice of candidate entries.
func NewPool(entries []model.LedgerEntry) *Pool {
	byID := make(map[int64]model.LedgerEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return &Pool{entries: byID}
}

// Remove takes an entry out of the pool.
func (p *Pool) Remove(entryID int64) {
	delete(p.entries, entryID)
}

// Len returns the number of entries still available.
func (p *Pool) Len() int {
	return len(p.entries)
}

// sorted returns the remaining entries in ascending id order, the stable
// evaluation order that makes tie-breaking deterministic.
func (p *Pool) sorted() []model.LedgerEntry {
	entries := make([]model.LedgerEntry, 0, len(p.entries))
	for _, e := range p.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Result is the outcome of a match attempt. Entry is nil when no
// candidate qualified.
type Result struct {
	Entry    *model.LedgerEntry
	Exact    bool
	Distance int // calendar days between posting and effective date
}

// Matched reports whether a candidate was selected.
func (r Result) Matched() bool { return r.Entry != nil }

// Match applies the two-tier rule, first hit wins:
//
//  1. Exact: direction corresponds to the transaction's sign, amount
//     within tolerance, and the settlement date or the due date equals
//     the posting date.
//  2. Approximate: same direction and amount rule, effective date within
//     the window; smallest date distance wins, ties broken by smallest
//     entry id.
//
// The two tiers keep same-day settlement matches from being stolen by a
// nearby-dated entry while still recovering bank postings that land a few
// days after the internal settlement date.
func Match(txn model.StatementTransaction, pool *Pool, cfg Config) Result {
	want := model.DirectionOutbound
	if txn.IsCredit() {
		want = model.DirectionInbound
	}
	absAmount := txn.Amount.Abs()

	var qualified []model.LedgerEntry
	for _, c := range pool.sorted() {
		if c.Direction != want {
			continue
		}
		if c.Amount.Sub(absAmount).Abs().GreaterThan(cfg.Tolerance) {
			continue
		}
		qualified = append(qualified, c)
	}

	// Tier 1: exact date on either the settlement or the due date.
	for _, c := range qualified {
		if (c.SettledOn != nil && sameDate(*c.SettledOn, txn.PostedOn)) || sameDate(c.DueDate, txn.PostedOn) {
			e := c
			return Result{Entry: &e, Exact: true}
		}
	}

	// Tier 2: nearest effective date within the window. Ascending id
	// order means the first candidate at a given distance wins ties.
	best := Result{Distance: cfg.WindowDays + 1}
	for _, c := range qualified {
		d := daysBetween(txn.PostedOn, c.EffectiveDate())
		if d > cfg.WindowDays {
			continue
		}
		if d < best.Distance {
			e := c
			best = Result{Entry: &e, Distance: d}
		}
	}
	if best.Matched() {
		return best
	}
	return Result{}
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// daysBetween returns the absolute distance in calendar days. Both sides
// are normalized date-only values, so the difference is whole days.
func daysBetween(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
