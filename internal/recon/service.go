// Package recon implements the reconciliation ledger: the import
// orchestrator and the operator API over reconciliation records.
package recon

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sodcapital/reconcile/internal/auditlog"
	"github.com/sodcapital/reconcile/internal/ledger"
	"github.com/sodcapital/reconcile/internal/matcher"
	"github.com/sodcapital/reconcile/internal/model"
	"github.com/sodcapital/reconcile/internal/store"
)

// ErrInvalidState reports a transition that is not legal from the
// record's current status.
var ErrInvalidState = errors.New("transition not legal from current status")

// Service drives statement imports and operator actions on
// reconciliation records.
type Service struct {
	store    *store.Store
	ledger   ledger.Source
	cfg      matcher.Config
	auditDir string
}

// NewService creates a reconciliation Service.
func NewService(st *store.Store, src ledger.Source, cfg matcher.Config, auditDir string) *Service {
	return &Service{store: st, ledger: src, cfg: cfg, auditDir: auditDir}
}

// Failure records a transaction that could not be persisted during a
// batch import. Distinct from duplicates: a re-run will retry these.
type Failure struct {
	ExternalID string
	Reason     string
}

// Summary reports the outcome of one statement import.
type Summary struct {
	BatchID     string
	Imported    int
	AutoMatched int
	Unresolved  int
	Duplicates  int
	Failures    []Failure
}

// ImportStatement runs the import pipeline for a parsed statement:
// deduplicate against the transaction store, persist new transactions
// with unresolved records, then auto-match the new records in ascending
// posting-date order against the settled-entry pool. Re-importing the
// same statement is a no-op beyond the first successful run.
//
// A single transaction's persistence failure is recorded in the summary
// and the loop continues; the whole operation fails only when the store
// is unreachable or when the matching phase cannot load its candidates.
func (s *Service) ImportStatement(account string, stmt *model.Statement) (*Summary, error) {
	summary := &Summary{BatchID: uuid.NewString()}
	if stmt == nil || len(stmt.Transactions) == 0 {
		return summary, nil
	}

	type pending struct {
		recordID int64
		txn      model.StatementTransaction
	}
	var created []pending

	for _, txn := range stmt.Transactions {
		txn.Account = account
		txn.BatchID = summary.BatchID

		exists, err := s.store.TransactionExists(account, txn.ExternalID)
		if err != nil {
			// First store touch per transaction; a failure here means
			// the store is unreachable, not a bad row.
			return nil, fmt.Errorf("checking for duplicate %s: %w", txn.ExternalID, err)
		}
		if exists {
			summary.Duplicates++
			continue
		}

		var recordID int64
		txnCopy := txn
		err = s.store.ExecTx(func(tx *store.Store) error {
			txnID, err := tx.InsertTransaction(txnCopy)
			if err != nil {
				return err
			}
			recordID, err = tx.CreateRecord(txnID)
			return err
		})
		if errors.Is(err, store.ErrDuplicateTransaction) {
			// A concurrent import won the race after our check.
			summary.Duplicates++
			continue
		}
		if err != nil {
			summary.Failures = append(summary.Failures, Failure{ExternalID: txn.ExternalID, Reason: err.Error()})
			continue
		}
		created = append(created, pending{recordID: recordID, txn: txnCopy})
	}
	summary.Imported = len(created)

	if len(created) == 0 {
		return summary, nil
	}

	// Later matches must see entries consumed by earlier ones, so the
	// new records are matched sequentially in ascending posting-date
	// order; file order breaks ties.
	sort.SliceStable(created, func(i, j int) bool {
		return created[i].txn.PostedOn.Before(created[j].txn.PostedOn)
	})

	pool, err := s.candidatePool(account, stmt)
	if err != nil {
		return summary, fmt.Errorf("loading match candidates: %w", err)
	}

	var audits []auditlog.Entry
	for _, p := range created {
		res := matcher.Match(p.txn, pool, s.cfg)
		if !res.Matched() {
			summary.Unresolved++
			continue
		}

		entryID := res.Entry.ID
		err := s.store.UpdateRecord(p.recordID, model.StatusMatched, &entryID, matchNote(res))
		if errors.Is(err, store.ErrEntryAlreadyReconciled) {
			// Lost a race with a manual link; the entry is no longer ours.
			pool.Remove(entryID)
			summary.Unresolved++
			continue
		}
		if err != nil {
			summary.Unresolved++
			summary.Failures = append(summary.Failures, Failure{ExternalID: p.txn.ExternalID, Reason: err.Error()})
			continue
		}

		pool.Remove(entryID)
		summary.AutoMatched++
		audits = append(audits, auditlog.Entry{
			Timestamp: time.Now().UTC(),
			Actor:     "matcher",
			Action:    auditlog.ActionAutoMatch,
			RecordID:  p.recordID,
			EntryID:   entryID,
			Details:   matchNote(res),
		})
	}

	if len(audits) > 0 {
		if err := auditlog.Append(s.auditDir, audits); err != nil {
			return summary, fmt.Errorf("writing audit trail: %w", err)
		}
	}
	return summary, nil
}

// candidatePool loads the settled entries eligible for this import,
// minus the ones already consumed by earlier matched or divergent
// records.
func (s *Service) candidatePool(account string, stmt *model.Statement) (*matcher.Pool, error) {
	window := time.Duration(s.cfg.WindowDays) * 24 * time.Hour
	from := stmt.PeriodStart.Add(-window)
	to := stmt.PeriodEnd.Add(window)

	entries, err := s.ledger.SettledEntries(account, from, to)
	if err != nil {
		return nil, err
	}
	pool := matcher.NewPool(entries)

	consumed, err := s.store.ConsumedEntryIDs(account)
	if err != nil {
		return nil, err
	}
	for _, entryID := range consumed {
		pool.Remove(entryID)
	}
	return pool, nil
}

func matchNote(res matcher.Result) string {
	if res.Exact {
		return "auto-matched (exact)"
	}
	return fmt.Sprintf("auto-matched within %d day(s)", res.Distance)
}

// ListRecords returns the reconciliation records for an account. An
// empty status lists all.
func (s *Service) ListRecords(account string, status model.RecordStatus) ([]*model.ReconciliationRecord, error) {
	return s.store.ListRecords(account, status)
}

// LinkManually links a record to a ledger entry chosen by an operator.
// Returns store.ErrEntryAlreadyReconciled when another record already
// consumes the entry, ledger.ErrNotFound or store.ErrNotFound when a
// side is missing, and ErrInvalidState when the record cannot be linked
// from its current status.
func (s *Service) LinkManually(recordID, entryID int64, actor string) error {
	entry, err := s.ledger.Entry(entryID)
	if err != nil {
		return fmt.Errorf("loading ledger entry %d: %w", entryID, err)
	}

	err = s.store.ExecTx(func(tx *store.Store) error {
		rec, err := tx.GetRecord(recordID)
		if err != nil {
			return err
		}
		if !rec.Status.CanTransitionTo(model.StatusMatched) {
			return fmt.Errorf("%w: cannot link %s record %d", ErrInvalidState, rec.Status, recordID)
		}

		txn, err := tx.GetTransaction(rec.TransactionID)
		if err != nil {
			return err
		}
		if txn.Account != entry.Account {
			return fmt.Errorf("%w: entry %d belongs to account %s, record %d to %s",
				ErrInvalidState, entryID, entry.Account, recordID, txn.Account)
		}

		return tx.UpdateRecord(recordID, model.StatusMatched, &entry.ID, fmt.Sprintf("manually linked by %s", actor))
	})
	if err != nil {
		return err
	}

	return s.audit(auditlog.ActionManualLink, actor, recordID, entryID, "")
}

// Ignore declares a record out of scope for reconciliation. Legal only
// from unresolved status.
func (s *Service) Ignore(recordID int64, actor string) error {
	err := s.store.ExecTx(func(tx *store.Store) error {
		rec, err := tx.GetRecord(recordID)
		if err != nil {
			return err
		}
		if !rec.Status.CanTransitionTo(model.StatusIgnored) {
			return fmt.Errorf("%w: cannot ignore %s record %d", ErrInvalidState, rec.Status, recordID)
		}
		return tx.UpdateRecord(recordID, model.StatusIgnored, nil, fmt.Sprintf("ignored by %s", actor))
	})
	if err != nil {
		return err
	}

	return s.audit(auditlog.ActionIgnore, actor, recordID, 0, "")
}

// Undo returns a record to unresolved status, releasing any linked entry
// back to the candidate pool. The statement transaction itself is
// untouched.
func (s *Service) Undo(recordID int64, actor string) error {
	var released int64
	err := s.store.ExecTx(func(tx *store.Store) error {
		rec, err := tx.GetRecord(recordID)
		if err != nil {
			return err
		}
		if !rec.Status.CanTransitionTo(model.StatusUnresolved) {
			return fmt.Errorf("%w: cannot undo %s record %d", ErrInvalidState, rec.Status, recordID)
		}
		if rec.EntryID != nil {
			released = *rec.EntryID
		}
		return tx.UpdateRecord(recordID, model.StatusUnresolved, nil, fmt.Sprintf("undone by %s", actor))
	})
	if err != nil {
		return err
	}

	return s.audit(auditlog.ActionUndo, actor, recordID, released, "")
}

func (s *Service) audit(action auditlog.Action, actor string, recordID, entryID int64, details string) error {
	err := auditlog.Append(s.auditDir, []auditlog.Entry{{
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Action:    action,
		RecordID:  recordID,
		EntryID:   entryID,
		Details:   details,
	}})
	if err != nil {
		return fmt.Errorf("writing audit trail: %w", err)
	}
	return nil
}
