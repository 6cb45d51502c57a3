package recon

import (
	"errors"
	"fmt"
	"time"

	"github.com/sodcapital/reconcile/internal/auditlog"
	"github.com/sodcapital/reconcile/internal/ledger"
	"github.com/sodcapital/reconcile/internal/model"
)

// Divergence describes a matched record whose ledger entry no longer
// agrees with its statement transaction.
type Divergence struct {
	RecordID int64
	EntryID  int64
	Reason   string
}

// Verify re-checks every matched record for an account against the
// current state of its ledger entry. Records whose entry has drifted in
// amount or direction, or disappeared, transition to divergent status.
// A divergent record still consumes its entry; it surfaces as needing
// attention without releasing the claim.
func (s *Service) Verify(account string) ([]Divergence, error) {
	records, err := s.store.ListRecords(account, model.StatusMatched)
	if err != nil {
		return nil, err
	}

	var divergences []Divergence
	var audits []auditlog.Entry

	for _, rec := range records {
		if rec.EntryID == nil {
			// Matched without an entry link would be a storage-level bug;
			// surface it rather than skip it.
			return nil, fmt.Errorf("matched record %d has no entry link", rec.ID)
		}

		txn, err := s.store.GetTransaction(rec.TransactionID)
		if err != nil {
			return nil, err
		}

		reason, err := s.divergenceReason(txn, *rec.EntryID)
		if err != nil {
			return nil, err
		}
		if reason == "" {
			continue
		}

		if err := s.store.UpdateRecord(rec.ID, model.StatusDivergent, rec.EntryID, reason); err != nil {
			return nil, err
		}

		divergences = append(divergences, Divergence{RecordID: rec.ID, EntryID: *rec.EntryID, Reason: reason})
		audits = append(audits, auditlog.Entry{
			Timestamp: time.Now().UTC(),
			Actor:     "verifier",
			Action:    auditlog.ActionDivergence,
			RecordID:  rec.ID,
			EntryID:   *rec.EntryID,
			Details:   reason,
		})
	}

	if len(audits) > 0 {
		if err := auditlog.Append(s.auditDir, audits); err != nil {
			return divergences, fmt.Errorf("writing audit trail: %w", err)
		}
	}
	return divergences, nil
}

// divergenceReason explains why a transaction and its linked entry no
// longer agree, or returns "" when they still do.
func (s *Service) divergenceReason(txn *model.StatementTransaction, entryID int64) (string, error) {
	entry, err := s.ledger.Entry(entryID)
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Sprintf("ledger entry %d no longer exists", entryID), nil
	}
	if err != nil {
		return "", err
	}

	want := model.DirectionOutbound
	if txn.IsCredit() {
		want = model.DirectionInbound
	}
	if entry.Direction != want {
		return fmt.Sprintf("direction mismatch: entry is %s, transaction expects %s", entry.Direction, want), nil
	}

	diff := entry.Amount.Sub(txn.Amount.Abs()).Abs()
	if diff.GreaterThan(s.cfg.Tolerance) {
		return fmt.Sprintf("amount mismatch: entry %s vs transaction %s", entry.Amount.StringFixed(2), txn.Amount.Abs().StringFixed(2)), nil
	}
	return "", nil
}
