package recon

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sodcapital/reconcile/internal/auditlog"
	"github.com/sodcapital/reconcile/internal/ledger"
	"github.com/sodcapital/reconcile/internal/matcher"
	"github.com/sodcapital/reconcile/internal/model"
	"github.com/sodcapital/reconcile/internal/store"
)

// verifyFixture imports one matched record against a ledger snapshot,
// then returns a second service over the same store that sees the
// drifted snapshot. This mirrors the real deployment, where the ledger
// is maintained by the surrounding application and can change between
// an import and a later verify run.
func verifyFixture(t *testing.T, before, after []model.LedgerEntry) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "reconcile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	auditDir := filepath.Join(dir, "logs")
	importSvc := NewService(st, ledger.NewService(before), matcher.DefaultConfig(), auditDir)

	summary, err := importSvc.ImportStatement(account, marchStatement(txn("t-1", "100.00", date(2024, 3, 10))))
	require.NoError(t, err)
	require.Equal(t, 1, summary.AutoMatched)

	return NewService(st, ledger.NewService(after), matcher.DefaultConfig(), auditDir), auditDir
}

func settledEntry(id int64, dir model.Direction, amount string) model.LedgerEntry {
	settled := date(2024, 3, 10)
	return model.LedgerEntry{
		ID:        id,
		Account:   account,
		Direction: dir,
		Amount:    dec(amount),
		DueDate:   settled,
		SettledOn: &settled,
		Status:    model.SettlementSettled,
	}
}

func TestVerify_Consistent(t *testing.T) {
	entries := []model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")}
	svc, _ := verifyFixture(t, entries, entries)

	divergences, err := svc.Verify(account)
	require.NoError(t, err)
	assert.Empty(t, divergences)

	matched, err := svc.ListRecords(account, model.StatusMatched)
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestVerify_AmountDrift(t *testing.T) {
	svc, auditDir := verifyFixture(t,
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")},
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "175.00")},
	)

	divergences, err := svc.Verify(account)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Equal(t, int64(1), divergences[0].EntryID)
	assert.Contains(t, divergences[0].Reason, "amount mismatch")

	// The record keeps its entry link while flagged.
	records, err := svc.ListRecords(account, model.StatusDivergent)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].EntryID)
	assert.Equal(t, int64(1), *records[0].EntryID)

	audits, err := auditlog.Read(auditDir)
	require.NoError(t, err)
	require.NotEmpty(t, audits)
	last := audits[len(audits)-1]
	assert.Equal(t, auditlog.ActionDivergence, last.Action)
	assert.Equal(t, "verifier", last.Actor)
}

func TestVerify_EntryDeleted(t *testing.T) {
	svc, _ := verifyFixture(t,
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")},
		nil,
	)

	divergences, err := svc.Verify(account)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Contains(t, divergences[0].Reason, "no longer exists")
}

func TestVerify_DirectionDrift(t *testing.T) {
	svc, _ := verifyFixture(t,
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")},
		[]model.LedgerEntry{settledEntry(1, model.DirectionOutbound, "100.00")},
	)

	divergences, err := svc.Verify(account)
	require.NoError(t, err)
	require.Len(t, divergences, 1)
	assert.Contains(t, divergences[0].Reason, "direction mismatch")
}

func TestVerify_DivergentRecordStillConsumesEntry(t *testing.T) {
	svc, _ := verifyFixture(t,
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")},
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "175.00")},
	)

	_, err := svc.Verify(account)
	require.NoError(t, err)

	// A fresh import cannot claim the disputed entry.
	summary, err := svc.ImportStatement(account, marchStatement(txn("t-2", "175.00", date(2024, 3, 10))))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.AutoMatched)
	assert.Equal(t, 1, summary.Unresolved)
}

func TestVerify_UndoClearsDivergence(t *testing.T) {
	svc, _ := verifyFixture(t,
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "100.00")},
		[]model.LedgerEntry{settledEntry(1, model.DirectionInbound, "175.00")},
	)

	divergences, err := svc.Verify(account)
	require.NoError(t, err)
	require.Len(t, divergences, 1)

	require.NoError(t, svc.Undo(divergences[0].RecordID, "alice"))

	records, err := svc.ListRecords(account, model.StatusUnresolved)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].EntryID)
}
