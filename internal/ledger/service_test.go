package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sodcapital/reconcile/internal/model"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func testEntries() []model.LedgerEntry {
	settled := date(2024, 3, 10)
	late := date(2024, 3, 25)
	return []model.LedgerEntry{
		{
			ID:          1,
			Account:     "88888-1",
			Direction:   model.DirectionInbound,
			Amount:      decimal.RequireFromString("1500.00"),
			DueDate:     date(2024, 3, 10),
			SettledOn:   &settled,
			Status:      model.SettlementSettled,
			Description: "invoice 1042",
		},
		{
			ID:        2,
			Account:   "88888-1",
			Direction: model.DirectionOutbound,
			Amount:    decimal.RequireFromString("250.00"),
			DueDate:   date(2024, 3, 11),
			Status:    model.SettlementPending,
		},
		{
			ID:        3,
			Account:   "77777-2",
			Direction: model.DirectionInbound,
			Amount:    decimal.RequireFromString("90.00"),
			DueDate:   date(2024, 3, 12),
			SettledOn: &settled,
			Status:    model.SettlementSettled,
		},
		{
			ID:        4,
			Account:   "88888-1",
			Direction: model.DirectionOutbound,
			Amount:    decimal.RequireFromString("35.90"),
			DueDate:   date(2024, 3, 20),
			SettledOn: &late,
			Status:    model.SettlementSettled,
		},
	}
}

func TestService_SettledEntries(t *testing.T) {
	svc := NewService(testEntries())

	entries, err := svc.SettledEntries("88888-1", date(2024, 3, 1), date(2024, 3, 31))
	require.NoError(t, err)

	// Pending entry 2 and other-account entry 3 are excluded.
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].ID)
	assert.Equal(t, int64(4), entries[1].ID)
}

func TestService_SettledEntriesWindow(t *testing.T) {
	svc := NewService(testEntries())

	// Entry 4 settled on the 25th; its due date on the 20th does not count.
	entries, err := svc.SettledEntries("88888-1", date(2024, 3, 15), date(2024, 3, 22))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = svc.SettledEntries("88888-1", date(2024, 3, 23), date(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ID)
}

func TestService_Entry(t *testing.T) {
	svc := NewService(testEntries())

	e, err := svc.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, "invoice 1042", e.Description)

	_, err = svc.Entry(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteEntries(f, testEntries()))
	require.NoError(t, f.Close())

	svc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, svc.All(), 4)

	e, err := svc.Entry(4)
	require.NoError(t, err)
	assert.Equal(t, "35.90", e.Amount.StringFixed(2))
	require.NotNil(t, e.SettledOn)
	assert.Equal(t, date(2024, 3, 25), *e.SettledOn)

	e, err = svc.Entry(2)
	require.NoError(t, err)
	assert.Nil(t, e.SettledOn)
	assert.Equal(t, model.SettlementPending, e.Status)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{name: "wrong field count", record: []string{"1", "88888-1"}},
		{name: "bad id", record: []string{"x", "88888-1", "inbound", "10.00", "2024-03-10", "", "settled", ""}},
		{name: "bad amount", record: []string{"1", "88888-1", "inbound", "ten", "2024-03-10", "", "settled", ""}},
		{name: "bad due date", record: []string{"1", "88888-1", "inbound", "10.00", "10/03/2024", "", "settled", ""}},
		{name: "bad settled date", record: []string{"1", "88888-1", "inbound", "10.00", "2024-03-10", "soon", "settled", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.record)
			assert.Error(t, err)
		})
	}
}
