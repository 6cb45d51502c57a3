package statement

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOFXParser_Parse(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "statement.ofx"))
	require.NoError(t, err)
	defer f.Close()

	stmt, err := (&OFXParser{}).Parse(f)
	require.NoError(t, err)

	assert.Equal(t, "BANCO SOD", stmt.Bank)
	assert.Equal(t, "88888-1", stmt.Account)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stmt.PeriodStart)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), stmt.PeriodEnd)
	assert.Equal(t, "10842.57", stmt.ClosingBalance.StringFixed(2))
	require.Len(t, stmt.Transactions, 3)

	ted := stmt.Transactions[0]
	assert.Equal(t, "2024031001", ted.ExternalID)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), ted.PostedOn)
	assert.Equal(t, "1500.00", ted.Amount.StringFixed(2))
	assert.Equal(t, "TED RECEBIDA CLIENTE A", ted.Memo)
	assert.Equal(t, "88888-1", ted.Account)
	assert.True(t, ted.IsCredit())

	payment := stmt.Transactions[1]
	assert.Equal(t, "-250.00", payment.Amount.StringFixed(2))
	assert.Equal(t, "000123", payment.Reference)
	assert.False(t, payment.IsCredit())

	// Third transaction has no NAME; the memo falls back to MEMO.
	deposit := stmt.Transactions[2]
	assert.Equal(t, "DEPOSITO NAO IDENTIFICADO", deposit.Memo)
	assert.Equal(t, "999.99", deposit.Amount.StringFixed(2))
}

func TestOFXParser_EmptyStatement(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "empty.ofx"))
	require.NoError(t, err)
	defer f.Close()

	stmt, err := (&OFXParser{}).Parse(f)
	require.ErrorIs(t, err, ErrEmptyStatement)

	// The header is still usable for reporting.
	require.NotNil(t, stmt)
	assert.Equal(t, "88888-1", stmt.Account)
	assert.Empty(t, stmt.Transactions)
}

func TestOFXParser_Malformed(t *testing.T) {
	_, err := (&OFXParser{}).Parse(strings.NewReader("this is not an OFX file"))
	assert.ErrorIs(t, err, ErrMalformed)
}
