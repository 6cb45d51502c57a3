package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconcile.yaml")

	cfg := Default()
	cfg.Database.Path = "/tmp/test/reconcile.db"
	cfg.BankAccounts = []BankAccount{
		{Name: "operating", Format: "ofx", LastFour: "8881", Account: "88888-1"},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test/reconcile.db", loaded.Database.Path)
	assert.Equal(t, cfg.Matching, loaded.Matching)
	require.Len(t, loaded.BankAccounts, 1)
	assert.Equal(t, "88888-1", loaded.BankAccounts[0].Account)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMatcherConfig(t *testing.T) {
	cfg := Default()
	mc, err := cfg.MatcherConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.01", mc.Tolerance.String())
	assert.Equal(t, 3, mc.WindowDays)

	cfg.Matching.AmountTolerance = "five cents"
	_, err = cfg.MatcherConfig()
	assert.Error(t, err)
}

func TestAccountFor(t *testing.T) {
	cfg := Default()
	cfg.BankAccounts = []BankAccount{
		{Name: "operating", Account: "88888-1"},
		{Name: "savings", Account: "77777-2"},
	}

	acct := cfg.AccountFor("savings")
	require.NotNil(t, acct)
	assert.Equal(t, "77777-2", acct.Account)

	assert.Nil(t, cfg.AccountFor("payroll"))
}
