package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sodcapital/reconcile/internal/buildinfo"
	"github.com/sodcapital/reconcile/internal/config"
	"github.com/sodcapital/reconcile/internal/recon"
	"github.com/sodcapital/reconcile/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reconcile",
		Short:   "Bank statement reconciliation",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newRecordsCommand())
	rootCmd.AddCommand(newVerifyCommand())

	return rootCmd
}

// openService wires a reconciliation Service from a config file. The
// store doubles as the ledger source, reading the ledger_entries table
// the surrounding application maintains.
func openService(configPath string) (*recon.Service, *store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	matcherCfg, err := cfg.MatcherConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	return recon.NewService(st, st, matcherCfg, cfg.Audit.Dir), st, nil
}
