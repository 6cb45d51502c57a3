package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sodcapital/reconcile/internal/statement"
)

func newImportCommand() *cobra.Command {
	var configPath string
	var account string
	var format string

	cmd := &cobra.Command{
		Use:   "import <statement-file>",
		Short: "Import a bank statement and auto-match its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(configPath, account, format, args[0])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&account, "account", "", "internal account identifier (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&format, "format", "ofx", "statement format (ofx or csv)")

	return cmd
}

func runImport(configPath, account, format, path string) error {
	parser := statement.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown statement format %q", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement file: %w", err)
	}
	defer f.Close()

	stmt, err := parser.Parse(f)
	if errors.Is(err, statement.ErrEmptyStatement) {
		fmt.Printf("Warning: %s contains no transactions\n", path)
	} else if err != nil {
		return err
	}

	svc, st, err := openService(configPath)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := svc.ImportStatement(account, stmt)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d transaction(s): %d auto-matched, %d unresolved, %d duplicate(s) skipped\n",
		summary.Imported, summary.AutoMatched, summary.Unresolved, summary.Duplicates)
	for _, failure := range summary.Failures {
		fmt.Printf("  failed to persist %s: %s\n", failure.ExternalID, failure.Reason)
	}
	return nil
}
