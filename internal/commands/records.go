package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sodcapital/reconcile/internal/model"
)

func newRecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and correct reconciliation records",
	}

	cmd.AddCommand(newRecordsListCommand())
	cmd.AddCommand(newRecordsLinkCommand())
	cmd.AddCommand(newRecordsIgnoreCommand())
	cmd.AddCommand(newRecordsUndoCommand())

	return cmd
}

func newRecordsListCommand() *cobra.Command {
	var configPath string
	var account string
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reconciliation records for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, st, err := openService(configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := svc.ListRecords(account, model.RecordStatus(status))
			if err != nil {
				return err
			}

			for _, rec := range records {
				entry := "-"
				if rec.EntryID != nil {
					entry = strconv.FormatInt(*rec.EntryID, 10)
				}
				fmt.Printf("%d\t%s\tentry=%s\t%s\n", rec.ID, rec.Status, entry, rec.Note)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&account, "account", "", "internal account identifier (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (unresolved, matched, ignored, divergent)")

	return cmd
}

func newRecordsLinkCommand() *cobra.Command {
	var configPath string
	var actor string

	cmd := &cobra.Command{
		Use:   "link <record-id> <entry-id>",
		Short: "Manually link a record to a ledger entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, entryID, err := parseIDPair(args)
			if err != nil {
				return err
			}

			svc, st, err := openService(configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := svc.LinkManually(recordID, entryID, actor); err != nil {
				return err
			}
			fmt.Printf("Linked record %d to entry %d\n", recordID, entryID)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&actor, "actor", "operator", "operator identifier for the audit trail")

	return cmd
}

func newRecordsIgnoreCommand() *cobra.Command {
	var configPath string
	var actor string

	cmd := &cobra.Command{
		Use:   "ignore <record-id>",
		Short: "Declare a record out of scope for reconciliation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}

			svc, st, err := openService(configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := svc.Ignore(recordID, actor); err != nil {
				return err
			}
			fmt.Printf("Ignored record %d\n", recordID)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&actor, "actor", "operator", "operator identifier for the audit trail")

	return cmd
}

func newRecordsUndoCommand() *cobra.Command {
	var configPath string
	var actor string

	cmd := &cobra.Command{
		Use:   "undo <record-id>",
		Short: "Return a record to unresolved status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[0], err)
			}

			svc, st, err := openService(configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := svc.Undo(recordID, actor); err != nil {
				return err
			}
			fmt.Printf("Undid record %d\n", recordID)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&actor, "actor", "operator", "operator identifier for the audit trail")

	return cmd
}

func newVerifyCommand() *cobra.Command {
	var configPath string
	var account string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-check matched records against the current ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, st, err := openService(configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			divergences, err := svc.Verify(account)
			if err != nil {
				return err
			}

			if len(divergences) == 0 {
				fmt.Println("All matched records are consistent")
				return nil
			}
			for _, d := range divergences {
				fmt.Printf("record %d (entry %d): %s\n", d.RecordID, d.EntryID, d.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "reconcile.yaml", "path to config file")
	cmd.Flags().StringVar(&account, "account", "", "internal account identifier (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func parseIDPair(args []string) (int64, int64, error) {
	recordID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid record id %q: %w", args[0], err)
	}
	entryID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid entry id %q: %w", args[1], err)
	}
	return recordID, entryID, nil
}
