package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"orcamento/internal/cli"
	"orcamento/internal/core"
	"orcamento/internal/sheets"
	"orcamento/internal/worker"
)

func exportCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append the stored snapshot of a user to the history sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			history, err := cli.OpenSnapshotHistory(ctx, logger, cfg)
			if err != nil {
				return err
			}
			result := cli.OpenBackend(ctx, logger, cfg)
			defer cli.CloseBackend(logger, result)

			ref, err := worker.NewExportWorker(history, result.Records).ExportUser(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", userID, ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func historyCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the exported snapshots of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := cli.OpenSnapshotHistory(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			rows, err := history.ListSnapshots(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("list snapshots: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return renderHistory(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func renderHistory(w io.Writer, rows []sheets.SnapshotRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no snapshots exported")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Salvo em\tMês\tRenda\tDespesas\tInvestido\tSaldo\tVariação\tMetas")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%02d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.SavedAt.Format(time.DateTime),
			r.Month+1,
			core.FormatBRL(r.Snapshot.TotalIncome),
			core.FormatBRL(r.Snapshot.TotalExpenses),
			core.FormatBRL(r.Snapshot.TotalInvested),
			core.FormatBRL(r.Snapshot.RemainingBalance),
			core.FormatBRL(r.Snapshot.ExpenseDelta),
			r.Goals)
	}
	return tw.Flush()
}
