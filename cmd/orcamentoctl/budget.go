package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"orcamento/internal/cli"
	"orcamento/internal/core"
	"orcamento/internal/services"
	"orcamento/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DataBackend != "sqlite" {
				return errors.New("migrate requires the sqlite backend")
			}
			version, err := storage.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", version, cfg.SQLiteDBPath)
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the budget summary of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := loadSummary(cmd, userID, 0)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			return renderSummary(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func projectionCmd() *cobra.Command {
	var (
		userID string
		months int
	)
	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Print the accumulated balance projection of a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := loadSummary(cmd, userID, months)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), summary.Projection)
			}
			return renderProjection(cmd.OutOrStdout(), summary.Projection)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().IntVar(&months, "months", core.DefaultProjectionPeriod, fmt.Sprintf("projection horizon, one of %v", core.ProjectionPeriods))
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func loadSummary(cmd *cobra.Command, userID string, months int) (services.Summary, error) {
	ctx := cmd.Context()
	result := cli.OpenBackend(ctx, logger, cfg)
	defer cli.CloseBackend(logger, result)

	u, err := result.Records.Load(ctx, userID)
	if err != nil {
		return services.Summary{}, fmt.Errorf("load budget of %s: %w", userID, err)
	}
	u.Normalize()
	return services.BuildSummary(u, months, cfg.CDIAnnualRate, time.Now())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSummary(w io.Writer, s services.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	snap := s.Snapshot
	fmt.Fprintf(tw, "Renda total\t%s\n", core.FormatBRL(snap.TotalIncome))
	fmt.Fprintf(tw, "Despesas\t%s\n", core.FormatBRL(snap.TotalExpenses))
	fmt.Fprintf(tw, "Investido\t%s\n", core.FormatBRL(snap.TotalInvested))
	fmt.Fprintf(tw, "Saldo restante\t%s\n", core.FormatBRL(snap.RemainingBalance))
	fmt.Fprintf(tw, "Mês anterior\t%s\n", core.FormatBRL(snap.PreviousMonthExpenses))
	fmt.Fprintf(tw, "Rendimento mensal\t%s\n", core.FormatBRL(s.TotalMonthlyYield))

	if len(s.Goals) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Meta\tProgresso\tPrazo\tDias")
		for _, g := range s.Goals {
			fmt.Fprintf(tw, "%s\t%.1f%%\t%s\t%d\n", g.Goal.Name, g.Percent, g.Goal.Deadline, g.DaysLeft)
		}
	}
	return tw.Flush()
}

func renderProjection(w io.Writer, points []core.ProjectionPoint) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Mês\tSaldo acumulado")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\n", p.Label, core.FormatBRL(p.Balance))
	}
	return tw.Flush()
}
