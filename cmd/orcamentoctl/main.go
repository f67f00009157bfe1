package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"orcamento/internal/cli"
	"orcamento/internal/config"
	applog "orcamento/internal/log"
)

var (
	backendFlag string
	jsonOutput  bool

	cfg    *config.Config
	logger *applog.Logger

	rootCmd = &cobra.Command{
		Use:   "orcamentoctl",
		Short: "Administer orcamento budgets",
		Long: `orcamentoctl inspects stored budgets, applies database migrations and
manages the exported snapshot history.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "data backend (memory, sqlite, redis, supabase); defaults to DATA_BACKEND")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(projectionCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(historyCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()
	cfg = config.Load()
	if backendFlag != "" {
		cfg.DataBackend = backendFlag
	}
	logger = cli.SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return nil
}
