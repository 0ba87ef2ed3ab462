package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/quickcart/internal/config"
	"github.com/Skotchmaster/quickcart/internal/repo"
	pkgdb "github.com/Skotchmaster/quickcart/pkg/db"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "quickcart",
		Short:         "QuickCart catalog and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, logging.New("info"))
	if err != nil {
		return err
	}
	return serve(ctx, cfg)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, logging.New("info"))
	if err != nil {
		return err
	}
	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(initCtx, pkgdb.Options{Driver: cfg.DB.Driver, DSN: cfg.DB.URL})
	if err != nil {
		return err
	}
	defer pkgdb.Close(db)

	if err := repo.Migrate(initCtx, db); err != nil {
		return err
	}
	l.Info("migrate_success")
	return nil
}
