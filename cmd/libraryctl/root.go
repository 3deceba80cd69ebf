package main

import (
	"context"

	"library/internal/config"
	"library/internal/db"
	"library/internal/services"
	"library/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// app holds the services a command needs. It is built lazily so --help
// works without a database.
type app struct {
	database *sqlx.DB
	accounts *services.AccountService
	catalog  *services.CatalogService
	reports  *services.ReportService
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "libraryctl",
		Short:        "Operator tasks for the library lending service",
		SilenceUsage: true,
	}
	root.AddCommand(newCreateAdminCmd(), newSeedCmd(), newExportCmd())
	return root
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	opts := db.DefaultPoolOptions()
	opts.MaxOpenConns = 2
	database, err := db.Connect(cfg.DatabaseURL, opts)
	if err != nil {
		return nil, err
	}
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, err
	}
	accounts := store.NewAccountStore(database)
	titles := store.NewTitleStore(database)
	copies := store.NewCopyStore(database)
	loans := store.NewLoanStore(database)
	purchases := store.NewPurchaseStore(database)
	reviews := store.NewReviewStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)

	return &app{
		database: database,
		accounts: services.NewAccountService(txRunner, accounts, copies, loans, purchases, reviews, audit, cfg.BcryptCost),
		catalog:  services.NewCatalogService(txRunner, titles, store.NewCategoryStore(database), copies, loans, reviews, audit),
		reports:  services.NewReportService(accounts, loans, purchases),
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}
