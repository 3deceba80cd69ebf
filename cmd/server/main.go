package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"library/internal/config"
	"library/internal/db"
	"library/internal/handlers"
	"library/internal/lending"
	"library/internal/services"
	"library/internal/store"
	"library/internal/websocket"
)

func main() {
	cfg := config.Load()
	if cfg.IsProduction() && cfg.JWTSecret == config.DevJWTSecret {
		log.Fatal("JWT_SECRET must be set in production")
	}
	database, err := db.Connect(cfg.DatabaseURL, db.DefaultPoolOptions())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	accounts := store.NewAccountStore(database)
	titles := store.NewTitleStore(database)
	categories := store.NewCategoryStore(database)
	copies := store.NewCopyStore(database)
	loans := store.NewLoanStore(database)
	purchases := store.NewPurchaseStore(database)
	reviews := store.NewReviewStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	clock := lending.SystemClock{}

	lendingService := services.NewLendingService(txRunner, accounts, titles, copies, loans, purchases, audit, hub, clock, cfg.LoanPeriod)
	ledgerService := services.NewLedgerService(txRunner, accounts, audit, hub)
	catalogService := services.NewCatalogService(txRunner, titles, categories, copies, loans, reviews, audit)
	accountService := services.NewAccountService(txRunner, accounts, copies, loans, purchases, reviews, audit, cfg.BcryptCost)
	reviewService := services.NewReviewService(txRunner, titles, reviews, audit, clock)
	reportService := services.NewReportService(accounts, loans, purchases)

	handler := handlers.New(cfg, lendingService, ledgerService, catalogService, accountService, reviewService, reportService, audit, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("library API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
