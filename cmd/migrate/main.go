package main

import (
	"context"
	"fmt"
	"log"

	"library/internal/config"
	"library/internal/db"
	"library/internal/migrate"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL, db.DefaultPoolOptions())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	applied, err := migrate.Apply(context.Background(), database, "migrations")
	for _, filename := range applied {
		fmt.Printf("applied %s\n", filename)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if len(applied) == 0 {
		fmt.Println("schema is up to date")
	}
}
