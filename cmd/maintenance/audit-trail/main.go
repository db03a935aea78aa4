package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
)

// Prints every payment audit entry recorded for one processor transaction.
func main() {
	txID := flag.String("transaction", "", "payment intent id, e.g. pi_123")
	flag.Parse()

	if *txID == "" {
		fmt.Fprintln(os.Stderr, "usage: audit-trail -transaction pi_...")
		os.Exit(2)
	}

	logger := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := database.NewPaymentAuditRepository(db.DB, logger).ListByTransaction(ctx, *txID)
	if err != nil {
		logger.Fatalf("Failed to load audit trail: %v", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No audit entries for %s\n", *txID)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		logger.Fatalf("Failed to print audit trail: %v", err)
	}
}
