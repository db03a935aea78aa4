package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/services"
)

// Runs the availability reconciliation once, outside the server's schedule.
func main() {
	timeout := flag.Duration("timeout", time.Minute, "maximum run time")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	audit := services.NewAuditService(database.NewPaymentAuditRepository(db.DB, logger), logger)
	reconciler := services.NewReconciliationService(database.NewRoomRepository(db.DB), audit, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repaired, err := reconciler.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Reconciliation failed")
		return
	}
	logger.WithField("repaired", repaired).Info("Reconciliation finished")
}
