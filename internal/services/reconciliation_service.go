package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AvailabilityRepairer flips rooms that have bookings but are still marked free
type AvailabilityRepairer interface {
	MarkBookedWithBookings(ctx context.Context) ([]uuid.UUID, error)
}

// ReconciliationService closes the gap left when a client stored a booking
// but never managed to mark the room booked.
type ReconciliationService struct {
	rooms  AvailabilityRepairer
	audit  *AuditService
	logger *logrus.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(rooms AvailabilityRepairer, audit *AuditService, logger *logrus.Logger) *ReconciliationService {
	return &ReconciliationService{rooms: rooms, audit: audit, logger: logger}
}

// Run repairs availability once and returns how many rooms changed
func (s *ReconciliationService) Run(ctx context.Context) (int, error) {
	start := time.Now()

	repaired, err := s.rooms.MarkBookedWithBookings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile availability: %w", err)
	}

	for _, roomID := range repaired {
		s.audit.LogAvailabilityRepaired(ctx, roomID)
	}

	if len(repaired) > 0 {
		s.logger.WithFields(logrus.Fields{
			"repaired": len(repaired),
			"duration": time.Since(start).String(),
		}).Warn("Rooms with bookings were marked available, repaired")
	}
	return len(repaired), nil
}
