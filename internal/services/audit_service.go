package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/utils"
)

// PaymentAuditor persists payment audit entries
type PaymentAuditor interface {
	Log(ctx context.Context, audit *models.PaymentAudit) error
}

// RequestMeta carries caller details attached to audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditService records payment and booking events.
// Audit failures are logged and never returned to the caller.
type AuditService struct {
	repo   PaymentAuditor
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo PaymentAuditor, logger *logrus.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record stores one entry, enriching it with parsed device info
func (s *AuditService) Record(ctx context.Context, audit *models.PaymentAudit, meta RequestMeta) {
	if s == nil || s.repo == nil || audit == nil {
		return
	}

	audit.SetMetadata(meta.IPAddress, meta.UserAgent)
	if meta.UserAgent != "" {
		audit.With("device_info", utils.ParseUserAgent(meta.UserAgent))
	}

	if err := s.repo.Log(ctx, audit); err != nil {
		s.logger.WithFields(logrus.Fields{
			"event_type": audit.EventType,
			"audit_id":   audit.ID,
		}).WithError(err).Warn("Failed to write payment audit")
	}
}

// LogIntentCreated records a successful payment intent
func (s *AuditService) LogIntentCreated(ctx context.Context, email, intentID string, price float64, currency string, meta RequestMeta) {
	s.Record(ctx, models.NewPaymentAudit(models.PaymentEventIntentCreated, models.PaymentSourceStripe).
		SetTransaction(intentID).
		SetUser(email).
		SetAmount(price, currency), meta)
}

// LogIntentFailed records a payment intent the processor refused
func (s *AuditService) LogIntentFailed(ctx context.Context, email string, price float64, currency string, cause error, meta RequestMeta) {
	s.Record(ctx, models.NewPaymentAudit(models.PaymentEventIntentFailed, models.PaymentSourceStripe).
		SetUser(email).
		SetAmount(price, currency).
		SetError(cause), meta)
}

// LogBookingRecorded records a stored booking, or a replay of one
func (s *AuditService) LogBookingRecorded(ctx context.Context, booking *models.Booking, replayed bool, meta RequestMeta) {
	event := models.PaymentEventBookingRecorded
	if replayed {
		event = models.PaymentEventBookingReplayed
	}
	s.Record(ctx, models.NewPaymentAudit(event, models.PaymentSourceBackend).
		SetTransaction(booking.TransactionID).
		SetRoom(booking.RoomID).
		SetUser(booking.GuestEmail).
		SetAmount(booking.Price, "").
		With("booking_id", booking.ID.String()), meta)
}

// LogBookingCancelled records a deleted booking
func (s *AuditService) LogBookingCancelled(ctx context.Context, booking *models.Booking, actor string, meta RequestMeta) {
	s.Record(ctx, models.NewPaymentAudit(models.PaymentEventBookingCancelled, models.PaymentSourceBackend).
		SetTransaction(booking.TransactionID).
		SetRoom(booking.RoomID).
		SetUser(actor).
		With("booking_id", booking.ID.String()), meta)
}

// LogAvailabilityRepaired records one room flipped by the reconciliation job
func (s *AuditService) LogAvailabilityRepaired(ctx context.Context, roomID uuid.UUID) {
	s.Record(ctx, models.NewPaymentAudit(models.PaymentEventAvailabilityRepaired, models.PaymentSourceSystem).
		SetRoom(roomID), RequestMeta{})
}
