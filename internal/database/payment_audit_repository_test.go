package database

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPaymentAuditRepository_Log(t *testing.T) {
	db, mock := setupSqlxMock(t)
	repo := NewPaymentAuditRepository(db, quietLogger())

	audit := models.NewPaymentAudit(models.PaymentEventIntentCreated, models.PaymentSourceStripe).
		SetTransaction("pi_123").
		SetUser("guest@example.com").
		SetAmount(120, "usd").
		With("attempt", 1)

	mock.ExpectExec(`INSERT INTO payment_audits`).
		WithArgs(audit.ID, models.PaymentEventIntentCreated, models.PaymentSourceStripe, "pi_123", nil, "guest@example.com",
			120.0, "usd", nil, nil, nil, `{"attempt":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Log(context.Background(), audit))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAuditRepository_LogErrors(t *testing.T) {
	db, mock := setupSqlxMock(t)
	repo := NewPaymentAuditRepository(db, quietLogger())

	assert.Error(t, repo.Log(context.Background(), nil))

	mock.ExpectExec(`INSERT INTO payment_audits`).WillReturnError(errors.New("disk full"))
	err := repo.Log(context.Background(), &models.PaymentAudit{EventType: models.PaymentEventIntentFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to log payment audit")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAuditRepository_ListByTransaction(t *testing.T) {
	db, mock := setupSqlxMock(t)
	repo := NewPaymentAuditRepository(db, quietLogger())
	now := time.Now()
	roomID := uuid.New()

	mock.ExpectQuery(`FROM payment_audits`).
		WithArgs("pi_123").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_type", "event_source", "transaction_id", "room_id", "user_email",
			"amount", "currency", "error_message", "ip_address", "user_agent", "metadata", "created_at",
		}).
			AddRow(uuid.New().String(), "intent_created", "stripe", "pi_123", nil, "guest@example.com",
				120.0, "usd", nil, nil, nil, nil, now).
			AddRow(uuid.New().String(), "booking_recorded", "backend", "pi_123", roomID.String(), "guest@example.com",
				120.0, nil, nil, "203.0.113.7", nil, []byte(`{"booking_id":"b1"}`), now))

	audits, err := repo.ListByTransaction(context.Background(), "pi_123")
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, models.PaymentEventBookingRecorded, audits[1].EventType)
	assert.Equal(t, roomID, *audits[1].RoomID)
	assert.Equal(t, "b1", audits[1].Metadata["booking_id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
