package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event
type PaymentEventType string

const (
	PaymentEventIntentCreated        PaymentEventType = "intent_created"
	PaymentEventIntentFailed         PaymentEventType = "intent_failed"
	PaymentEventBookingRecorded      PaymentEventType = "booking_recorded"
	PaymentEventBookingReplayed      PaymentEventType = "booking_replayed"
	PaymentEventBookingCancelled     PaymentEventType = "booking_cancelled"
	PaymentEventAvailabilityRepaired PaymentEventType = "availability_repaired"
)

// PaymentEventSource identifies where the event originated
type PaymentEventSource string

const (
	PaymentSourceBackend PaymentEventSource = "backend"
	PaymentSourceStripe  PaymentEventSource = "stripe"
	PaymentSourceSystem  PaymentEventSource = "system"
)

// PaymentAudit is an append-only log entry for a payment event
type PaymentAudit struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	EventType     PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource   PaymentEventSource `json:"event_source" db:"event_source"`
	TransactionID *string            `json:"transaction_id,omitempty" db:"transaction_id"`
	RoomID        *uuid.UUID         `json:"room_id,omitempty" db:"room_id"`
	UserEmail     *string            `json:"user_email,omitempty" db:"user_email"`
	Amount        *float64           `json:"amount,omitempty" db:"amount"`
	Currency      *string            `json:"currency,omitempty" db:"currency"`
	ErrorMessage  *string            `json:"error_message,omitempty" db:"error_message"`
	IPAddress     *string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent     *string            `json:"user_agent,omitempty" db:"user_agent"`
	Metadata      JSONB              `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates a new payment audit entry with required fields
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetTransaction sets the processor transaction id
func (pa *PaymentAudit) SetTransaction(id string) *PaymentAudit {
	if id != "" {
		pa.TransactionID = &id
	}
	return pa
}

// SetRoom sets the room the payment is for
func (pa *PaymentAudit) SetRoom(id uuid.UUID) *PaymentAudit {
	pa.RoomID = &id
	return pa
}

// SetUser sets the paying user
func (pa *PaymentAudit) SetUser(email string) *PaymentAudit {
	if email != "" {
		pa.UserEmail = &email
	}
	return pa
}

// SetAmount sets the charged amount and currency
func (pa *PaymentAudit) SetAmount(amount float64, currency string) *PaymentAudit {
	pa.Amount = &amount
	if currency != "" {
		pa.Currency = &currency
	}
	return pa
}

// SetError sets error information
func (pa *PaymentAudit) SetError(err error) *PaymentAudit {
	if err != nil {
		msg := err.Error()
		pa.ErrorMessage = &msg
	}
	return pa
}

// SetMetadata sets request metadata
func (pa *PaymentAudit) SetMetadata(ip, userAgent string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	return pa
}

// With adds a free-form metadata field
func (pa *PaymentAudit) With(key string, value interface{}) *PaymentAudit {
	if pa.Metadata == nil {
		pa.Metadata = JSONB{}
	}
	pa.Metadata[key] = value
	return pa
}
