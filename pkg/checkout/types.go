package checkout

import (
	"context"
	"encoding/json"
	"time"
)

// Backend paths used by a checkout attempt
const (
	PathCreatePaymentIntent = "/create-payment-intent"
	PathBooking             = "/booking"
	PathRoomStatus          = "/room/status/"
)

// DefaultBookingsView is where a successful checkout navigates
const DefaultBookingsView = "/dashboard/my-bookings"

// StatusSucceeded is the payment intent status that gates persistence
const StatusSucceeded = "succeeded"

// internalIDField is the storage identifier that must never be forwarded
const internalIDField = "_id"

// HTTPClient is the authenticated backend wrapper the orchestrator talks to.
// Responses are decoded into out when it is non-nil.
type HTTPClient interface {
	Post(ctx context.Context, path string, body, out interface{}) error
	Patch(ctx context.Context, path string, body, out interface{}) error
}

// PaymentProvider is the card processor capability
type PaymentProvider interface {
	// Ready reports whether the provider finished initializing
	Ready() bool
	Tokenize(ctx context.Context, card CardInput, billing BillingDetails) (*PaymentMethod, error)
	Confirm(ctx context.Context, secret PaymentIntentSecret, req ConfirmRequest) (*PaymentIntent, error)
}

// Identity is the signed-in user paying for the booking
type Identity struct {
	Email       string
	DisplayName string
}

// DateRange is the stay period
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// BookingRequest is built by the caller before the attempt starts and is never mutated
type BookingRequest struct {
	RoomID     string
	Price      float64
	HostEmail  string
	GuestEmail string
	DateRange  DateRange
	Title      string
	Location   string
	Image      string

	// Extra carries additional room fields copied by the caller.
	// The storage identifier key is dropped on the way out.
	Extra map[string]interface{}
}

// PaymentIntentSecret authorizes confirmation of one charge
type PaymentIntentSecret string

// CardInput is the card instrument collected from the user.
// Either Token or the raw card fields are set.
type CardInput struct {
	Token    string
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
}

// Empty reports whether no instrument was entered
func (c *CardInput) Empty() bool {
	return c == nil || (c.Token == "" && c.Number == "")
}

// BillingDetails is attached to the payment method when the card is tokenized
type BillingDetails struct {
	Email string
	Name  string
}

// PaymentMethod is a tokenized card
type PaymentMethod struct {
	ID       string
	Brand    string
	LastFour string
}

// ConfirmRequest carries everything needed to confirm a payment intent
type ConfirmRequest struct {
	PaymentMethod *PaymentMethod
	Card          CardInput
}

// PaymentIntent is the processor's view of the charge after confirmation
type PaymentIntent struct {
	ID     string
	Status string
	Amount int64
}

// OutcomeKind classifies the result of a checkout attempt
type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomePending   OutcomeKind = "pending"
)

// PaymentOutcome is derived from the processor's response
type PaymentOutcome struct {
	Kind          OutcomeKind
	TransactionID string
	Reason        string
}

// BookingRecord is the body persisted after a successful payment
type BookingRecord struct {
	RoomID        string    `json:"roomId"`
	Price         float64   `json:"price"`
	Title         string    `json:"title,omitempty"`
	Location      string    `json:"location,omitempty"`
	Image         string    `json:"image,omitempty"`
	HostEmail     string    `json:"hostEmail"`
	GuestEmail    string    `json:"guestEmail"`
	GuestName     string    `json:"guestName,omitempty"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`

	Extra map[string]interface{} `json:"-"`
}

// MarshalJSON merges Extra under the typed fields, never emitting "_id"
func (r BookingRecord) MarshalJSON() ([]byte, error) {
	type plain BookingRecord
	base, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return base, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(fields)+len(r.Extra))
	for k, v := range r.Extra {
		if k == internalIDField {
			continue
		}
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

type createIntentRequest struct {
	Price float64 `json:"price"`
}

type createIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type roomStatusRequest struct {
	Status bool `json:"status"`
}

// NotificationLevel is the severity of a user-visible message
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is a toast-style message for the user
type Notification struct {
	Level   NotificationLevel
	Message string
}

// Hooks are the presentation callbacks of the surface hosting the checkout.
// Nil hooks are skipped.
type Hooks struct {
	Refresh  func()
	Close    func()
	Notify   func(Notification)
	Navigate func(path string)
}
