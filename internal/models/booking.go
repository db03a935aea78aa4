package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking is a paid reservation of a room. TransactionID is unique.
type Booking struct {
	ID            uuid.UUID `json:"_id" db:"id"`
	RoomID        uuid.UUID `json:"roomId" db:"room_id"`
	Title         string    `json:"title" db:"title"`
	Location      string    `json:"location" db:"location"`
	Image         string    `json:"image" db:"image"`
	Price         float64   `json:"price" db:"price"`
	HostEmail     string    `json:"hostEmail" db:"host_email"`
	GuestEmail    string    `json:"guestEmail" db:"guest_email"`
	GuestName     string    `json:"guestName" db:"guest_name"`
	From          time.Time `json:"from" db:"stay_from"`
	To            time.Time `json:"to" db:"stay_to"`
	TransactionID string    `json:"transactionId" db:"transaction_id"`
	Date          time.Time `json:"date" db:"booked_at"`
	Details       JSONB     `json:"details,omitempty" db:"details"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CreateBookingRequest is the body of POST /booking.
// Fields outside the typed set are kept in Details, except "_id".
type CreateBookingRequest struct {
	RoomID        string    `json:"roomId" binding:"required"`
	Price         float64   `json:"price" binding:"required,gt=0"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Image         string    `json:"image"`
	HostEmail     string    `json:"hostEmail" binding:"required,email"`
	GuestEmail    string    `json:"guestEmail" binding:"required,email"`
	GuestName     string    `json:"guestName"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	TransactionID string    `json:"transactionId" binding:"required"`
	Date          time.Time `json:"date"`

	Details JSONB `json:"-"`
}

var bookingRequestFields = map[string]bool{
	"_id": true, "roomId": true, "price": true, "title": true, "location": true,
	"image": true, "hostEmail": true, "guestEmail": true, "guestName": true,
	"from": true, "to": true, "transactionId": true, "date": true,
}

// UnmarshalJSON decodes the typed fields and collects the rest into Details
func (r *CreateBookingRequest) UnmarshalJSON(data []byte) error {
	type plain CreateBookingRequest
	var typed plain
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	details := JSONB{}
	for k, v := range all {
		if !bookingRequestFields[k] {
			details[k] = v
		}
	}
	if len(details) > 0 {
		typed.Details = details
	}

	*r = CreateBookingRequest(typed)
	return nil
}

// ToBooking converts the request into a booking row
func (r CreateBookingRequest) ToBooking() (*Booking, error) {
	roomID, err := uuid.Parse(r.RoomID)
	if err != nil {
		return nil, fmt.Errorf("invalid room id: %w", err)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, fmt.Errorf("stay end is before stay start")
	}

	date := r.Date
	if date.IsZero() {
		date = time.Now()
	}

	return &Booking{
		RoomID:        roomID,
		Title:         r.Title,
		Location:      r.Location,
		Image:         r.Image,
		Price:         r.Price,
		HostEmail:     r.HostEmail,
		GuestEmail:    r.GuestEmail,
		GuestName:     r.GuestName,
		From:          r.From,
		To:            r.To,
		TransactionID: r.TransactionID,
		Date:          date,
		Details:       r.Details,
	}, nil
}

// CreatePaymentIntentRequest is the body of POST /create-payment-intent
type CreatePaymentIntentRequest struct {
	Price float64 `json:"price"`
}

// CreatePaymentIntentResponse carries the secret the client confirms against
type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
