package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/staynest/booking-backend/pkg/checkout"
)

var _ checkout.HTTPClient = (*Client)(nil)

// Host is the listing owner embedded in a room
type Host struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Email string `json:"email"`
}

// Room mirrors the room resource served by the API
type Room struct {
	ID          string    `json:"_id,omitempty"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Guests      int       `json:"guests"`
	Bathrooms   int       `json:"bathrooms"`
	Bedrooms    int       `json:"bedrooms"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Host        Host      `json:"host"`
	Booked      bool      `json:"booked"`
}

// Booking mirrors a persisted booking
type Booking struct {
	ID            string    `json:"_id"`
	RoomID        string    `json:"roomId"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Image         string    `json:"image"`
	Price         float64   `json:"price"`
	HostEmail     string    `json:"hostEmail"`
	GuestEmail    string    `json:"guestEmail"`
	GuestName     string    `json:"guestName"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
}

// MenuItem is one dashboard navigation entry
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

// IssueToken exchanges an email for an access token and keeps it for later calls
func (c *Client) IssueToken(ctx context.Context, email string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.Post(ctx, "/jwt", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// RequestHost asks for the host role. Returns the number of modified user records.
func (c *Client) RequestHost(ctx context.Context, email string) (int64, error) {
	var resp struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}
	body := map[string]string{
		"email":  email,
		"role":   "guest",
		"status": "Requested",
	}
	if err := c.Put(ctx, "/user", body, &resp); err != nil {
		return 0, err
	}
	return resp.ModifiedCount, nil
}

// Role returns the role stored for an email
func (c *Client) Role(ctx context.Context, email string) (string, error) {
	var resp struct {
		Role string `json:"role"`
	}
	if err := c.Get(ctx, "/user/role/"+url.PathEscape(email), &resp); err != nil {
		return "", err
	}
	return resp.Role, nil
}

// Menu returns the dashboard entries for the signed-in user
func (c *Client) Menu(ctx context.Context) ([]MenuItem, error) {
	var resp struct {
		Items []MenuItem `json:"items"`
	}
	if err := c.Get(ctx, "/dashboard/menu", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Rooms lists rooms, optionally filtered by category
func (c *Client) Rooms(ctx context.Context, category string) ([]Room, error) {
	path := "/rooms"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var rooms []Room
	if err := c.Get(ctx, path, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Room fetches one room
func (c *Client) Room(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := c.Get(ctx, "/room/"+url.PathEscape(id), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// AddRoom creates a listing
func (c *Client) AddRoom(ctx context.Context, room Room) (*Room, error) {
	room.ID = ""
	var created Room
	if err := c.Post(ctx, "/room", room, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRoom sends the edited room without its storage identifier
func (c *Client) UpdateRoom(ctx context.Context, room Room) (*Room, error) {
	if room.ID == "" {
		return nil, fmt.Errorf("room id is required")
	}

	fields, err := withoutID(room)
	if err != nil {
		return nil, err
	}

	var updated Room
	if err := c.Put(ctx, "/room/update/"+url.PathEscape(room.ID), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreatePaymentIntent returns the client secret for a charge of price
func (c *Client) CreatePaymentIntent(ctx context.Context, price float64) (checkout.PaymentIntentSecret, error) {
	var resp struct {
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.Post(ctx, checkout.PathCreatePaymentIntent, map[string]float64{"price": price}, &resp); err != nil {
		return "", err
	}
	return checkout.PaymentIntentSecret(resp.ClientSecret), nil
}

// MyBookings lists bookings made by a guest
func (c *Client) MyBookings(ctx context.Context, email string) ([]Booking, error) {
	var bookings []Booking
	if err := c.Get(ctx, "/my-bookings/"+url.PathEscape(email), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// NewBookingRequest builds a checkout request for a room and a stay
func NewBookingRequest(room Room, guestEmail string, stay checkout.DateRange) (checkout.BookingRequest, error) {
	extra, err := toMap(room)
	if err != nil {
		return checkout.BookingRequest{}, err
	}
	// stay dates and the host are carried by typed fields
	delete(extra, "from")
	delete(extra, "to")
	delete(extra, "host")
	delete(extra, "booked")

	return checkout.BookingRequest{
		RoomID:     room.ID,
		Price:      room.Price,
		HostEmail:  room.Host.Email,
		GuestEmail: guestEmail,
		DateRange:  stay,
		Title:      room.Title,
		Location:   room.Location,
		Image:      room.Image,
		Extra:      extra,
	}, nil
}

func withoutID(room Room) (map[string]interface{}, error) {
	fields, err := toMap(room)
	if err != nil {
		return nil, err
	}
	delete(fields, "_id")
	return fields, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return out, nil
}
