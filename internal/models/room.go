package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomHost is the owner of a listing
type RoomHost struct {
	Name  string `json:"name" db:"host_name"`
	Image string `json:"image,omitempty" db:"host_image"`
	Email string `json:"email" db:"host_email"`
}

// Room is a bookable listing. Booked is the availability flag flipped after payment.
type Room struct {
	ID          uuid.UUID `json:"_id" db:"id"`
	Location    string    `json:"location" db:"location"`
	Category    string    `json:"category" db:"category"`
	Title       string    `json:"title" db:"title"`
	Price       float64   `json:"price" db:"price"`
	From        time.Time `json:"from" db:"available_from"`
	To          time.Time `json:"to" db:"available_to"`
	Guests      int       `json:"guests" db:"guests"`
	Bathrooms   int       `json:"bathrooms" db:"bathrooms"`
	Bedrooms    int       `json:"bedrooms" db:"bedrooms"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	RoomHost    `json:"host"`
	Booked      bool      `json:"booked" db:"booked"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// RoomRequest is the body of POST /room and PUT /room/update/:id
type RoomRequest struct {
	Location    string    `json:"location" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Price       float64   `json:"price" binding:"required,gt=0"`
	From        time.Time `json:"from" binding:"required"`
	To          time.Time `json:"to" binding:"required"`
	Guests      int       `json:"guests" binding:"min=0"`
	Bathrooms   int       `json:"bathrooms" binding:"min=0"`
	Bedrooms    int       `json:"bedrooms" binding:"min=0"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Host        RoomHost  `json:"host"`
}

// ToRoom builds a room from the request. Host comes from the caller, not the body.
func (r RoomRequest) ToRoom(host RoomHost) *Room {
	return &Room{
		Location:    r.Location,
		Category:    r.Category,
		Title:       r.Title,
		Price:       r.Price,
		From:        r.From,
		To:          r.To,
		Guests:      r.Guests,
		Bathrooms:   r.Bathrooms,
		Bedrooms:    r.Bedrooms,
		Description: r.Description,
		Image:       r.Image,
		RoomHost:    host,
	}
}

// RoomStatusRequest is the body of PATCH /room/status/:id
type RoomStatusRequest struct {
	Status *bool `json:"status" binding:"required"`
}
