package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const roomColumns = `
	id, location, category, title, price, available_from, available_to,
	guests, bathrooms, bedrooms, description, image,
	host_name, host_image, host_email, booked, created_at, updated_at`

// RoomRepository handles room database operations
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a room listing
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	now := time.Now()
	room.ID = uuid.New()
	room.Booked = false
	room.CreatedAt = now
	room.UpdatedAt = now

	query := `
		INSERT INTO rooms (
			id, location, category, title, price, available_from, available_to,
			guests, bathrooms, bedrooms, description, image,
			host_name, host_image, host_email, booked, created_at, updated_at
		) VALUES (
			:id, :location, :category, :title, :price, :available_from, :available_to,
			:guests, :bathrooms, :bedrooms, :description, :image,
			:host_name, :host_image, :host_email, :booked, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetByID returns one room
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// List returns rooms, filtered by category when one is given
func (r *RoomRepository) List(ctx context.Context, category string) ([]models.Room, error) {
	rooms := []models.Room{}
	var err error
	if category == "" {
		err = r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+` FROM rooms ORDER BY created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &rooms,
			`SELECT `+roomColumns+` FROM rooms WHERE category = $1 ORDER BY created_at DESC`, category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListByHost returns the listings of one host
func (r *RoomRepository) ListByHost(ctx context.Context, hostEmail string) ([]models.Room, error) {
	rooms := []models.Room{}
	err := r.db.SelectContext(ctx, &rooms,
		`SELECT `+roomColumns+` FROM rooms WHERE host_email = $1 ORDER BY created_at DESC`, hostEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list host rooms: %w", err)
	}
	return rooms, nil
}

// Update replaces the editable fields of a room owned by hostEmail
func (r *RoomRepository) Update(ctx context.Context, id uuid.UUID, hostEmail string, req models.RoomRequest) (*models.Room, error) {
	query := `
		UPDATE rooms SET
			location = $1, category = $2, title = $3, price = $4,
			available_from = $5, available_to = $6,
			guests = $7, bathrooms = $8, bedrooms = $9,
			description = $10, image = $11, updated_at = $12
		WHERE id = $13 AND host_email = $14
		RETURNING ` + roomColumns

	var room models.Room
	err := r.db.GetContext(ctx, &room, query,
		req.Location, req.Category, req.Title, req.Price,
		req.From, req.To,
		req.Guests, req.Bathrooms, req.Bedrooms,
		req.Description, req.Image, time.Now(),
		id, hostEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return &room, nil
}

// Delete removes a room owned by hostEmail
func (r *RoomRepository) Delete(ctx context.Context, id uuid.UUID, hostEmail string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1 AND host_email = $2`, id, hostEmail)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return expectAffected(result)
}

// SetBooked sets the availability flag. Setting the current value again is not an error.
func (r *RoomRepository) SetBooked(ctx context.Context, id uuid.UUID, booked bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET booked = $1, updated_at = $2 WHERE id = $3`, booked, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return expectAffected(result)
}

// MarkBookedWithBookings flips rooms that have a booking but are still listed
// as available. Returns the repaired room ids.
func (r *RoomRepository) MarkBookedWithBookings(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		UPDATE rooms SET booked = TRUE, updated_at = NOW()
		WHERE booked = FALSE
		AND EXISTS (SELECT 1 FROM bookings b WHERE b.room_id = rooms.id)
		RETURNING id`

	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to reconcile room availability: %w", err)
	}
	return ids, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
