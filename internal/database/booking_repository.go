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

const bookingColumns = `
	id, room_id, title, location, image, price, host_email, guest_email, guest_name,
	stay_from, stay_to, transaction_id, booked_at, details, created_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ErrRoomUnavailable is returned when the room already carries a booking
var ErrRoomUnavailable = errors.New("room is already booked")

// BookingCheck inspects the locked room before the booking is written
type BookingCheck func(room *models.Room) error

// Create records a paid booking and marks its room booked in one transaction.
// The room row is locked and is the source of title, location, image, price and
// host email. A transaction id seen before returns the stored booking with replayed set.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking, check BookingCheck) (stored *models.Booking, replayed bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Lock the room so concurrent checkouts serialize on it
	var room models.Room
	err = tx.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, booking.RoomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock room: %w", err)
	}

	// 2. Replay: return what was stored the first time
	existing, err := r.byTransaction(ctx, tx, booking.TransactionID)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return existing, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// 3. The room must be free and acceptable to the caller
	if room.Booked {
		return nil, false, ErrRoomUnavailable
	}
	if check != nil {
		if err := check(&room); err != nil {
			return nil, false, err
		}
	}

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.Title = room.Title
	booking.Location = room.Location
	booking.Image = room.Image
	booking.Price = room.Price
	booking.HostEmail = room.RoomHost.Email

	// 4. Insert; a concurrent writer of the same transaction id wins the conflict
	insert := `
		INSERT INTO bookings (
			id, room_id, title, location, image, price, host_email, guest_email, guest_name,
			stay_from, stay_to, transaction_id, booked_at, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id`

	var insertedID uuid.UUID
	err = tx.QueryRowxContext(ctx, insert,
		booking.ID, booking.RoomID, booking.Title, booking.Location, booking.Image,
		booking.Price, booking.HostEmail, booking.GuestEmail, booking.GuestName,
		booking.From, booking.To, booking.TransactionID, booking.Date, booking.Details,
		booking.CreatedAt,
	).Scan(&insertedID)
	if errors.Is(err, sql.ErrNoRows) {
		existing, err := r.byTransaction(ctx, tx, booking.TransactionID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	// 5. Flip availability together with the insert
	result, err := tx.ExecContext(ctx,
		`UPDATE rooms SET booked = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), booking.RoomID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark room booked: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return booking, false, nil
}

func (r *BookingRepository) byTransaction(ctx context.Context, tx *sqlx.Tx, transactionID string) (*models.Booking, error) {
	var booking models.Booking
	err := tx.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE transaction_id = $1`, transactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking by transaction: %w", err)
	}
	return &booking, nil
}

// GetByID returns one booking
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListByGuest returns bookings made by a guest, newest first
func (r *BookingRepository) ListByGuest(ctx context.Context, guestEmail string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+` FROM bookings WHERE guest_email = $1 ORDER BY booked_at DESC`, guestEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list guest bookings: %w", err)
	}
	return bookings, nil
}

// ListByHost returns bookings of a host's rooms, newest first
func (r *BookingRepository) ListByHost(ctx context.Context, hostEmail string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+` FROM bookings WHERE host_email = $1 ORDER BY booked_at DESC`, hostEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list host bookings: %w", err)
	}
	return bookings, nil
}

// Delete removes a booking and frees its room in one transaction
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var booking models.Booking
	err = tx.GetContext(ctx, &booking,
		`DELETE FROM bookings WHERE id = $1 RETURNING `+bookingColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET booked = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), booking.RoomID); err != nil {
		return nil, fmt.Errorf("failed to release room: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &booking, nil
}
