package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{
	"id", "room_id", "title", "location", "image", "price", "host_email", "guest_email", "guest_name",
	"stay_from", "stay_to", "transaction_id", "booked_at", "details", "created_at",
}

func setupSqlxMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func newTestBooking(roomID uuid.UUID, txID string) *models.Booking {
	return &models.Booking{
		RoomID:        roomID,
		Title:         "Lake house",
		Price:         150,
		HostEmail:     "host@example.com",
		GuestEmail:    "guest@example.com",
		TransactionID: txID,
		Date:          time.Now(),
		Details:       models.JSONB{"category": "Lake"},
	}
}

func expectRoomLock(mock sqlmock.Sqlmock, roomID uuid.UUID, booked bool) {
	mock.ExpectQuery(`FROM rooms WHERE id = \$1 FOR UPDATE`).
		WithArgs(roomID).
		WillReturnRows(roomRow(sqlmock.NewRows(roomRowColumns), roomID, "Cabin", booked))
}

func expectNoPriorBooking(mock sqlmock.Sqlmock, txID string) {
	mock.ExpectQuery(`FROM bookings WHERE transaction_id`).
		WithArgs(txID).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))
}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Inserts booking from the locked room and marks it booked", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		roomID := uuid.New()

		mock.ExpectBegin()
		expectRoomLock(mock, roomID, false)
		expectNoPriorBooking(mock, "pi_123")
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
		mock.ExpectExec(`UPDATE rooms SET booked = TRUE`).
			WithArgs(sqlmock.AnyArg(), roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking := newTestBooking(roomID, "pi_123")
		booking.HostEmail = "someone-else@example.com"
		booking.Price = 0.01

		var checked *models.Room
		stored, replayed, err := repo.Create(ctx, booking, func(room *models.Room) error {
			checked = room
			return nil
		})
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, "pi_123", stored.TransactionID)
		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.Equal(t, "host@example.com", stored.HostEmail)
		assert.Equal(t, 120.0, stored.Price)
		assert.Equal(t, "Hill cabin", stored.Title)
		require.NotNil(t, checked)
		assert.Equal(t, roomID, checked.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Replayed transaction returns stored booking", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		roomID := uuid.New()
		existingID := uuid.New()
		now := time.Now()

		mock.ExpectBegin()
		expectRoomLock(mock, roomID, true)
		mock.ExpectQuery(`FROM bookings WHERE transaction_id`).
			WithArgs("pi_123").
			WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
				existingID.String(), roomID.String(), "Lake house", "", "", 150.0, "host@example.com",
				"guest@example.com", "", now, now, "pi_123", now, []byte(`{"category":"Lake"}`), now,
			))
		mock.ExpectCommit()

		stored, replayed, err := repo.Create(ctx, newTestBooking(roomID, "pi_123"), nil)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, existingID, stored.ID)
		assert.Equal(t, "Lake", stored.Details["category"])

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booked room is refused", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		roomID := uuid.New()

		mock.ExpectBegin()
		expectRoomLock(mock, roomID, true)
		expectNoPriorBooking(mock, "pi_456")
		mock.ExpectRollback()

		_, _, err := repo.Create(ctx, newTestBooking(roomID, "pi_456"), nil)
		assert.ErrorIs(t, err, ErrRoomUnavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected check writes nothing", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		roomID := uuid.New()
		mismatch := fmt.Errorf("amount mismatch")

		mock.ExpectBegin()
		expectRoomLock(mock, roomID, false)
		expectNoPriorBooking(mock, "pi_456")
		mock.ExpectRollback()

		_, _, err := repo.Create(ctx, newTestBooking(roomID, "pi_456"), func(*models.Room) error { return mismatch })
		assert.ErrorIs(t, err, mismatch)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown room", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM rooms WHERE id = \$1 FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(roomRowColumns))
		mock.ExpectRollback()

		stored, _, err := repo.Create(ctx, newTestBooking(uuid.New(), "pi_456"), nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, stored)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls back", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		roomID := uuid.New()

		mock.ExpectBegin()
		expectRoomLock(mock, roomID, false)
		expectNoPriorBooking(mock, "pi_789")
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		_, _, err := repo.Create(ctx, newTestBooking(roomID, "pi_789"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create booking")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Frees the room", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)
		bookingID := uuid.New()
		roomID := uuid.New()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`DELETE FROM bookings`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
				bookingID.String(), roomID.String(), "Loft", "", "", 90.0, "host@example.com",
				"guest@example.com", "Guest", now, now, "pi_1", now, nil, now,
			))
		mock.ExpectExec(`UPDATE rooms SET booked = FALSE`).
			WithArgs(sqlmock.AnyArg(), roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking, err := repo.Delete(ctx, bookingID)
		require.NoError(t, err)
		assert.Equal(t, roomID, booking.RoomID)
		assert.Nil(t, booking.Details)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		db, mock := setupSqlxMock(t)
		repo := NewBookingRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`DELETE FROM bookings`).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns))
		mock.ExpectRollback()

		_, err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ListByGuest(t *testing.T) {
	db, mock := setupSqlxMock(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM bookings WHERE guest_email`).
		WithArgs("guest@example.com").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
			uuid.New().String(), uuid.New().String(), "Loft", "City", "", 90.0, "host@example.com",
			"guest@example.com", "Guest", now, now, "pi_1", now, nil, now,
		))

	bookings, err := repo.ListByGuest(context.Background(), "guest@example.com")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "pi_1", bookings[0].TransactionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
