package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "name", "image", "role", "status", "created_at", "updated_at"}

func TestGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("host@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				userID, "host@example.com", "Hana", nil, "host", "Verified", now, now,
			))

		user, err := repo.GetByEmail("host@example.com")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "Hana", user.Name)
		assert.Equal(t, "", user.Image)
		assert.Equal(t, models.RoleHost, user.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("User Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail("nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("guest@example.com").
			WillReturnError(fmt.Errorf("database error"))

		user, err := repo.GetByEmail("guest@example.com")
		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "failed to fetch user")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(&mockDatabase{db: db})
	now := time.Now()

	t.Run("New user is created as verified guest", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("new@example.com").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "new@example.com", "New", "", "guest", "Verified", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		resp, err := repo.Save(models.SaveUserRequest{Email: "new@example.com", Name: "New", Role: "admin"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.UpsertedCount)
		assert.Equal(t, int64(0), resp.ModifiedCount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Host request marks status", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("guest@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				uuid.New(), "guest@example.com", "Guest", "", "guest", "Verified", now, now,
			))
		mock.ExpectExec(`UPDATE users SET status`).
			WithArgs("Requested", sqlmock.AnyArg(), "guest@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := repo.Save(models.SaveUserRequest{Email: "guest@example.com", Role: "guest", Status: "Requested"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.ModifiedCount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Repeated host request changes nothing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("guest@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				uuid.New(), "guest@example.com", "Guest", "", "guest", "Requested", now, now,
			))

		resp, err := repo.Save(models.SaveUserRequest{Email: "guest@example.com", Status: "Requested"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.ModifiedCount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(&mockDatabase{db: db})
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.New(), "a@example.com", "A", "", "admin", "Verified", now, now).
			AddRow(uuid.New(), "b@example.com", "B", "", "guest", "Requested", now, now))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "Requested", users[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(&mockDatabase{db: db})

	t.Run("Success defaults status to verified", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET role`).
			WithArgs("host", "Verified", sqlmock.AnyArg(), "guest@example.com").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateRole("guest@example.com", "host", ""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown user", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET role`).
			WithArgs("host", "Verified", sqlmock.AnyArg(), "ghost@example.com").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateRole("ghost@example.com", "host", "Verified"), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// mockDatabase adapts a sqlmock connection to the DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
