package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSimpleProtocol(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://u@h/db", "postgres://u@h/db?prefer_simple_protocol=true"},
		{"postgres://u@h/db?sslmode=disable", "postgres://u@h/db?sslmode=disable&prefer_simple_protocol=true"},
		{"postgres://u@h/db?prefer_simple_protocol=false", "postgres://u@h/db?prefer_simple_protocol=false"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withSimpleProtocol(tt.url))
	}
}

func TestNewConnection_RequiresURL(t *testing.T) {
	_, err := NewConnection(config.DatabaseConfig{})
	assert.EqualError(t, err, "database URL is required")
}

func TestPostgresDB_ServesUserRepository(t *testing.T) {
	db, mock := setupSqlxMock(t)
	repo := NewUserRepository(&PostgresDB{DB: db})

	mock.ExpectQuery(`FROM users WHERE email`).
		WithArgs("guest@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "image", "role", "status", "created_at", "updated_at"}))

	_, err := repo.GetByEmail("guest@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
