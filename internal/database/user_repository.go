package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/models"
)

const userColumns = `id, email, name, image, role, status, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var name, image sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&image,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Name = name.String
	user.Image = image.String
	return user, nil
}

// GetByEmail returns the user registered with email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// Create inserts a new guest account
func (r *UserRepository) Create(email, name, image string) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Image:     image,
		Role:      models.RoleGuest,
		Status:    models.UserStatusVerified,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO users (id, email, name, image, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query,
		user.ID, user.Email, user.Name, user.Image,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Save creates the user when unknown. For a known user only a host request
// (status Requested) changes anything.
func (r *UserRepository) Save(req models.SaveUserRequest) (*models.SaveUserResponse, error) {
	existing, err := r.GetByEmail(req.Email)
	if errors.Is(err, ErrNotFound) {
		if _, err := r.Create(req.Email, req.Name, req.Image); err != nil {
			return nil, err
		}
		return &models.SaveUserResponse{UpsertedCount: 1}, nil
	}
	if err != nil {
		return nil, err
	}

	if req.Status != models.UserStatusRequested || existing.Status == models.UserStatusRequested {
		return &models.SaveUserResponse{}, nil
	}

	result, err := r.db.Exec(
		`UPDATE users SET status = $1, updated_at = $2 WHERE email = $3`,
		models.UserStatusRequested, time.Now(), req.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	modified, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return &models.SaveUserResponse{ModifiedCount: modified}, nil
}

// List returns all users, newest first
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateRole sets the role and status of a user
func (r *UserRepository) UpdateRole(email, role, status string) error {
	if status == "" {
		status = models.UserStatusVerified
	}

	result, err := r.db.Exec(
		`UPDATE users SET role = $1, status = $2, updated_at = $3 WHERE email = $4`,
		role, status, time.Now(), email,
	)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
