package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleGuest = "guest"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// User statuses
const (
	UserStatusVerified  = "Verified"
	UserStatusRequested = "Requested"
)

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleGuest, RoleHost, RoleAdmin:
		return true
	}
	return false
}

// User represents an account, identified by email
type User struct {
	ID        uuid.UUID `json:"_id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name,omitempty" db:"name"`
	Image     string    `json:"image,omitempty" db:"image"`
	Role      string    `json:"role" db:"role"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TokenRequest is the body of POST /jwt
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RefreshTokenRequest is the body of POST /jwt/refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned by POST /jwt and POST /jwt/refresh
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SaveUserRequest is the body of PUT /user
type SaveUserRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// SaveUserResponse mirrors the upsert result the dashboard reads
type SaveUserResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
}

// UpdateUserRequest is the body of PATCH /users/update/:email
type UpdateUserRequest struct {
	Role   string `json:"role" binding:"required"`
	Status string `json:"status"`
}

// RoleResponse is returned by GET /user/role/:email
type RoleResponse struct {
	Role string `json:"role"`
}
