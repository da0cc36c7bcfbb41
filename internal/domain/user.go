package domain

import (
	"time"
)

// User represents a registered user. The handle is the externally chosen
// identifier (e.g. a phone number) and is unique across all users; the
// numeric ID is assigned by the store.
type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Name   string `json:"name" binding:"required"`
	Handle string `json:"handle" binding:"required"`
}
