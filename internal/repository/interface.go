package repository

import (
	"context"
	"errors"

	"github.com/courier-im/courier/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrHandleExists = errors.New("handle already exists")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	// List returns all users ordered by display name ascending.
	List(ctx context.Context) ([]domain.User, error)
}

// MessageRepository defines the interface for message persistence and the
// conversation queries.
type MessageRepository interface {
	// Create persists a message after validating that both endpoints
	// reference existing users. The stored id and sent timestamp are
	// written back into msg.
	Create(ctx context.Context, msg *domain.Message) error
	// GetConversation returns every message exchanged between the two
	// users, in either direction, oldest first, with sender and recipient
	// display names filled in.
	GetConversation(ctx context.Context, userA, userB uint) ([]domain.Message, error)
	// GetConversationSummaries returns the most recent message per
	// distinct counterparty of the given user, most recently contacted
	// first.
	GetConversationSummaries(ctx context.Context, userID uint) ([]domain.ConversationSummary, error)
}
