package service

import (
	"context"

	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/hub"
)

// MessagingService orchestrates the store, the connection registry and the
// notification dispatcher.
type MessagingService interface {
	CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)

	// SendMessage persists the message, then best-effort notifies the
	// recipient's live connection. The caller learns only whether
	// persistence succeeded.
	SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error)
	GetConversation(ctx context.Context, userA, userB uint) ([]domain.Message, error)
	GetConversationSummaries(ctx context.Context, userID uint) ([]domain.ConversationSummary, error)

	// HandleRegister associates a live connection with a user id.
	HandleRegister(ctx context.Context, client *hub.Client, userID uint) error
	// HandleDisconnect removes the connection from the registry.
	HandleDisconnect(ctx context.Context, client *hub.Client) error
}
