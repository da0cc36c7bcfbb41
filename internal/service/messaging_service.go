package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/courier-im/courier/internal/audit"
	"github.com/courier-im/courier/internal/dispatcher"
	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/hub"
	"github.com/courier-im/courier/internal/registry"
	"github.com/courier-im/courier/internal/repository"
	"github.com/courier-im/courier/pkg/log"
)

type messagingService struct {
	users      repository.UserRepository
	messages   repository.MessageRepository
	registry   registry.Registry
	dispatcher dispatcher.Dispatcher
	sf         singleflight.Group
}

func NewMessagingService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	reg registry.Registry,
	disp dispatcher.Dispatcher,
) MessagingService {
	return &messagingService{
		users:      users,
		messages:   messages,
		registry:   reg,
		dispatcher: disp,
	}
}

func (s *messagingService) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	user := &domain.User{
		Name:   req.Name,
		Handle: req.Handle,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateUser, user.ID, "user created")
	return user, nil
}

func (s *messagingService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *messagingService) SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.Message, error) {
	msg := &domain.Message{
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionSendMessage, msg.SenderID, msg.RecipientID, "message sent")

	// Persistence succeeded; delivery is fire-and-forget from here.
	s.dispatcher.Notify(ctx, msg)

	return msg, nil
}

func (s *messagingService) GetConversation(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	return s.messages.GetConversation(ctx, userA, userB)
}

func (s *messagingService) GetConversationSummaries(ctx context.Context, userID uint) ([]domain.ConversationSummary, error) {
	// Coalesce concurrent identical reads; the reduction scans every
	// message involving the user.
	key := fmt.Sprintf("summaries:%d", userID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.messages.GetConversationSummaries(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.ConversationSummary), nil
}

func (s *messagingService) HandleRegister(ctx context.Context, client *hub.Client, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			client.SendFrame(domain.NewErrorFrame(domain.ErrCodeUnknownUser, "unknown user id"))
			return err
		}
		client.SendFrame(domain.NewErrorFrame(domain.ErrCodeInternalError, "registration failed"))
		return err
	}

	if !client.Session.Register(userID) {
		return errors.New("connection already closed")
	}

	// Re-registration under a new id leaves the old entry in place; the
	// disconnect scan clears every id pointing at this connection.
	s.registry.Register(userID, client)
	audit.Log(ctx, audit.ActionWSRegister, userID, "connection registered")

	return client.SendFrame(&domain.RegisteredFrame{
		Type:   domain.FrameTypeRegistered,
		UserID: userID,
	})
}

func (s *messagingService) HandleDisconnect(ctx context.Context, client *hub.Client) error {
	userID := client.Session.GetUserID()
	client.Session.Close()
	s.registry.Unregister(client)

	if userID != 0 {
		audit.Log(ctx, audit.ActionWSDisconnect, userID, "connection closed")
	} else {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldConnID, client.ID).Msg("unregistered connection closed")
	}
	return nil
}
