package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/courier-im/courier/internal/config"
	"github.com/courier-im/courier/internal/dispatcher"
	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/hub"
	"github.com/courier-im/courier/internal/registry"
	"github.com/courier-im/courier/internal/repository"
)

// setupService wires the full core against an in-memory SQLite store.
func setupService(t *testing.T) (MessagingService, *registry.MemoryRegistry) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.UserModel{}, &domain.MessageModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	reg := registry.NewMemoryRegistry()
	disp := dispatcher.NewNotificationDispatcher(reg)
	svc := NewMessagingService(
		repository.NewGormUserRepository(db),
		repository.NewGormMessageRepository(db),
		reg,
		disp,
	)
	return svc, reg
}

func testClient(id string) *hub.Client {
	return hub.NewClient(id, nil, config.WebSocketConfig{SendBufferSize: 8})
}

// drain reads every buffered frame off the client's send channel.
func drain(c *hub.Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case f := <-c.Send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func Test_SendMessage_Pushes_To_Registered_Recipient(t *testing.T) {
	req := require.New(t)
	svc, _ := setupService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Alice", Handle: "555-0001"})
	req.NoError(err)
	bob, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Bob", Handle: "555-0002"})
	req.NoError(err)

	// Given Bob's connection is registered
	bobConn := testClient("bob-conn")
	req.NoError(svc.HandleRegister(ctx, bobConn, bob.ID))
	drain(bobConn) // discard the registration ack

	// When Alice sends "hi"
	msg, err := svc.SendMessage(ctx, &domain.SendMessageRequest{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Body:        "hi",
	})
	req.NoError(err)
	req.NotZero(msg.ID)

	// Then Bob's connection receives the persisted message
	frames := drain(bobConn)
	req.Len(frames, 1)

	var pushed domain.Message
	req.NoError(json.Unmarshal(frames[0], &pushed))
	req.Equal(msg.ID, pushed.ID)
	req.Equal("hi", pushed.Body)
	req.True(msg.SentAt.Equal(pushed.SentAt))
}

func Test_SendMessage_Offline_Recipient_Still_Persists(t *testing.T) {
	req := require.New(t)
	svc, _ := setupService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Alice", Handle: "555-0001"})
	req.NoError(err)
	bob, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Bob", Handle: "555-0002"})
	req.NoError(err)

	// Nobody online: send succeeds anyway
	msg, err := svc.SendMessage(ctx, &domain.SendMessageRequest{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Body:        "hi",
	})
	req.NoError(err)

	conv, err := svc.GetConversation(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Len(conv, 1)
	req.Equal(msg.ID, conv[0].ID)
}

func Test_SendMessage_Unknown_Recipient_Fails(t *testing.T) {
	req := require.New(t)
	svc, _ := setupService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Alice", Handle: "555-0001"})
	req.NoError(err)

	_, err = svc.SendMessage(ctx, &domain.SendMessageRequest{
		SenderID:    alice.ID,
		RecipientID: 99,
		Body:        "hi",
	})
	req.ErrorIs(err, repository.ErrUserNotFound)
}

func Test_HandleRegister_Unknown_User_Fails(t *testing.T) {
	req := require.New(t)
	svc, reg := setupService(t)
	ctx := context.Background()

	conn := testClient("conn-1")
	err := svc.HandleRegister(ctx, conn, 42)

	req.ErrorIs(err, repository.ErrUserNotFound)
	req.Zero(reg.Count())

	// The client got an error frame, not an ack
	frames := drain(conn)
	req.Len(frames, 1)
	var errFrame domain.ErrorFrame
	req.NoError(json.Unmarshal(frames[0], &errFrame))
	req.Equal(domain.FrameTypeError, errFrame.Type)
	req.Equal(domain.ErrCodeUnknownUser, errFrame.Code)
}

func Test_HandleDisconnect_Clears_All_Registrations(t *testing.T) {
	req := require.New(t)
	svc, reg := setupService(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Alice", Handle: "555-0001"})
	req.NoError(err)
	bob, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Name: "Bob", Handle: "555-0002"})
	req.NoError(err)

	// Given one connection re-registered under two user ids
	conn := testClient("conn-1")
	req.NoError(svc.HandleRegister(ctx, conn, alice.ID))
	req.NoError(svc.HandleRegister(ctx, conn, bob.ID))
	req.Equal(2, reg.Count())

	// When the connection closes
	req.NoError(svc.HandleDisconnect(ctx, conn))

	// Then every entry pointing at it is gone and the state is terminal
	req.Zero(reg.Count())
	req.Equal(domain.ConnClosed, conn.Session.GetState())
}
