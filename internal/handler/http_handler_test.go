package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/courier-im/courier/internal/dispatcher"
	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/registry"
	"github.com/courier-im/courier/internal/repository"
	"github.com/courier-im/courier/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// setupRouter wires the full HTTP stack against an in-memory SQLite store.
func setupRouter(t *testing.T) *gin.Engine {
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
	svc := service.NewMessagingService(
		repository.NewGormUserRepository(db),
		repository.NewGormMessageRepository(db),
		reg,
		dispatcher.NewNotificationDispatcher(reg),
	)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(svc).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func createUser(t *testing.T, r *gin.Engine, name, handle string) domain.User {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"name": name, "handle": handle})
	if w.Code != http.StatusOK {
		t.Fatalf("create user returned %d: %s", w.Code, w.Body.String())
	}

	var user domain.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	return user
}

func Test_CreateUser_Duplicate_Handle_Returns_400(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	// First registration succeeds
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"name": "Alice", "handle": "555-0001"})
	req.Equal(http.StatusOK, w.Code)
	req.True(env.Success)

	// Same handle again fails
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"name": "Mallory", "handle": "555-0001"})
	req.Equal(http.StatusBadRequest, w.Code)
	req.False(env.Success)
	req.NotNil(env.Error)

	// And no second row was added
	w, env = doJSON(t, r, http.MethodGet, "/api/v1/users", nil)
	req.Equal(http.StatusOK, w.Code)
	var users []domain.User
	req.NoError(json.Unmarshal(env.Data, &users))
	req.Len(users, 1)
}

func Test_CreateUser_Missing_Fields_Returns_400(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"name": "Alice"})
	req.Equal(http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"handle": "555-0001"})
	req.Equal(http.StatusBadRequest, w.Code)
}

func Test_ListUsers_Sorted_By_Name(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	createUser(t, r, "Charlie", "555-0003")
	createUser(t, r, "Alice", "555-0001")
	createUser(t, r, "Bob", "555-0002")

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/users", nil)
	req.Equal(http.StatusOK, w.Code)

	var users []domain.User
	req.NoError(json.Unmarshal(env.Data, &users))
	req.Len(users, 3)
	req.Equal("Alice", users[0].Name)
	req.Equal("Bob", users[1].Name)
	req.Equal("Charlie", users[2].Name)
}

func Test_Send_And_Read_Conversation(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	alice := createUser(t, r, "Alice", "555-0001")
	bob := createUser(t, r, "Bob", "555-0002")

	// Alice sends "hi" to Bob
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/messages", gin.H{
		"sender_id":    alice.ID,
		"recipient_id": bob.ID,
		"body":         "hi",
	})
	req.Equal(http.StatusOK, w.Code)
	req.True(env.Success)

	var sent domain.Message
	req.NoError(json.Unmarshal(env.Data, &sent))
	req.NotZero(sent.ID)

	// The conversation contains exactly that message
	path := fmt.Sprintf("/api/v1/messages/%d/%d", alice.ID, bob.ID)
	w, env = doJSON(t, r, http.MethodGet, path, nil)
	req.Equal(http.StatusOK, w.Code)

	var conv []domain.Message
	req.NoError(json.Unmarshal(env.Data, &conv))
	req.Len(conv, 1)
	req.Equal("hi", conv[0].Body)
	req.Equal(alice.ID, conv[0].SenderID)
	req.Equal("Alice", conv[0].SenderName)

	// Bob's summaries show one row: counterparty Alice, text "hi"
	w, env = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/conversations/%d", bob.ID), nil)
	req.Equal(http.StatusOK, w.Code)

	var summaries []domain.ConversationSummary
	req.NoError(json.Unmarshal(env.Data, &summaries))
	req.Len(summaries, 1)
	req.Equal(alice.ID, summaries[0].CounterpartyID)
	req.Equal("Alice", summaries[0].CounterpartyName)
	req.Equal("hi", summaries[0].LastMessage)
}

func Test_SendMessage_Unknown_Recipient_Returns_400(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	alice := createUser(t, r, "Alice", "555-0001")

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/messages", gin.H{
		"sender_id":    alice.ID,
		"recipient_id": 99,
		"body":         "hi",
	})
	req.Equal(http.StatusBadRequest, w.Code)
	req.False(env.Success)
}

func Test_Conversation_Invalid_User_ID_Returns_400(t *testing.T) {
	req := require.New(t)
	r := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/messages/abc/1", nil)
	req.Equal(http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/conversations/abc", nil)
	req.Equal(http.StatusBadRequest, w.Code)
}
