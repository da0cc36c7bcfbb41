package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/repository"
	"github.com/courier-im/courier/internal/service"
	"github.com/courier-im/courier/pkg/log"
	"github.com/courier-im/courier/pkg/response"
)

// HTTPHandler handles the REST surface of the messaging service.
type HTTPHandler struct {
	service service.MessagingService
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(svc service.MessagingService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

// RegisterRoutes registers all routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users", h.ListUsers)
		api.POST("/messages", h.SendMessage)
		api.GET("/messages/:user_a/:user_b", h.GetConversation)
		api.GET("/conversations/:user_id", h.GetConversationSummaries)
	}

	r.GET("/health", h.HealthCheck)
}

// CreateUser handles user registration.
func (h *HTTPHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create user request")
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.service.CreateUser(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrHandleExists) {
			response.BadRequest(c, "handle already exists")
			return
		}
		l.Error().Err(err).Msg("create user failed")
		response.InternalError(c, "failed to create user")
		return
	}

	response.Success(c, user)
}

// ListUsers returns all users ordered by name.
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		l.Error().Err(err).Msg("list users failed")
		response.InternalError(c, "failed to list users")
		return
	}

	response.Success(c, users)
}

// SendMessage persists a message and triggers best-effort dispatch.
func (h *HTTPHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.service.SendMessage(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.BadRequest(c, "sender or recipient does not exist")
			return
		}
		l.Error().Err(err).Msg("send message failed")
		response.InternalError(c, "failed to send message")
		return
	}

	response.Success(c, msg)
}

// GetConversation returns the full two-party conversation, oldest first.
func (h *HTTPHandler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userA, okA := parseUserID(c.Param("user_a"))
	userB, okB := parseUserID(c.Param("user_b"))
	if !okA || !okB {
		response.BadRequest(c, "user ids must be positive integers")
		return
	}

	messages, err := h.service.GetConversation(ctx, userA, userB)
	if err != nil {
		l.Error().Err(err).Msg("get conversation failed")
		response.InternalError(c, "failed to get conversation")
		return
	}

	response.Success(c, messages)
}

// GetConversationSummaries returns the latest message per counterparty.
func (h *HTTPHandler) GetConversationSummaries(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	userID, ok := parseUserID(c.Param("user_id"))
	if !ok {
		response.BadRequest(c, "user id must be a positive integer")
		return
	}

	summaries, err := h.service.GetConversationSummaries(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("get conversation summaries failed")
		response.InternalError(c, "failed to get conversation summaries")
		return
	}

	response.Success(c, summaries)
}

// HealthCheck reports liveness.
func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func parseUserID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
