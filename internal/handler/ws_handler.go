package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/courier-im/courier/internal/config"
	"github.com/courier-im/courier/internal/domain"
	"github.com/courier-im/courier/internal/hub"
	"github.com/courier-im/courier/internal/service"
	"github.com/courier-im/courier/pkg/log"
)

// WSHandler upgrades HTTP requests to WebSocket connections and drives the
// per-connection lifecycle.
type WSHandler struct {
	service  service.MessagingService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(svc service.MessagingService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		wsCfg:   wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the WebSocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and starts the read/write pumps.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), conn, h.wsCfg)

	go client.WritePump()
	go client.ReadPump(h.handleFrame, h.handleClose)
}

func (h *WSHandler) handleFrame(client *hub.Client, frame []byte) {
	ctx := context.Background()

	var base domain.BaseFrame
	if err := json.Unmarshal(frame, &base); err != nil {
		client.SendFrame(domain.NewErrorFrame(domain.ErrCodeBadRequest, "invalid frame format"))
		return
	}

	switch base.Type {
	case domain.FrameTypeRegister:
		var msg domain.RegisterFrame
		if err := json.Unmarshal(frame, &msg); err != nil {
			client.SendFrame(domain.NewErrorFrame(domain.ErrCodeBadRequest, "invalid register frame"))
			return
		}
		if msg.UserID == 0 {
			client.SendFrame(domain.NewErrorFrame(domain.ErrCodeBadRequest, "user_id is required"))
			return
		}
		if err := h.service.HandleRegister(ctx, client, msg.UserID); err != nil {
			logger := log.L()
			logger.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("register failed")
		}

	case domain.FrameTypePing:
		client.SendFrame(map[string]string{"type": domain.FrameTypePong})

	default:
		client.SendFrame(domain.NewErrorFrame(domain.ErrCodeBadRequest, "unknown frame type"))
	}
}

func (h *WSHandler) handleClose(client *hub.Client) {
	if err := h.service.HandleDisconnect(context.Background(), client); err != nil {
		logger := log.L()
		logger.Warn().Err(err).Str(log.FieldConnID, client.ID).Msg("disconnect cleanup failed")
	}
}
