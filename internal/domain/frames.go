package domain

// WebSocket frame types from client.
const (
	FrameTypeRegister = "register"
	FrameTypePing     = "ping"
)

// WebSocket frame types to client.
const (
	FrameTypeRegistered = "registered"
	FrameTypeError      = "error"
	FrameTypePong       = "pong"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeUnknownUser   = "UNKNOWN_USER"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseFrame is the base structure for all inbound WebSocket frames.
type BaseFrame struct {
	Type string `json:"type"`
}

// RegisterFrame associates the connection with a user id.
type RegisterFrame struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
}

// RegisteredFrame acknowledges a successful registration.
type RegisteredFrame struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
}

// ErrorFrame reports a client-visible error on the socket.
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorFrame(code, message string) *ErrorFrame {
	return &ErrorFrame{
		Type:    FrameTypeError,
		Code:    code,
		Message: message,
	}
}
