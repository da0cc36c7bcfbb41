package domain

import (
	"time"
)

// Message represents a persisted direct message. Messages are immutable
// once created. SenderName/RecipientName are filled in on conversation
// reads only; they are not stored on the message row.
type Message struct {
	ID            uint      `json:"id"`
	SenderID      uint      `json:"sender_id"`
	RecipientID   uint      `json:"recipient_id"`
	SenderName    string    `json:"sender_name,omitempty"`
	RecipientName string    `json:"recipient_name,omitempty"`
	Body          string    `json:"body"`
	SentAt        time.Time `json:"sent_at"`
}

// SendMessageRequest represents a send-message request.
type SendMessageRequest struct {
	SenderID    uint   `json:"sender_id" binding:"required"`
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

// ConversationSummary is a derived view: the most recent message exchanged
// with one counterparty. One row per distinct counterparty, most recently
// contacted first.
type ConversationSummary struct {
	CounterpartyID   uint      `json:"counterparty_id"`
	CounterpartyName string    `json:"counterparty_name"`
	LastMessage      string    `json:"last_message"`
	LastMessageAt    time.Time `json:"last_message_at"`
}
