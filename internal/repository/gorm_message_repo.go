package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/courier-im/courier/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a message. Both endpoints must reference existing users;
// the check runs before the insert so a dangling reference surfaces as
// ErrUserNotFound rather than a driver-specific constraint error.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	for _, id := range []uint{msg.SenderID, msg.RecipientID} {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
	}

	model := &domain.MessageModel{
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
	}
	result := r.db.WithContext(ctx).
		Omit("Sender", "Recipient").
		Create(model)
	if result.Error != nil {
		return r.handleError(result.Error)
	}

	msg.ID = model.ID
	msg.SentAt = model.SentAt
	return nil
}

// GetConversation returns both directions of the two-party conversation,
// ordered by sent timestamp ascending (id ascending on ties), with display
// names joined in from the user directory.
func (r *GormMessageRepository) GetConversation(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	var messages []domain.Message
	result := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.sender_id, messages.recipient_id, messages.body, messages.sent_at, "+
			"s.name AS sender_name, r.name AS recipient_name").
		Joins("JOIN users s ON s.id = messages.sender_id").
		Joins("JOIN users r ON r.id = messages.recipient_id").
		Where("(messages.sender_id = ? AND messages.recipient_id = ?) OR (messages.sender_id = ? AND messages.recipient_id = ?)",
			userA, userB, userB, userA).
		Order("messages.sent_at ASC, messages.id ASC").
		Scan(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

// GetConversationSummaries computes the latest message per distinct
// counterparty of userID. Messages are fetched newest-first (ties broken by
// id descending, so the later insert wins) and reduced in process: the first
// row seen for a counterparty is its summary. The reduction is portable
// across every dialect pkg/database supports.
func (r *GormMessageRepository) GetConversationSummaries(ctx context.Context, userID uint) ([]domain.ConversationSummary, error) {
	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("sent_at DESC, id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	seen := make(map[uint]bool)
	summaries := make([]domain.ConversationSummary, 0)
	for i := range models {
		counterparty := models[i].SenderID
		if counterparty == userID {
			counterparty = models[i].RecipientID
		}
		if seen[counterparty] {
			continue
		}
		seen[counterparty] = true
		summaries = append(summaries, domain.ConversationSummary{
			CounterpartyID: counterparty,
			LastMessage:    models[i].Body,
			LastMessageAt:  models[i].SentAt,
		})
	}

	if len(summaries) == 0 {
		return summaries, nil
	}

	ids := make([]uint, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.CounterpartyID)
	}

	var users []domain.UserModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	for i := range summaries {
		summaries[i].CounterpartyName = names[summaries[i].CounterpartyID]
	}

	return summaries, nil
}

// handleError converts database-specific errors to domain errors.
func (r *GormMessageRepository) handleError(err error) error {
	errStr := err.Error()

	// Referential integrity violations from the store itself.
	if strings.Contains(errStr, "FOREIGN KEY constraint") ||
		strings.Contains(errStr, "foreign key constraint") {
		return ErrUserNotFound
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUserNotFound
	}

	return err
}
