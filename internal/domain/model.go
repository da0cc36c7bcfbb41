package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Handle    string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:        m.ID,
		Name:      m.Name,
		Handle:    m.Handle,
		CreatedAt: m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Handle:    u.Handle,
		CreatedAt: u.CreatedAt,
	}
}

// MessageModel is the GORM model for the messages table. Sender and
// Recipient associations give the store its foreign-key constraints.
type MessageModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	SenderID    uint      `gorm:"not null;index"`
	RecipientID uint      `gorm:"not null;index"`
	Body        string    `gorm:"type:text;not null"`
	SentAt      time.Time `gorm:"autoCreateTime;index"`

	Sender    UserModel `gorm:"foreignKey:SenderID"`
	Recipient UserModel `gorm:"foreignKey:RecipientID"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		SentAt:      m.SentAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		SentAt:      msg.SentAt,
	}
}
