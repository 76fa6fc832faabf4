package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one entry in a conversation. Immutable once created; ordering
// is by creation time.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversationId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsFromUser     bool      `gorm:"not null" json:"isFromUser"`
	CreatedAt      time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
