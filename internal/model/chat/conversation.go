package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaceholderTitle is assigned on creation and replaced exactly once by the
// background title generator after the first completed AI turn.
const PlaceholderTitle = "New Conversation"

// Conversation groups the messages of one user/AI exchange thread.
// It belongs to exactly one owner; only the owner may extend it.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title     string    `gorm:"size:200" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
