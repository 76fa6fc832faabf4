package emotion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record captures the emotion detected for one completed AI turn, together
// with the texts that produced it. Written best-effort, at most once per
// AI message.
type Record struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversationId"`
	MessageID      uuid.UUID `gorm:"type:uuid;not null" json:"messageId"`
	Emotion        string    `gorm:"size:50;not null" json:"emotion"`
	Confidence     float64   `gorm:"not null;default:0.8" json:"confidence"`
	Intensity      float64   `gorm:"not null;default:0.5" json:"intensity"`
	UserMessage    string    `gorm:"type:text;not null" json:"userMessage"`
	AIResponse     string    `gorm:"type:text;not null" json:"aiResponse"`
	DetectedAt     time.Time `gorm:"not null;index" json:"detectedAt"`
}

func (Record) TableName() string { return "emotion_records" }

func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.DetectedAt.IsZero() {
		r.DetectedAt = time.Now().UTC()
	}
	return nil
}
