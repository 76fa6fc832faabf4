package mood

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SourceUserLogged marks manual check-ins, as opposed to emotions detected
// from chat turns which live in emotion_records.
const SourceUserLogged = "user_logged"

// Entry is a self-reported mood check-in.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Mood      string    `gorm:"size:50;not null" json:"mood"`
	Intensity int       `gorm:"not null;default:3" json:"intensity"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	Source    string    `gorm:"size:20;not null;default:'user_logged'" json:"source"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Entry) TableName() string { return "mood_entries" }

func (e *Entry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
