package preference

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Preference stores per-user personalization applied to AI replies.
// PreferredTone selects one of the personality presets used in the system
// prompt.
type Preference struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	PreferredLanguage string         `gorm:"size:10;not null;default:'en'" json:"preferredLanguage"`
	PreferredTone     string         `gorm:"size:50;not null;default:'friendly'" json:"preferredTone"`
	ConversationStyle string         `gorm:"size:50;not null;default:'balanced'" json:"conversationStyle"`
	ResponseLength    string         `gorm:"size:20;not null;default:'medium'" json:"responseLength"`
	Name              string         `gorm:"size:100" json:"name,omitempty"`
	Timezone          string         `gorm:"size:50" json:"timezone,omitempty"`
	CustomContext     string         `gorm:"type:text" json:"customContext,omitempty"`
	TopicsOfInterest  datatypes.JSON `json:"topicsOfInterest,omitempty"`
	PreferencesJSON   datatypes.JSON `json:"preferencesJson,omitempty"`
	CreatedAt         time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Preference) TableName() string { return "user_preferences" }

func (p *Preference) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
