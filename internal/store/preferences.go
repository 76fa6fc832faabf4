package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solacelabs/solace-backend/internal/model/preference"
)

// Preferences is the data-access layer for user personalization.
type Preferences struct {
	db *gorm.DB
}

func NewPreferences(db *gorm.DB) *Preferences {
	return &Preferences{db: db}
}

// Get returns the user's preferences, creating a defaults row on first use.
func (s *Preferences) Get(ctx context.Context, userID uuid.UUID) (*preference.Preference, error) {
	var pref preference.Preference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = preference.Preference{
			UserID:            userID,
			PreferredLanguage: "en",
			PreferredTone:     "friendly",
			ConversationStyle: "balanced",
			ResponseLength:    "medium",
		}
		if err := s.db.WithContext(ctx).Create(&pref).Error; err != nil {
			return nil, fmt.Errorf("failed to create default preferences: %w", err)
		}
		return &pref, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &pref, nil
}

// Save persists an updated preference row.
func (s *Preferences) Save(ctx context.Context, pref *preference.Preference) error {
	if err := s.db.WithContext(ctx).Save(pref).Error; err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
