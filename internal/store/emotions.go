package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solacelabs/solace-backend/internal/model/emotion"
)

// Emotions is the data-access layer for detected emotion records.
type Emotions struct {
	db *gorm.DB
}

func NewEmotions(db *gorm.DB) *Emotions {
	return &Emotions{db: db}
}

// Record persists one detected emotion. Callers treat failure as
// best-effort; this method just reports it.
func (s *Emotions) Record(ctx context.Context, record *emotion.Record) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record emotion: %w", err)
	}
	return nil
}

// DistributionSince returns detected-emotion counts per label after cutoff.
func (s *Emotions) DistributionSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (map[string]int64, error) {
	type row struct {
		Emotion string
		Count   int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&emotion.Record{}).
		Select("emotion, COUNT(id) AS count").
		Where("user_id = ? AND detected_at >= ?", userID, cutoff).
		Group("emotion").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate emotions: %w", err)
	}

	distribution := make(map[string]int64, len(rows))
	for _, r := range rows {
		distribution[r.Emotion] = r.Count
	}
	return distribution, nil
}

// DailyIntensity returns per-day average detected intensity (0-1 scale)
// after cutoff, oldest day first.
func (s *Emotions) DailyIntensity(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]DailyAverage, error) {
	var rows []DailyAverage
	err := s.db.WithContext(ctx).
		Model(&emotion.Record{}).
		Select("DATE(detected_at) AS day, COALESCE(AVG(intensity), 0) AS average, COUNT(id) AS count").
		Where("user_id = ? AND detected_at >= ?", userID, cutoff).
		Group("DATE(detected_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily emotions: %w", err)
	}
	return rows, nil
}
