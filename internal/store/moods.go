package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solacelabs/solace-backend/internal/model/mood"
)

// Moods is the data-access layer for self-reported mood check-ins.
type Moods struct {
	db *gorm.DB
}

func NewMoods(db *gorm.DB) *Moods {
	return &Moods{db: db}
}

// MoodShare is one label's slice of the check-in distribution.
type MoodShare struct {
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MoodStats summarizes a user's check-ins over a trailing window.
type MoodStats struct {
	TotalCheckins    int64                `json:"totalCheckins"`
	AverageIntensity float64              `json:"averageIntensity"`
	Distribution     map[string]MoodShare `json:"distribution"`
	PeriodDays       int                  `json:"periodDays"`
}

// Create stores a check-in, clamping intensity to the 1-5 scale.
func (s *Moods) Create(ctx context.Context, userID uuid.UUID, moodLabel string, intensity int, note string) (*mood.Entry, error) {
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 5 {
		intensity = 5
	}

	entry := mood.Entry{
		UserID:    userID,
		Mood:      moodLabel,
		Intensity: intensity,
		Note:      note,
		Source:    mood.SourceUserLogged,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create mood entry: %w", err)
	}
	return &entry, nil
}

// History returns check-ins from the last days days, newest first.
func (s *Moods) History(ctx context.Context, userID uuid.UUID, days int) ([]mood.Entry, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var entries []mood.Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mood history: %w", err)
	}
	return entries, nil
}

// Stats aggregates check-in counts, average intensity and per-mood shares
// over the trailing window.
func (s *Moods) Stats(ctx context.Context, userID uuid.UUID, days int) (*MoodStats, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	scope := s.db.WithContext(ctx).
		Model(&mood.Entry{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count mood entries: %w", err)
	}

	var avg float64
	if err := scope.Session(&gorm.Session{}).
		Select("COALESCE(AVG(intensity), 0)").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average mood intensity: %w", err)
	}

	type row struct {
		Mood  string
		Count int64
	}
	var rows []row
	if err := scope.Session(&gorm.Session{}).
		Select("mood, COUNT(id) AS count").
		Group("mood").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate moods: %w", err)
	}

	distribution := make(map[string]MoodShare, len(rows))
	for _, r := range rows {
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(r.Count)/float64(total)*1000) / 10
		}
		distribution[r.Mood] = MoodShare{Count: r.Count, Percentage: percentage}
	}

	return &MoodStats{
		TotalCheckins:    total,
		AverageIntensity: math.Round(avg*100) / 100,
		Distribution:     distribution,
		PeriodDays:       days,
	}, nil
}

// DailyAverage is one day's aggregate for timeline charts. Day is the
// SQLite DATE() text form, YYYY-MM-DD.
type DailyAverage struct {
	Day     string
	Average float64
	Count   int64
}

// DailyAverages returns per-day average check-in intensity after cutoff,
// oldest day first.
func (s *Moods) DailyAverages(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]DailyAverage, error) {
	var rows []DailyAverage
	err := s.db.WithContext(ctx).
		Model(&mood.Entry{}).
		Select("DATE(created_at) AS day, COALESCE(AVG(intensity), 0) AS average, COUNT(id) AS count").
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Group("DATE(created_at)").
		Order("day").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily moods: %w", err)
	}
	return rows, nil
}

// PositiveRatio returns the share of check-ins with a positive mood label.
func (s *Moods) PositiveRatio(ctx context.Context, userID uuid.UUID, cutoff time.Time) (float64, int64, error) {
	scope := s.db.WithContext(ctx).
		Model(&mood.Entry{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff)

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count mood entries: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}

	var positive int64
	if err := scope.Session(&gorm.Session{}).
		Where("mood IN ?", []string{"happy", "grateful"}).
		Count(&positive).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count positive moods: %w", err)
	}

	return float64(positive) / float64(total), total, nil
}
