package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/model/emotion"
)

func TestEmotionDistributionSince(t *testing.T) {
	db := newTestDB(t)
	emotions := NewEmotions(db)
	ctx := context.Background()
	userID := uuid.New()

	record := func(label string, detectedAt time.Time) {
		t.Helper()
		err := emotions.Record(ctx, &emotion.Record{
			UserID:         userID,
			ConversationID: uuid.New(),
			MessageID:      uuid.New(),
			Emotion:        label,
			Confidence:     0.9,
			Intensity:      0.5,
			UserMessage:    "hi",
			AIResponse:     "hello",
			DetectedAt:     detectedAt,
		})
		if err != nil {
			t.Fatalf("Record err: %v", err)
		}
	}

	now := time.Now().UTC()
	record("happy", now)
	record("happy", now)
	record("sad", now)
	record("angry", now.AddDate(0, 0, -30))

	distribution, err := emotions.DistributionSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DistributionSince err: %v", err)
	}
	if distribution["happy"] != 2 || distribution["sad"] != 1 {
		t.Fatalf("unexpected distribution: %v", distribution)
	}
	if _, ok := distribution["angry"]; ok {
		t.Fatal("records outside the window must be excluded")
	}
}

func TestEmotionDailyIntensity(t *testing.T) {
	db := newTestDB(t)
	emotions := NewEmotions(db)
	ctx := context.Background()
	userID := uuid.New()

	record := func(intensity float64, detectedAt time.Time) {
		t.Helper()
		err := emotions.Record(ctx, &emotion.Record{
			UserID:         userID,
			ConversationID: uuid.New(),
			MessageID:      uuid.New(),
			Emotion:        "happy",
			Confidence:     0.9,
			Intensity:      intensity,
			UserMessage:    "hi",
			AIResponse:     "hello",
			DetectedAt:     detectedAt,
		})
		if err != nil {
			t.Fatalf("Record err: %v", err)
		}
	}

	now := time.Now().UTC()
	record(0.4, now)
	record(0.8, now)
	record(0.5, now.AddDate(0, 0, -1))

	daily, err := emotions.DailyIntensity(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DailyIntensity err: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %v", daily)
	}
	if daily[0].Day >= daily[1].Day {
		t.Fatalf("days must be ordered oldest first: %v", daily)
	}
	if daily[0].Average != 0.5 || daily[0].Count != 1 {
		t.Fatalf("yesterday = %+v", daily[0])
	}
	if diff := daily[1].Average - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("today average = %v", daily[1].Average)
	}
	if daily[1].Count != 2 {
		t.Fatalf("today count = %d", daily[1].Count)
	}
}
