package insights

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/store"
)

type fakeMoods struct {
	stats    *store.MoodStats
	ratio    float64
	checkins int64
	daily    []store.DailyAverage
}

func (f *fakeMoods) Stats(context.Context, uuid.UUID, int) (*store.MoodStats, error) {
	return f.stats, nil
}

func (f *fakeMoods) PositiveRatio(context.Context, uuid.UUID, time.Time) (float64, int64, error) {
	return f.ratio, f.checkins, nil
}

func (f *fakeMoods) DailyAverages(context.Context, uuid.UUID, time.Time) ([]store.DailyAverage, error) {
	return f.daily, nil
}

type fakeEmotions struct {
	counts map[string]int64
	daily  []store.DailyAverage
}

func (f *fakeEmotions) DistributionSince(context.Context, uuid.UUID, time.Time) (map[string]int64, error) {
	return f.counts, nil
}

func (f *fakeEmotions) DailyIntensity(context.Context, uuid.UUID, time.Time) ([]store.DailyAverage, error) {
	return f.daily, nil
}

type fakeConversations struct {
	messages      int64
	conversations int64
}

func (f *fakeConversations) CountMessagesSince(context.Context, uuid.UUID, time.Time) (int64, error) {
	return f.messages, nil
}

func (f *fakeConversations) CountConversations(context.Context, uuid.UUID) (int64, error) {
	return f.conversations, nil
}

func TestPeriodDays(t *testing.T) {
	cases := map[string]int{
		PeriodWeek:  7,
		PeriodMonth: 30,
		PeriodAll:   365,
		"bogus":     7,
	}
	for period, want := range cases {
		if got := PeriodDays(period); got != want {
			t.Errorf("PeriodDays(%q) = %d, want %d", period, got, want)
		}
	}
}

func TestSummarizeQuietBaseline(t *testing.T) {
	service := NewService(
		&fakeMoods{stats: &store.MoodStats{Distribution: map[string]store.MoodShare{}}},
		&fakeEmotions{counts: map[string]int64{}},
		&fakeConversations{},
	)

	summary, err := service.Summarize(context.Background(), uuid.New(), PeriodWeek)
	if err != nil {
		t.Fatalf("Summarize err: %v", err)
	}
	if summary.WellnessScore != 50 {
		t.Fatalf("baseline score = %d, want 50", summary.WellnessScore)
	}
	if len(summary.EmotionDistribution) != 0 {
		t.Fatalf("unexpected distribution: %v", summary.EmotionDistribution)
	}
	if summary.PeriodDays != 7 {
		t.Fatalf("period days = %d", summary.PeriodDays)
	}
}

func TestSummarizeScoreFactors(t *testing.T) {
	// 7 check-ins in 7 days: frequency 1/day gives 10 points.
	// All moods positive: 30 points. All emotions positive: 20 points.
	// 100 messages caps engagement at 10 points. 50+10+30+20+10 -> capped 100.
	service := NewService(
		&fakeMoods{
			stats: &store.MoodStats{
				TotalCheckins: 7,
				Distribution: map[string]store.MoodShare{
					"happy": {Count: 7},
				},
			},
			ratio:    1.0,
			checkins: 7,
		},
		&fakeEmotions{counts: map[string]int64{"happy": 3, "excited": 2}},
		&fakeConversations{messages: 100, conversations: 4},
	)

	summary, err := service.Summarize(context.Background(), uuid.New(), PeriodWeek)
	if err != nil {
		t.Fatalf("Summarize err: %v", err)
	}
	if summary.WellnessScore != 100 {
		t.Fatalf("score = %d, want 100", summary.WellnessScore)
	}
	if summary.ConversationStats.TotalMessages != 100 {
		t.Fatalf("stats = %+v", summary.ConversationStats)
	}
}

func TestSummarizeCombinesDistributions(t *testing.T) {
	service := NewService(
		&fakeMoods{
			stats: &store.MoodStats{
				TotalCheckins: 2,
				Distribution: map[string]store.MoodShare{
					"happy": {Count: 1},
					"sad":   {Count: 1},
				},
			},
			ratio:    0.5,
			checkins: 2,
		},
		&fakeEmotions{counts: map[string]int64{"happy": 2}},
		&fakeConversations{},
	)

	summary, err := service.Summarize(context.Background(), uuid.New(), PeriodWeek)
	if err != nil {
		t.Fatalf("Summarize err: %v", err)
	}

	if len(summary.EmotionDistribution) != 2 {
		t.Fatalf("expected 2 labels, got %v", summary.EmotionDistribution)
	}
	top := summary.EmotionDistribution[0]
	if top.Emotion != "happy" || top.Count != 3 {
		t.Fatalf("top share = %+v", top)
	}
	if top.Percentage != 75.0 {
		t.Fatalf("top percentage = %v", top.Percentage)
	}
}

func TestSummarizeEmotionTimeline(t *testing.T) {
	service := NewService(
		&fakeMoods{
			stats: &store.MoodStats{Distribution: map[string]store.MoodShare{}},
			daily: []store.DailyAverage{
				{Day: "2026-08-28", Average: 4, Count: 2},
				{Day: "2026-08-29", Average: 2, Count: 1},
			},
		},
		&fakeEmotions{
			counts: map[string]int64{},
			daily: []store.DailyAverage{
				// Detected intensity is 0-1; rescaled x5 for the timeline.
				{Day: "2026-08-29", Average: 0.6, Count: 3},
				{Day: "2026-08-30", Average: 0.9, Count: 1},
			},
		},
		&fakeConversations{},
	)

	summary, err := service.Summarize(context.Background(), uuid.New(), PeriodWeek)
	if err != nil {
		t.Fatalf("Summarize err: %v", err)
	}

	timeline := summary.EmotionTimeline
	if len(timeline) != 3 {
		t.Fatalf("expected 3 days, got %v", timeline)
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i-1].Date >= timeline[i].Date {
			t.Fatalf("timeline must be ordered by date: %v", timeline)
		}
	}

	moodOnly := timeline[0]
	if moodOnly.UserMood == nil || *moodOnly.UserMood != 4 || moodOnly.DetectedEmotion != nil {
		t.Fatalf("mood-only day = %+v", moodOnly)
	}
	if moodOnly.CombinedScore != 4 {
		t.Fatalf("mood-only combined = %v", moodOnly.CombinedScore)
	}

	// 2026-08-29 has both sources: (2 + 0.6*5) / 2 = 2.5.
	both := timeline[1]
	if both.UserMood == nil || both.DetectedEmotion == nil {
		t.Fatalf("combined day = %+v", both)
	}
	if *both.DetectedEmotion != 3 || both.CombinedScore != 2.5 {
		t.Fatalf("combined day scores = %v %v", *both.DetectedEmotion, both.CombinedScore)
	}

	detectedOnly := timeline[2]
	if detectedOnly.UserMood != nil || detectedOnly.CombinedScore != 4.5 {
		t.Fatalf("detected-only day = %+v", detectedOnly)
	}
}
