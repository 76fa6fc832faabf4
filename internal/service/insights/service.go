package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/solacelabs/solace-backend/internal/store"
)

// Period windows accepted by the summary endpoint.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"
)

var positiveMoods = map[string]bool{"happy": true, "grateful": true}

var positiveEmotions = map[string]bool{"happy": true, "excited": true, "grateful": true}

// MoodSource supplies check-in aggregates.
type MoodSource interface {
	Stats(ctx context.Context, userID uuid.UUID, days int) (*store.MoodStats, error)
	PositiveRatio(ctx context.Context, userID uuid.UUID, cutoff time.Time) (float64, int64, error)
	DailyAverages(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]store.DailyAverage, error)
}

// EmotionSource supplies detected-emotion aggregates.
type EmotionSource interface {
	DistributionSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (map[string]int64, error)
	DailyIntensity(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]store.DailyAverage, error)
}

// ConversationSource supplies engagement counters.
type ConversationSource interface {
	CountMessagesSince(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
	CountConversations(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Service derives analytics from mood check-ins, detected emotions and
// conversation activity.
type Service struct {
	moods         MoodSource
	emotions      EmotionSource
	conversations ConversationSource
}

func NewService(moods MoodSource, emotions EmotionSource, conversations ConversationSource) *Service {
	return &Service{moods: moods, emotions: emotions, conversations: conversations}
}

// EmotionShare is one label's slice of the combined distribution,
// sorted largest first for chart rendering.
type EmotionShare struct {
	Emotion    string  `json:"emotion"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TimelinePoint is one day on the combined emotional timeline. Scores are
// on the 1-5 check-in scale; UserMood and DetectedEmotion are nil for days
// where that source has no data.
type TimelinePoint struct {
	Date            string   `json:"date"`
	UserMood        *float64 `json:"userMood"`
	DetectedEmotion *float64 `json:"detectedEmotion"`
	CombinedScore   float64  `json:"combinedScore"`
}

// ConversationStats summarizes chat activity over the window.
type ConversationStats struct {
	TotalMessages      int64 `json:"totalMessages"`
	TotalConversations int64 `json:"totalConversations"`
	MoodCheckins       int64 `json:"moodCheckins"`
}

// Summary is the full analytics payload for one user and window.
type Summary struct {
	WellnessScore       int               `json:"wellnessScore"`
	EmotionTimeline     []TimelinePoint   `json:"emotionTimeline"`
	EmotionDistribution []EmotionShare    `json:"emotionDistribution"`
	ConversationStats   ConversationStats `json:"conversationStats"`
	MoodStats           *store.MoodStats  `json:"moodStats"`
	Period              string            `json:"period"`
	PeriodDays          int               `json:"periodDays"`
}

// PeriodDays maps a period name to its window length, defaulting to a week.
func PeriodDays(period string) int {
	switch period {
	case PeriodMonth:
		return 30
	case PeriodAll:
		return 365
	default:
		return 7
	}
}

// Summarize computes the analytics summary for the given period.
func (s *Service) Summarize(ctx context.Context, userID uuid.UUID, period string) (*Summary, error) {
	days := PeriodDays(period)
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	moodStats, err := s.moods.Stats(ctx, userID, days)
	if err != nil {
		return nil, fmt.Errorf("mood stats: %w", err)
	}

	emotionCounts, err := s.emotions.DistributionSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("emotion distribution: %w", err)
	}

	totalMessages, err := s.conversations.CountMessagesSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("message count: %w", err)
	}
	totalConversations, err := s.conversations.CountConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("conversation count: %w", err)
	}

	score, err := s.wellnessScore(ctx, userID, days, cutoff, emotionCounts, moodStats, totalMessages)
	if err != nil {
		return nil, err
	}

	timeline, err := s.emotionTimeline(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}

	return &Summary{
		WellnessScore:       score,
		EmotionTimeline:     timeline,
		EmotionDistribution: combinedDistribution(moodStats, emotionCounts),
		ConversationStats: ConversationStats{
			TotalMessages:      totalMessages,
			TotalConversations: totalConversations,
			MoodCheckins:       moodStats.TotalCheckins,
		},
		MoodStats:  moodStats,
		Period:     period,
		PeriodDays: days,
	}, nil
}

// wellnessScore folds check-in frequency, mood positivity, detected-emotion
// positivity and engagement into a 0-100 score on a base of 50.
func (s *Service) wellnessScore(ctx context.Context, userID uuid.UUID, days int, cutoff time.Time, emotionCounts map[string]int64, moodStats *store.MoodStats, totalMessages int64) (int, error) {
	score := 50.0

	// Check-in frequency, up to 20 points.
	frequency := float64(moodStats.TotalCheckins) / float64(days)
	score += math.Min(frequency*10, 20)

	// Positive mood share, up to 30 points.
	moodRatio, checkins, err := s.moods.PositiveRatio(ctx, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("positive mood ratio: %w", err)
	}
	if checkins > 0 {
		score += moodRatio * 30
	}

	// Positive detected-emotion share, up to 20 points.
	var totalEmotions, positive int64
	for label, count := range emotionCounts {
		totalEmotions += count
		if positiveEmotions[label] {
			positive += count
		}
	}
	if totalEmotions > 0 {
		score += float64(positive) / float64(totalEmotions) * 20
	}

	// Engagement, up to 10 points.
	if totalMessages > 0 {
		score += math.Min(float64(totalMessages)/10, 10)
	}

	if score > 100 {
		score = 100
	}
	return int(score), nil
}

// emotionTimeline merges daily mood averages (already 1-5) with daily
// detected-emotion intensity (0-1, rescaled to 1-5). Days present in both
// sources score the mean of the two.
func (s *Service) emotionTimeline(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]TimelinePoint, error) {
	moodDays, err := s.moods.DailyAverages(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("mood timeline: %w", err)
	}
	emotionDays, err := s.emotions.DailyIntensity(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("emotion timeline: %w", err)
	}

	points := make(map[string]*TimelinePoint, len(moodDays)+len(emotionDays))
	for _, day := range moodDays {
		moodScore := day.Average
		points[day.Day] = &TimelinePoint{
			Date:          day.Day,
			UserMood:      &moodScore,
			CombinedScore: moodScore,
		}
	}
	for _, day := range emotionDays {
		detected := day.Average * 5
		if point, ok := points[day.Day]; ok {
			point.DetectedEmotion = &detected
			point.CombinedScore = (*point.UserMood + detected) / 2
			continue
		}
		points[day.Day] = &TimelinePoint{
			Date:            day.Day,
			DetectedEmotion: &detected,
			CombinedScore:   detected,
		}
	}

	timeline := make([]TimelinePoint, 0, len(points))
	for _, point := range points {
		timeline = append(timeline, *point)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline, nil
}

// combinedDistribution merges manual check-ins and detected emotions into a
// single share list.
func combinedDistribution(moodStats *store.MoodStats, emotionCounts map[string]int64) []EmotionShare {
	combined := make(map[string]int64, len(emotionCounts)+len(moodStats.Distribution))
	var total int64
	for label, share := range moodStats.Distribution {
		combined[label] += share.Count
		total += share.Count
	}
	for label, count := range emotionCounts {
		combined[label] += count
		total += count
	}

	shares := make([]EmotionShare, 0, len(combined))
	for label, count := range combined {
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(count)/float64(total)*1000) / 10
		}
		shares = append(shares, EmotionShare{Emotion: label, Count: count, Percentage: percentage})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Emotion < shares[j].Emotion
	})
	return shares
}
