package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AvailableMoods is the selectable scale in display order.
var AvailableMoods = []string{"happy", "tired", "anxious", "calm", "sad", "angry"}

var MoodValues = map[string]int{
	"happy":   3,
	"tired":   2,
	"anxious": 2,
	"calm":    1,
	"sad":     1,
	"angry":   1,
}

// unlisted moods found in history count as neutral-positive
const unknownMoodScore = 3

var moodResponses = map[string]string{
	"happy":   "That's wonderful! 😊",
	"tired":   "Rest is important. Consider taking some time to recharge. 😴",
	"anxious": "I understand anxiety can be challenging. Remember to breathe deeply. 💙",
	"sad":     "I'm sorry you're feeling down. You're not alone in this. 💚",
	"angry":   "It's okay to feel angry sometimes. Let's focus on self-care. 🌸",
}

const historyWindow = 7 * 24 * time.Hour

type MoodEntry struct {
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
}

type MoodStats struct {
	AverageScore float64 `json:"average_score"`
	Trend        string  `json:"trend"` // improving | declining | stable
	DominantMood string  `json:"dominant_mood"`
	TotalEntries int     `json:"total_entries"`
}

type MoodLogResult struct {
	Message     string      `json:"message"`
	LoggedMood  string      `json:"logged_mood"`
	MoodStats   MoodStats   `json:"mood_stats"`
	MoodHistory []MoodEntry `json:"mood_history"`
}

type MoodSummary struct {
	Message     string      `json:"message"`
	MoodStats   MoodStats   `json:"mood_stats"`
	MoodHistory []MoodEntry `json:"mood_history"`
}

type MoodService struct {
	db    *gorm.DB
	users *UserService
	log   *zap.Logger
	now   func() time.Time
}

func NewMoodService(db *gorm.DB, users *UserService, log *zap.Logger) *MoodService {
	return &MoodService{db: db, users: users, log: log, now: time.Now}
}

func availableMoodsExtra() map[string]any {
	return map[string]any{"available_moods": AvailableMoods}
}

func (s *MoodService) Log(ctx context.Context, userID uint, mood string) (*MoodLogResult, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if mood == "" {
		return nil, &ValidationError{Code: "missing_mood", Message: "Please select your current mood", Extra: availableMoodsExtra()}
	}
	if _, ok := MoodValues[mood]; !ok {
		return nil, &ValidationError{
			Code:    "invalid_mood",
			Message: fmt.Sprintf("Invalid mood %q. Please select from available options.", mood),
			Extra:   availableMoodsExtra(),
		}
	}
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}

	entry := models.MoodLog{UserID: userID, Mood: mood, Timestamp: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, storageErr("save mood", err)
	}

	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeMoodStats(history)

	msg := fmt.Sprintf("Great! I've logged that you're feeling %s. ", mood)
	if r, ok := moodResponses[mood]; ok {
		msg += r
	} else {
		msg += "Thanks for sharing how you're feeling. "
	}
	switch {
	case stats.Trend == "improving":
		msg += " Your mood trend has been improving lately - that's fantastic!"
	case stats.Trend == "declining" && stats.AverageScore < 3:
		msg += " I've noticed your mood has been lower recently. Would you like to talk about meal planning to boost your energy?"
	}

	recent := history
	if len(recent) > 7 {
		recent = recent[:7]
	}
	return &MoodLogResult{Message: msg, LoggedMood: mood, MoodStats: stats, MoodHistory: recent}, nil
}

// History returns the last seven days of moods, newest first.
func (s *MoodService) History(ctx context.Context, userID uint) ([]MoodEntry, error) {
	var rows []models.MoodLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, s.now().UTC().Add(-historyWindow)).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("load mood history", err)
	}

	out := make([]MoodEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, MoodEntry{Mood: r.Mood, Timestamp: r.Timestamp, Score: moodScore(r.Mood)})
	}
	return out, nil
}

func (s *MoodService) Summary(ctx context.Context, userID uint) (*MoodSummary, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeMoodStats(history)
	return &MoodSummary{Message: moodSummaryText(stats), MoodStats: stats, MoodHistory: history}, nil
}

func moodScore(mood string) int {
	if v, ok := MoodValues[mood]; ok {
		return v
	}
	return unknownMoodScore
}

// ComputeMoodStats expects history newest first. The trend compares the
// newer half against the older half once there are at least four entries.
func ComputeMoodStats(history []MoodEntry) MoodStats {
	if len(history) == 0 {
		return MoodStats{AverageScore: 3.0, Trend: "stable", DominantMood: "neutral"}
	}

	total := 0
	counts := map[string]int{}
	var order []string
	for _, e := range history {
		total += e.Score
		if counts[e.Mood] == 0 {
			order = append(order, e.Mood)
		}
		counts[e.Mood]++
	}
	avg := float64(total) / float64(len(history))

	trend := "stable"
	if len(history) >= 4 {
		mid := len(history) / 2
		recent := avgScore(history[:mid])
		older := avgScore(history[mid:])
		switch {
		case recent > older+0.5:
			trend = "improving"
		case recent < older-0.5:
			trend = "declining"
		}
	}

	dominant := order[0]
	for _, m := range order[1:] {
		if counts[m] > counts[dominant] {
			dominant = m
		}
	}

	return MoodStats{
		AverageScore: utils.Round1(avg),
		Trend:        trend,
		DominantMood: dominant,
		TotalEntries: len(history),
	}
}

func avgScore(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Score
	}
	return float64(sum) / float64(len(entries))
}

func moodSummaryText(st MoodStats) string {
	if st.TotalEntries == 0 {
		return "You haven't logged any moods yet. Start tracking to see your patterns!"
	}

	msg := fmt.Sprintf("📊 Your mood summary over the last 7 days:\n\n"+
		"• Average mood score: %.1f/5\n"+
		"• Trend: %s\n"+
		"• Most common mood: %s\n"+
		"• Total entries: %d\n\n",
		st.AverageScore, utils.Title(st.Trend), utils.Title(st.DominantMood), st.TotalEntries)

	switch {
	case st.AverageScore >= 4:
		msg += "🌟 You're doing great! Keep up the positive energy!"
	case st.AverageScore >= 3:
		msg += "👍 Your mood is fairly balanced. Consider what activities make you feel best."
	default:
		msg += "💙 Your mood has been lower lately. Remember that it's okay to have ups and downs. Consider focusing on self-care activities."
	}
	return msg
}
