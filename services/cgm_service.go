package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CriticalLow  = 70
	CriticalHigh = 300

	MinReading = 60
	MaxReading = 350

	rangeLow  = 70
	rangeHigh = 180
)

var glucoseRecommendations = map[string][]string{
	"critically_low": {
		"Consume 15g of fast-acting carbs (glucose tablets, juice)",
		"Recheck in 15 minutes",
		"Contact healthcare provider immediately",
	},
	"low": {
		"Have a small snack with 15-20g carbs",
		"Avoid intense exercise for now",
		"Monitor closely",
	},
	"normal": {
		"Keep up the good work!",
		"Maintain your current meal plan",
		"Continue regular monitoring",
	},
	"elevated": {
		"Consider a low-carb meal for next eating",
		"Stay hydrated",
		"Light physical activity may help",
	},
	"high": {
		"Avoid high-carb foods",
		"Increase water intake",
		"Consider contacting healthcare provider",
	},
}

type GlucoseResult struct {
	Message         string        `json:"message"`
	GlucoseReading  int           `json:"glucose_reading"`
	Status          string        `json:"status"`
	AlertFlag       bool          `json:"alert_flag"`
	Recommendations []string      `json:"recommendations"`
	Alert           *models.Alert `json:"alert,omitempty"`
}

type GlucoseEntry struct {
	GlucoseReading int       `json:"glucose_reading"`
	AlertFlag      bool      `json:"alert_flag"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

type GlucoseStats struct {
	AverageReading float64 `json:"average_reading"`
	TimeInRange    float64 `json:"time_in_range"`
	TotalReadings  int     `json:"total_readings"`
	Trend          string  `json:"trend"` // rising | falling | stable
	Alerts         int     `json:"alerts"`
}

type GlucoseSummary struct {
	Message    string         `json:"message"`
	CGMStats   GlucoseStats   `json:"cgm_stats"`
	CGMHistory []GlucoseEntry `json:"cgm_history"`
}

type CGMService struct {
	db     *gorm.DB
	users  *UserService
	alerts *AlertBus
	log    *zap.Logger
	now    func() time.Time
	intN   func(n int) int
	chance func() float64
}

func NewCGMService(db *gorm.DB, users *UserService, alerts *AlertBus, log *zap.Logger) *CGMService {
	return &CGMService{
		db:     db,
		users:  users,
		alerts: alerts,
		log:    log,
		now:    time.Now,
		intN:   rand.IntN,
		chance: rand.Float64,
	}
}

// GlucoseStatus buckets a reading in mg/dL.
func GlucoseStatus(reading int) string {
	switch {
	case reading < CriticalLow:
		return "critically_low"
	case reading < 80:
		return "low"
	case reading <= 140:
		return "normal"
	case reading <= 180:
		return "elevated"
	case reading <= 250:
		return "high"
	default:
		return "critically_high"
	}
}

func IsAlertReading(reading int) bool {
	return reading < CriticalLow || reading > CriticalHigh
}

// Log validates and stores a reading. A nil reading is a missing field.
func (s *CGMService) Log(ctx context.Context, userID uint, reading *int) (*GlucoseResult, error) {
	if reading == nil {
		return nil, invalid("missing_reading", "Please provide a glucose reading (80-300 mg/dL)")
	}
	if *reading < MinReading || *reading > MaxReading {
		return nil, invalid("invalid_range", fmt.Sprintf("Glucose reading must be between %d and %d mg/dL", MinReading, MaxReading))
	}
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}
	return s.store(ctx, userID, *reading)
}

// Generate simulates a reading around the user's baseline range.
func (s *CGMService) Generate(ctx context.Context, userID uint) (*GlucoseResult, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, userID, s.simulate(u))
}

func (s *CGMService) simulate(u *models.User) int {
	lo, hi := u.GlucoseBaseline()
	reading := clampReading(s.uniform(lo, hi) + s.uniform(-20, 30))
	// post-meal spike lands on top of the sensor range
	if u.HasCondition("Type 2 Diabetes") && s.chance() < 0.2 {
		reading += s.uniform(20, 60)
	}
	return reading
}

func (s *CGMService) uniform(lo, hi int) int {
	return lo + s.intN(hi-lo+1)
}

func clampReading(r int) int {
	return max(MinReading, min(MaxReading, r))
}

func (s *CGMService) store(ctx context.Context, userID uint, reading int) (*GlucoseResult, error) {
	flag := IsAlertReading(reading)
	row := models.CGMReading{UserID: userID, GlucoseReading: reading, AlertFlag: flag, Timestamp: s.now().UTC()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storageErr("save glucose reading", err)
	}

	status := GlucoseStatus(reading)
	res := &GlucoseResult{
		Message:         glucoseMessage(status, reading),
		GlucoseReading:  reading,
		Status:          status,
		AlertFlag:       flag,
		Recommendations: glucoseAdvice(status),
	}

	if typ := alertType(flag, status); typ != "" && s.alerts != nil {
		a, err := s.alerts.Emit(ctx, userID, typ, res.Message, reading)
		if err != nil {
			// the reading is stored; a lost alert must not fail the request
			s.log.Warn("emit glucose alert", zap.Uint("user_id", userID), zap.Error(err))
		}
		res.Alert = a
	}
	return res, nil
}

func alertType(flag bool, status string) string {
	if flag {
		return AlertCritical
	}
	switch status {
	case "low", "high", "critically_high":
		return AlertWarning
	}
	return ""
}

func glucoseAdvice(status string) []string {
	if r, ok := glucoseRecommendations[status]; ok {
		return r
	}
	return glucoseRecommendations["high"]
}

func glucoseMessage(status string, r int) string {
	switch status {
	case "critically_low":
		return fmt.Sprintf("⚠️ ALERT: Your glucose is critically low at %d mg/dL. Please consume fast-acting carbs immediately and contact your healthcare provider!", r)
	case "low":
		return fmt.Sprintf("📉 Your glucose is low at %d mg/dL. Consider having a small snack with carbs.", r)
	case "normal":
		return fmt.Sprintf("✅ Great! Your glucose is in normal range at %d mg/dL.", r)
	case "elevated":
		return fmt.Sprintf("📈 Your glucose is slightly elevated at %d mg/dL. This is manageable with proper meal planning.", r)
	case "high":
		return fmt.Sprintf("⚠️ Your glucose is high at %d mg/dL. Consider adjusting your next meal and increasing water intake.", r)
	default:
		return fmt.Sprintf("🚨 ALERT: Your glucose is critically high at %d mg/dL. Please contact your healthcare provider immediately!", r)
	}
}

// History returns the last seven days of readings, newest first.
func (s *CGMService) History(ctx context.Context, userID uint) ([]GlucoseEntry, error) {
	var rows []models.CGMReading
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, s.now().UTC().Add(-historyWindow)).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("load glucose history", err)
	}

	out := make([]GlucoseEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, GlucoseEntry{
			GlucoseReading: r.GlucoseReading,
			AlertFlag:      r.AlertFlag,
			Timestamp:      r.Timestamp,
			Status:         GlucoseStatus(r.GlucoseReading),
		})
	}
	return out, nil
}

func (s *CGMService) Summary(ctx context.Context, userID uint) (*GlucoseSummary, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeGlucoseStats(history)
	return &GlucoseSummary{Message: glucoseSummaryText(stats), CGMStats: stats, CGMHistory: history}, nil
}

// ComputeGlucoseStats expects history newest first.
func ComputeGlucoseStats(history []GlucoseEntry) GlucoseStats {
	if len(history) == 0 {
		return GlucoseStats{Trend: "stable"}
	}

	sum, inRange, alerts := 0, 0, 0
	for _, e := range history {
		sum += e.GlucoseReading
		if e.GlucoseReading >= rangeLow && e.GlucoseReading <= rangeHigh {
			inRange++
		}
		if e.AlertFlag {
			alerts++
		}
	}
	n := len(history)

	trend := "stable"
	if n >= 4 {
		mid := n / 2
		recent := avgReading(history[:mid])
		older := avgReading(history[mid:])
		switch {
		case recent > older+15:
			trend = "rising"
		case recent < older-15:
			trend = "falling"
		}
	}

	return GlucoseStats{
		AverageReading: utils.Round1(float64(sum) / float64(n)),
		TimeInRange:    utils.Round1(float64(inRange) / float64(n) * 100),
		TotalReadings:  n,
		Trend:          trend,
		Alerts:         alerts,
	}
}

func avgReading(entries []GlucoseEntry) float64 {
	sum := 0
	for _, e := range entries {
		sum += e.GlucoseReading
	}
	return float64(sum) / float64(len(entries))
}

func glucoseSummaryText(st GlucoseStats) string {
	if st.TotalReadings == 0 {
		return "No glucose readings recorded yet. Start monitoring to track your patterns!"
	}

	msg := fmt.Sprintf("📊 Your glucose summary over the last 7 days:\n\n"+
		"• Average reading: %.1f mg/dL\n"+
		"• Time in range (70-180): %.1f%%\n"+
		"• Trend: %s\n"+
		"• Total readings: %d\n"+
		"• Alerts: %d\n\n",
		st.AverageReading, st.TimeInRange, utils.Title(st.Trend), st.TotalReadings, st.Alerts)

	switch {
	case st.TimeInRange >= 80:
		msg += "🌟 Excellent glucose control! Keep it up!"
	case st.TimeInRange >= 70:
		msg += "👍 Good glucose management. Small improvements can make a big difference."
	default:
		msg += "💙 Your glucose control could benefit from some adjustments. Consider meal planning strategies."
	}
	return msg
}
