package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	carbFoods    = []string{"rice", "bread", "pasta", "potato", "oats", "cereal", "fruit", "sugar"}
	proteinFoods = []string{"chicken", "beef", "fish", "egg", "tofu", "beans", "lentil", "protein"}
	fatFoods     = []string{"oil", "butter", "nuts", "cheese", "avocado", "fried"}
)

type NutritionEstimate struct {
	Carbs      float64 `json:"carbs"`
	Protein    float64 `json:"protein"`
	Fat        float64 `json:"fat"`
	Calories   float64 `json:"calories"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"` // "llm" | "keyword_estimate"
}

type FoodLogResult struct {
	Message           string            `json:"message"`
	MealDescription   string            `json:"meal_description"`
	NutritionAnalysis NutritionEstimate `json:"nutrition_analysis"`
	Recommendations   []string          `json:"recommendations"`
}

type FoodEntry struct {
	MealDescription string    `json:"meal_description"`
	Calories        float64   `json:"calories"`
	Carbs           float64   `json:"carbs"`
	Protein         float64   `json:"protein"`
	Fat             float64   `json:"fat"`
	Timestamp       time.Time `json:"timestamp"`
}

type MacroTotals struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

type NutritionStats struct {
	TotalEntries  int          `json:"total_entries"`
	DaysCovered   int          `json:"days_covered,omitempty"`
	DailyAverages MacroTotals  `json:"daily_averages"`
	Totals        *MacroTotals `json:"totals,omitempty"`
}

type NutritionSummary struct {
	Message        string         `json:"message"`
	NutritionStats NutritionStats `json:"nutrition_stats"`
	RecentMeals    []FoodEntry    `json:"recent_meals"`
}

type FoodService struct {
	db    *gorm.DB
	users *UserService
	llm   TextGenerator // nil falls back to keyword estimates
	log   *zap.Logger
	now   func() time.Time
}

func NewFoodService(db *gorm.DB, users *UserService, llm TextGenerator, log *zap.Logger) *FoodService {
	return &FoodService{db: db, users: users, llm: llm, log: log, now: time.Now}
}

func (s *FoodService) Log(ctx context.Context, userID uint, description string) (*FoodLogResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, invalid("missing_meal_description", "Please describe what you ate or drank")
	}
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}

	est := s.Analyze(ctx, description)
	row := models.FoodLog{
		UserID:            userID,
		MealDescription:   description,
		EstimatedCalories: est.Calories,
		EstimatedCarbs:    est.Carbs,
		EstimatedProtein:  est.Protein,
		EstimatedFat:      est.Fat,
		Timestamp:         s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storageErr("save food log", err)
	}

	return &FoodLogResult{
		Message:           foodLogText(description, est),
		MealDescription:   description,
		NutritionAnalysis: est,
		Recommendations:   NutritionRecommendations(est),
	}, nil
}

// Analyze asks the model for a macro estimate and falls back to keyword
// matching when the model is unavailable or answers with something else.
func (s *FoodService) Analyze(ctx context.Context, description string) NutritionEstimate {
	if s.llm == nil {
		return KeywordEstimate(description)
	}

	text, err := s.llm.Generate(ctx, nutritionPrompt(description), GenerateOptions{JSON: true})
	if err != nil {
		s.log.Warn("llm nutrition analysis failed", zap.Error(err))
		return KeywordEstimate(description)
	}
	est, err := ParseNutritionEstimate(text)
	if err != nil {
		s.log.Warn("unparsable nutrition estimate", zap.Error(err))
		return KeywordEstimate(description)
	}
	return est
}

func nutritionPrompt(description string) string {
	return fmt.Sprintf(`Analyze the following meal/food description and estimate the nutritional content.
Provide your response in JSON format with the following fields:
- carbs: estimated carbohydrates in grams
- protein: estimated protein in grams
- fat: estimated fat in grams
- calories: estimated total calories
- confidence: confidence level (1-10)

Meal description: %q

Please be realistic in your estimates. If the description is vague, make reasonable assumptions for a typical serving.
Return only the JSON response, no additional text.`, description)
}

// ParseNutritionEstimate reads the first JSON object in text. Missing or
// null macros are zero and confidence defaults to 5; a macro that is not a
// plain number ("45g") rejects the whole estimate.
func ParseNutritionEstimate(text string) (NutritionEstimate, error) {
	raw := utils.CleanLLMResponse(text)
	if raw == "" {
		return NutritionEstimate{}, fmt.Errorf("no JSON object in response")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return NutritionEstimate{}, fmt.Errorf("decode nutrition json: %w", err)
	}

	est := NutritionEstimate{Confidence: 5, Source: "llm"}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"carbs", &est.Carbs},
		{"protein", &est.Protein},
		{"fat", &est.Fat},
		{"calories", &est.Calories},
	} {
		v, present := m[f.key]
		if !present || v == nil {
			continue
		}
		n, ok := toFloat(v)
		if !ok {
			return NutritionEstimate{}, fmt.Errorf("%s is not a number: %v", f.key, v)
		}
		*f.dst = n
	}
	if c, ok := toFloat(m["confidence"]); ok {
		est.Confidence = c
	}
	return est, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func KeywordEstimate(description string) NutritionEstimate {
	d := strings.ToLower(description)
	carbs, protein, fat := 30.0, 15.0, 10.0
	for _, f := range carbFoods {
		if strings.Contains(d, f) {
			carbs += 20
		}
	}
	for _, f := range proteinFoods {
		if strings.Contains(d, f) {
			protein += 20
		}
	}
	for _, f := range fatFoods {
		if strings.Contains(d, f) {
			fat += 15
		}
	}
	return NutritionEstimate{
		Carbs:      carbs,
		Protein:    protein,
		Fat:        fat,
		Calories:   carbs*4 + protein*4 + fat*9,
		Confidence: 5,
		Source:     "keyword_estimate",
	}
}

func NutritionRecommendations(n NutritionEstimate) []string {
	var recs []string
	switch {
	case n.Carbs > 60:
		recs = append(recs, "High carb content - consider pairing with protein for better blood sugar control")
	case n.Carbs < 15:
		recs = append(recs, "Low carb meal - great for blood sugar stability")
	}
	switch {
	case n.Protein > 25:
		recs = append(recs, "Excellent protein content - great for muscle health and satiety")
	case n.Protein < 10:
		recs = append(recs, "Consider adding more protein to help with satiety and blood sugar control")
	}
	switch {
	case n.Calories > 600:
		recs = append(recs, "This is a substantial meal - consider lighter options for your next eating occasion")
	case n.Calories < 200:
		recs = append(recs, "Light meal - you might want to have a healthy snack later if needed")
	}
	if len(recs) == 0 {
		recs = append(recs, "Balanced meal - keep up the good work!")
	}
	return recs
}

func foodLogText(description string, n NutritionEstimate) string {
	msg := fmt.Sprintf("✅ Logged: %s\n\n📊 Estimated nutrition:\n"+
		"• Calories: %.0f\n"+
		"• Carbs: %.1fg\n"+
		"• Protein: %.1fg\n"+
		"• Fat: %.1fg\n",
		description, n.Calories, n.Carbs, n.Protein, n.Fat)
	if n.Confidence < 6 {
		msg += "\n💡 Note: This is an estimate based on your description. For more accurate tracking, try to include portion sizes!"
	}
	return msg
}

// History returns the last seven days of meals, newest first.
func (s *FoodService) History(ctx context.Context, userID uint) ([]FoodEntry, error) {
	var rows []models.FoodLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ?", userID, s.now().UTC().Add(-historyWindow)).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("load food history", err)
	}

	out := make([]FoodEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, FoodEntry{
			MealDescription: r.MealDescription,
			Calories:        r.EstimatedCalories,
			Carbs:           r.EstimatedCarbs,
			Protein:         r.EstimatedProtein,
			Fat:             r.EstimatedFat,
			Timestamp:       r.Timestamp,
		})
	}
	return out, nil
}

func (s *FoodService) Summary(ctx context.Context, userID uint) (*NutritionSummary, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := ComputeNutritionStats(history)
	recent := history
	if len(recent) > 10 {
		recent = recent[:10]
	}
	return &NutritionSummary{Message: nutritionSummaryText(stats), NutritionStats: stats, RecentMeals: recent}, nil
}

// ComputeNutritionStats assumes roughly three meals a day when turning the
// entry count into covered days.
func ComputeNutritionStats(history []FoodEntry) NutritionStats {
	if len(history) == 0 {
		return NutritionStats{}
	}

	var t MacroTotals
	for _, e := range history {
		t.Calories += e.Calories
		t.Carbs += e.Carbs
		t.Protein += e.Protein
		t.Fat += e.Fat
	}
	days := max(1, len(history)/3)
	d := float64(days)

	return NutritionStats{
		TotalEntries: len(history),
		DaysCovered:  days,
		DailyAverages: MacroTotals{
			Calories: utils.Round1(t.Calories / d),
			Carbs:    utils.Round1(t.Carbs / d),
			Protein:  utils.Round1(t.Protein / d),
			Fat:      utils.Round1(t.Fat / d),
		},
		Totals: &MacroTotals{
			Calories: utils.Round1(t.Calories),
			Carbs:    utils.Round1(t.Carbs),
			Protein:  utils.Round1(t.Protein),
			Fat:      utils.Round1(t.Fat),
		},
	}
}

func nutritionSummaryText(st NutritionStats) string {
	if st.TotalEntries == 0 {
		return "No food entries logged yet. Start tracking to see your nutrition patterns!"
	}
	avg := st.DailyAverages

	msg := fmt.Sprintf("📊 Your nutrition summary over the last %d days:\n\n"+
		"• Daily average calories: %.0f\n"+
		"• Daily average carbs: %.1fg\n"+
		"• Daily average protein: %.1fg\n"+
		"• Daily average fat: %.1fg\n"+
		"• Total meals logged: %d\n\n",
		st.DaysCovered, avg.Calories, avg.Carbs, avg.Protein, avg.Fat, st.TotalEntries)

	if avg.Protein < 50 {
		msg += "💡 Consider increasing protein intake for better satiety and muscle health.\n"
	}
	switch {
	case avg.Calories > 2500:
		msg += "💡 Your calorie intake is quite high - consider portion control strategies.\n"
	case avg.Calories < 1200:
		msg += "💡 Your calorie intake might be too low - ensure you're eating enough for your needs.\n"
	default:
		msg += "✅ Your nutrition tracking shows good awareness of your eating patterns!\n"
	}
	return msg
}
