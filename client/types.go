package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Number decodes JSON numbers, numeric strings and null; models sometimes
// hand back "45g" style values inside stored meal plans.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "gkcalKCAL "))
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Raw holds the response body exactly as the server sent it.
type Raw struct{ body json.RawMessage }

func (r *Raw) setRaw(b []byte) { r.body = append(json.RawMessage(nil), b...) }

// RawJSON is nil for values that were not decoded from a response.
func (r *Raw) RawJSON() json.RawMessage { return r.body }

// Envelope is shared by every feature response.
type Envelope struct {
	Raw `json:"-"`

	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type UserInfo struct {
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	City                string   `json:"city"`
	DietaryPreference   string   `json:"dietary_preference"`
	MedicalConditions   []string `json:"medical_conditions"`
	PhysicalLimitations []string `json:"physical_limitations"`
}

type GreetResponse struct {
	Envelope
	Action       string   `json:"action"`
	UserInfo     UserInfo `json:"user_info"`
	SessionToken string   `json:"session_token,omitempty"`
}

type MoodEntry struct {
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
}

type MoodStats struct {
	AverageScore float64 `json:"average_score"`
	Trend        string  `json:"trend"`
	DominantMood string  `json:"dominant_mood"`
	TotalEntries int     `json:"total_entries"`
}

type MoodResponse struct {
	Envelope
	LoggedMood     string      `json:"logged_mood,omitempty"`
	MoodStats      MoodStats   `json:"mood_stats"`
	MoodHistory    []MoodEntry `json:"mood_history"`
	AvailableMoods []string    `json:"available_moods,omitempty"`
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
	Trend          string  `json:"trend"`
	Alerts         int     `json:"alerts"`
}

type GlucoseResponse struct {
	Envelope
	GlucoseReading  int            `json:"glucose_reading,omitempty"`
	Status          string         `json:"status,omitempty"`
	AlertFlag       bool           `json:"alert_flag,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	CGMStats        GlucoseStats   `json:"cgm_stats"`
	CGMHistory      []GlucoseEntry `json:"cgm_history"`
}

type NutritionEstimate struct {
	Carbs      Number `json:"carbs"`
	Protein    Number `json:"protein"`
	Fat        Number `json:"fat"`
	Calories   Number `json:"calories"`
	Confidence Number `json:"confidence"`
	Source     string `json:"source"`
}

type MacroTotals struct {
	Calories Number `json:"calories"`
	Carbs    Number `json:"carbs"`
	Protein  Number `json:"protein"`
	Fat      Number `json:"fat"`
}

type NutritionStats struct {
	TotalEntries  int         `json:"total_entries"`
	DaysCovered   int         `json:"days_covered"`
	DailyAverages MacroTotals `json:"daily_averages"`
	Totals        MacroTotals `json:"totals"`
}

type FoodEntry struct {
	MealDescription string    `json:"meal_description"`
	Calories        Number    `json:"calories"`
	Carbs           Number    `json:"carbs"`
	Protein         Number    `json:"protein"`
	Fat             Number    `json:"fat"`
	Timestamp       time.Time `json:"timestamp"`
}

type FoodResponse struct {
	Envelope
	MealDescription   string            `json:"meal_description,omitempty"`
	NutritionAnalysis NutritionEstimate `json:"nutrition_analysis"`
	Recommendations   []string          `json:"recommendations,omitempty"`
	NutritionStats    NutritionStats    `json:"nutrition_stats"`
	RecentMeals       []FoodEntry       `json:"recent_meals"`
}

type Nutrition struct {
	Calories Number `json:"calories"`
	Carbs    Number `json:"carbs"`
	Protein  Number `json:"protein"`
	Fat      Number `json:"fat"`
	Fiber    Number `json:"fiber"`
}

type Meal struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Ingredients        []string  `json:"ingredients"`
	EstimatedNutrition Nutrition `json:"estimated_nutrition"`
	HealthBenefits     []string  `json:"health_benefits"`
}

// MealPlan tolerates partial plans: absent meals decode as zero values.
type MealPlan struct {
	Breakfast    Meal      `json:"breakfast"`
	Lunch        Meal      `json:"lunch"`
	Dinner       Meal      `json:"dinner"`
	DailyTotals  Nutrition `json:"daily_totals"`
	SpecialNotes []string  `json:"special_notes"`
}

type PlanUserContext struct {
	DietaryPreference string   `json:"dietary_preference"`
	MedicalConditions []string `json:"medical_conditions"`
}

type MealPlanResponse struct {
	Envelope
	MealPlan    MealPlan        `json:"meal_plan"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UserContext PlanUserContext `json:"user_context"`
	Source      string          `json:"source,omitempty"`
}

type AskResponse struct {
	Envelope
	QuestionType         string `json:"question_type"`
	ResponseSource       string `json:"response_source"`
	NavigationSuggestion string `json:"navigation_suggestion"`
	ContinueFlow         bool   `json:"continue_flow"`
}

type SummaryResponse struct {
	Raw `json:"-"`

	Success          bool             `json:"success"`
	MoodSummary      MoodResponse     `json:"mood_summary"`
	CGMSummary       GlucoseResponse  `json:"cgm_summary"`
	NutritionSummary FoodResponse     `json:"nutrition_summary"`
	LatestMealPlan   MealPlanResponse `json:"latest_meal_plan"`
}

type MoodsResponse struct {
	Raw `json:"-"`

	Moods      []string       `json:"moods"`
	MoodValues map[string]int `json:"mood_values"`
}

type Alert struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	GlucoseReading int       `json:"glucose_reading"`
	CreatedAt      time.Time `json:"created_at"`
}

type AlertsResponse struct {
	Raw `json:"-"`

	Success bool    `json:"success"`
	Alerts  []Alert `json:"alerts"`
}
