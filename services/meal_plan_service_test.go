package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newMealPlanService(t *testing.T, llm TextGenerator) (*MealPlanService, *gorm.DB, *models.User) {
	db := newTestDB(t)
	u := seedUser(t, db, models.User{
		FirstName:           "Ravi",
		DietaryPreference:   "non-vegetarian",
		MedicalConditions:   datatypes.JSONSlice[string]{"Type 2 Diabetes"},
		PhysicalLimitations: datatypes.JSONSlice[string]{"knee pain"},
	})
	svc := NewMealPlanService(db, NewUserService(db), llm, nopLog())
	return svc, db, u
}

func TestMealPlanGenerate_Fallback(t *testing.T) {
	svc, _, u := newMealPlanService(t, nil)
	ctx := context.Background()

	res, err := svc.Generate(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Source)
	assert.Equal(t, "Grilled Fish Salad", res.MealPlan.Lunch.Name)
	assert.Equal(t, PlanUserContext{DietaryPreference: "non-vegetarian", MedicalConditions: []string{"Type 2 Diabetes"}}, res.UserContext)
	assert.Contains(t, res.Message, "Here's your personalized meal plan, Ravi!")
	assert.Contains(t, res.Message, "**Lunch**: Grilled Fish Salad")

	latest, err := svc.Latest(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, res.MealPlan.DailyTotals, latest.MealPlan.DailyTotals)
	assert.Equal(t, "Grilled Fish Salad", latest.MealPlan.Lunch.Name)
	assert.Contains(t, latest.Message, latest.CreatedAt)
}

func TestMealPlanGenerate_ModelPromptAndParse(t *testing.T) {
	llm := &fakeLLM{reply: formattedPlan}
	svc, db, u := newMealPlanService(t, llm)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.MoodLog{UserID: u.ID, Mood: "tired", Timestamp: now}).Error)
	require.NoError(t, db.Create(&models.CGMReading{UserID: u.ID, GlucoseReading: 190, Timestamp: now}).Error)
	require.NoError(t, db.Create(&models.FoodLog{UserID: u.ID, MealDescription: "pancakes", Timestamp: now}).Error)
	require.NoError(t, db.Create(&models.FoodLog{UserID: u.ID, MealDescription: "old soup", Timestamp: now.Add(-5 * 24 * time.Hour)}).Error)

	res, err := svc.Generate(ctx, u.ID, "no dairy")
	require.NoError(t, err)
	assert.Equal(t, "llm", res.Source)
	assert.Equal(t, "Baked Cod", res.MealPlan.Dinner.Name)

	require.Equal(t, 1, llm.Calls())
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "for Ravi with dietary preference non-vegetarian")
	assert.Contains(t, prompt, "Physical limitations: knee pain.")
	assert.Contains(t, prompt, "Recent glucose readings (mg/dL, newest first): [190].")
	assert.Contains(t, prompt, "Recent moods: tired.")
	assert.Contains(t, prompt, "Recently eaten: pancakes.")
	assert.NotContains(t, prompt, "old soup")
	assert.Contains(t, prompt, "IMPORTANT: Please provide your response in this EXACT format")
	assert.Contains(t, prompt, "Special requirements: no dairy")
}

func TestMealPlanGenerate_ModelErrorFallsBack(t *testing.T) {
	svc, _, u := newMealPlanService(t, &fakeLLM{err: errors.New("quota")})
	res, err := svc.Generate(context.Background(), u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Source)
}

func TestMealPlanGenerate_UnknownUser(t *testing.T) {
	svc, _, _ := newMealPlanService(t, nil)
	_, err := svc.Generate(context.Background(), 404, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "user_context_error", ve.Code)
}

func TestMealPlanLatest_PicksNewest(t *testing.T) {
	svc, db, u := newMealPlanService(t, nil)
	ctx := context.Background()

	_, err := svc.Latest(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNoMealPlan)

	older := models.PlanDocument{SpecialNotes: []string{"first"}}
	newer := models.PlanDocument{SpecialNotes: []string{"second"}}
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.MealPlan{UserID: u.ID, PlanData: datatypes.NewJSONType(newer), CreatedAt: base.Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.MealPlan{UserID: u.ID, PlanData: datatypes.NewJSONType(older), CreatedAt: base}).Error)

	latest, err := svc.Latest(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, latest.MealPlan.SpecialNotes)
	assert.Equal(t, "2025-01-01 10:00:00", latest.CreatedAt)
	assert.Equal(t, "Here's your latest meal plan from 2025-01-01 10:00:00:", latest.Message)
}
