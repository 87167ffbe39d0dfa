package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFoodService(t *testing.T, llm TextGenerator) (*FoodService, uint) {
	db := newTestDB(t)
	u := seedUser(t, db, models.User{})
	svc := NewFoodService(db, NewUserService(db), llm, nopLog())
	svc.now = newClock(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)).Now
	return svc, u.ID
}

func TestKeywordEstimate(t *testing.T) {
	est := KeywordEstimate("Fried chicken with rice")
	assert.Equal(t, 50.0, est.Carbs)
	assert.Equal(t, 35.0, est.Protein)
	assert.Equal(t, 25.0, est.Fat)
	assert.Equal(t, 50.0*4+35*4+25*9, est.Calories)
	assert.Equal(t, "keyword_estimate", est.Source)

	base := KeywordEstimate("a glass of water")
	assert.Equal(t, NutritionEstimate{Carbs: 30, Protein: 15, Fat: 10, Calories: 270, Confidence: 5, Source: "keyword_estimate"}, base)
}

func TestParseNutritionEstimate(t *testing.T) {
	est, err := ParseNutritionEstimate("```json\n{\"carbs\": 45, \"protein\": \"20\", \"fat\": null, \"calories\": 400}\n```")
	require.NoError(t, err)
	assert.Equal(t, NutritionEstimate{Carbs: 45, Protein: 20, Calories: 400, Confidence: 5, Source: "llm"}, est)

	est, err = ParseNutritionEstimate(`{"carbs": 1, "confidence": 9}`)
	require.NoError(t, err)
	assert.Equal(t, 9.0, est.Confidence)

	_, err = ParseNutritionEstimate("I cannot estimate that")
	assert.Error(t, err)

	_, err = ParseNutritionEstimate(`{"carbs": "45g", "protein": "20 g", "fat": 10, "calories": "350 kcal", "confidence": 7}`)
	assert.Error(t, err, "unit suffixes are not numbers")
}

func TestFoodLog_UnitSuffixedMacrosFallBackToKeywords(t *testing.T) {
	llm := &fakeLLM{reply: `{"carbs": "45g", "protein": "20 g", "fat": 10, "calories": "350 kcal", "confidence": 7}`}
	svc, uid := newFoodService(t, llm)

	res, err := svc.Log(context.Background(), uid, "rice and chicken")
	require.NoError(t, err)
	assert.Equal(t, KeywordEstimate("rice and chicken"), res.NutritionAnalysis)
	assert.Contains(t, res.Message, "This is an estimate")

	var row models.FoodLog
	require.NoError(t, svc.db.First(&row).Error)
	assert.Equal(t, res.NutritionAnalysis.Calories, row.EstimatedCalories)
}

func TestFoodLog_UsesModelEstimate(t *testing.T) {
	llm := &fakeLLM{reply: `{"carbs": 70, "protein": 30, "fat": 12, "calories": 650, "confidence": 8}`}
	svc, uid := newFoodService(t, llm)

	res, err := svc.Log(context.Background(), uid, "  big pasta bowl with chicken ")
	require.NoError(t, err)
	assert.Equal(t, "big pasta bowl with chicken", res.MealDescription)
	assert.Equal(t, "llm", res.NutritionAnalysis.Source)
	assert.Equal(t, 650.0, res.NutritionAnalysis.Calories)
	assert.Equal(t, []string{
		"High carb content - consider pairing with protein for better blood sugar control",
		"Excellent protein content - great for muscle health and satiety",
		"This is a substantial meal - consider lighter options for your next eating occasion",
	}, res.Recommendations)
	assert.NotContains(t, res.Message, "This is an estimate", "confident estimates skip the portion hint")

	require.Equal(t, 1, llm.Calls())
	assert.True(t, llm.opts[0].JSON)
	assert.Contains(t, llm.prompts[0], `"big pasta bowl with chicken"`)
}

func TestFoodLog_FallsBackToKeywords(t *testing.T) {
	for name, llm := range map[string]TextGenerator{
		"disabled":    nil,
		"model error": &fakeLLM{err: errors.New("503")},
		"not json":    &fakeLLM{reply: "roughly 300 calories"},
	} {
		t.Run(name, func(t *testing.T) {
			svc, uid := newFoodService(t, llm)
			res, err := svc.Log(context.Background(), uid, "oats with nuts")
			require.NoError(t, err)
			assert.Equal(t, "keyword_estimate", res.NutritionAnalysis.Source)
			assert.Contains(t, res.Message, "include portion sizes")
		})
	}
}

func TestFoodLog_Validation(t *testing.T) {
	svc, uid := newFoodService(t, nil)
	_, err := svc.Log(context.Background(), uid, " ")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "missing_meal_description", ve.Code)

	_, err = svc.Log(context.Background(), uid+5, "toast")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNutritionRecommendations_Balanced(t *testing.T) {
	recs := NutritionRecommendations(NutritionEstimate{Carbs: 30, Protein: 15, Calories: 400})
	assert.Equal(t, []string{"Balanced meal - keep up the good work!"}, recs)
}

func TestComputeNutritionStats(t *testing.T) {
	assert.Equal(t, NutritionStats{}, ComputeNutritionStats(nil))

	history := []FoodEntry{
		{Calories: 500, Carbs: 60, Protein: 20, Fat: 15},
		{Calories: 300, Carbs: 30, Protein: 10, Fat: 10},
		{Calories: 700, Carbs: 90, Protein: 40, Fat: 20},
		{Calories: 100, Carbs: 10, Protein: 5, Fat: 5},
	}
	st := ComputeNutritionStats(history)
	assert.Equal(t, 4, st.TotalEntries)
	assert.Equal(t, 1, st.DaysCovered)
	assert.Equal(t, MacroTotals{Calories: 1600, Carbs: 190, Protein: 75, Fat: 50}, st.DailyAverages)
	require.NotNil(t, st.Totals)
	assert.Equal(t, 1600.0, st.Totals.Calories)

	six := append(append([]FoodEntry{}, history...), history[:2]...)
	st = ComputeNutritionStats(six)
	assert.Equal(t, 2, st.DaysCovered)
	assert.Equal(t, 1200.0, st.DailyAverages.Calories)
}

func TestFoodSummary_RecentMealsCapped(t *testing.T) {
	svc, uid := newFoodService(t, nil)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.Log(ctx, uid, "toast")
		require.NoError(t, err)
	}
	sum, err := svc.Summary(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, sum.RecentMeals, 10)
	assert.Equal(t, 12, sum.NutritionStats.TotalEntries)
	assert.Equal(t, 4, sum.NutritionStats.DaysCovered)
}
