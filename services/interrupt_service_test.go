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

func TestClassifyQuestion(t *testing.T) {
	tests := map[string]string{
		"What is my health score?":        QuestionHealthScore,
		"how healthy am I":                QuestionHealthScore,
		"Why is fiber important?":         QuestionInformational,
		"Can you help me with this page?": QuestionAppHelp,
		"Tell me a joke":                  QuestionGeneral,
	}
	for q, want := range tests {
		assert.Equal(t, want, ClassifyQuestion(q), q)
	}
}

func TestAsk_EmptyQuery(t *testing.T) {
	svc := NewInterruptService(newTestDB(t), nil, "", nil, nopLog())
	_, err := svc.Ask(context.Background(), InterruptRequest{Query: "   "})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "missing_query", ve.Code)
	assert.Equal(t, true, ve.Extra["continue_flow"])
}

func TestAsk_ModelAnswerIsCached(t *testing.T) {
	llm := &fakeLLM{reply: "Fiber slows sugar absorption."}
	cache := NewLRUAnswerCache(8)
	svc := NewInterruptService(newTestDB(t), llm, "assistant-model", cache, nopLog())
	ctx := context.Background()

	res, err := svc.Ask(ctx, InterruptRequest{Query: "Why is fiber important?"})
	require.NoError(t, err)
	assert.Equal(t, "Fiber slows sugar absorption.", res.Message)
	assert.Equal(t, "llm", res.ResponseSource)
	assert.Equal(t, QuestionInformational, res.QuestionType)
	assert.Equal(t, defaultNavigation, res.NavigationSuggestion)
	assert.True(t, res.ContinueFlow)

	require.Equal(t, 1, llm.Calls())
	assert.Equal(t, "assistant-model", llm.opts[0].Model)
	assert.Equal(t, int32(500), llm.opts[0].MaxOutputTokens)
	require.NotNil(t, llm.opts[0].Temperature)
	assert.InDelta(t, 0.7, *llm.opts[0].Temperature, 1e-6)

	res, err = svc.Ask(ctx, InterruptRequest{
		Query:          "  WHY is fiber important?",
		CurrentContext: map[string]any{"screen": "meal planning"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fiber slows sugar absorption.", res.Message)
	assert.Equal(t, 1, llm.Calls(), "second ask is served from the cache")
	assert.Equal(t, "You can continue with meal planning or ask another question.", res.NavigationSuggestion)
}

func TestAsk_ModelFailureIsNotCached(t *testing.T) {
	llm := &fakeLLM{err: errors.New("unavailable")}
	cache := NewLRUAnswerCache(8)
	svc := NewInterruptService(newTestDB(t), llm, "", cache, nopLog())

	res, err := svc.Ask(context.Background(), InterruptRequest{Query: "tell me about sleep"})
	require.NoError(t, err)
	assert.Equal(t, apologyAnswer, res.Message)
	assert.Equal(t, "error", res.ResponseSource)
	assert.Zero(t, cache.Len())
}

func TestAsk_NoModel(t *testing.T) {
	svc := NewInterruptService(newTestDB(t), nil, "", nil, nopLog())
	res, err := svc.Ask(context.Background(), InterruptRequest{Query: "tell me about sleep"})
	require.NoError(t, err)
	assert.Equal(t, "error", res.ResponseSource)
}

func TestAsk_HealthScore(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, models.User{})
	now := time.Now().UTC()
	for _, m := range []string{"happy", "calm", "sad", "happy"} {
		require.NoError(t, db.Create(&models.MoodLog{UserID: u.ID, Mood: m, Timestamp: now}).Error)
	}
	for _, r := range []int{100, 120, 200, 150} {
		require.NoError(t, db.Create(&models.CGMReading{UserID: u.ID, GlucoseReading: r, Timestamp: now}).Error)
	}
	require.NoError(t, db.Create(&models.FoodLog{UserID: u.ID, MealDescription: "eggs and toast with spinach", Timestamp: now}).Error)
	require.NoError(t, db.Create(&models.MoodLog{UserID: u.ID, Mood: "angry", Timestamp: now.Add(-10 * 24 * time.Hour)}).Error)

	llm := &fakeLLM{reply: "unused"}
	svc := NewInterruptService(db, llm, "", nil, nopLog())

	hs, err := svc.HealthScore(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.5, hs.Mood)
	assert.Equal(t, 7.5, hs.Glucose)
	assert.Equal(t, 2.5, hs.Nutrition)
	assert.Equal(t, 6.0, hs.Overall)

	uid := u.ID
	res, err := svc.Ask(context.Background(), InterruptRequest{UserID: &uid, Query: "What's my health score?"})
	require.NoError(t, err)
	assert.Equal(t, "health_score_calculation", res.ResponseSource)
	assert.Contains(t, res.Message, "Overall Health Score: 6.0/10")
	assert.Contains(t, res.Message, "Fair health")
	assert.Contains(t, res.Message, "Great job maintaining a positive mood!")
	assert.Zero(t, llm.Calls())

	res, err = svc.Ask(context.Background(), InterruptRequest{Query: "what's my wellness score"})
	require.NoError(t, err)
	assert.Equal(t, "system", res.ResponseSource)
	assert.Contains(t, res.Message, "I need to know your user ID")
}

func TestComputeHealthScore_Defaults(t *testing.T) {
	hs := ComputeHealthScore(nil, nil, nil)
	assert.Equal(t, 5.0, hs.Overall)
	assert.Equal(t, "You could improve your mood by engaging in more positive activities.", hs.Recommendations[0])
	assert.Len(t, hs.Recommendations, 9)
}
