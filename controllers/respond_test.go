package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/stretchr/testify/assert"
)

func TestErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Code: "invalid_mood", Message: "bad"}, http.StatusBadRequest, "invalid_mood"},
		{"validation user", &services.ValidationError{Code: "user_not_found"}, http.StatusNotFound, "user_not_found"},
		{"plan context", &services.ValidationError{Code: "user_context_error"}, http.StatusNotFound, "user_context_error"},
		{"unknown user", fmt.Errorf("load: %w", services.ErrUserNotFound), http.StatusNotFound, "user_not_found"},
		{"no plan", services.ErrNoMealPlan, http.StatusNotFound, "no_plans_found"},
		{"storage", &services.StorageError{Op: "save mood", Err: errors.New("disk full")}, http.StatusInternalServerError, "database_error"},
		{"other", errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorBody(tt.err, "Mood tracker")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestErrorBody_DetailAndExtra(t *testing.T) {
	_, body := errorBody(&services.StorageError{Op: "save mood", Err: errors.New("disk full")}, "Mood tracker")
	assert.Equal(t, "Mood tracker error: save mood: disk full", body["detail"])

	_, body = errorBody(&services.ValidationError{Code: "missing_query", Extra: map[string]any{"continue_flow": true}}, "Interrupt")
	assert.Equal(t, true, body["continue_flow"])
}

func TestSuccessFlattens(t *testing.T) {
	body := success(struct {
		Message string `json:"message"`
		Count   int    `json:"count"`
	}{"hi", 2})
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "hi", body["message"])
	assert.Equal(t, float64(2), body["count"])
}
