package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userRequest is the part every feature request shares.
type userRequest struct {
	UserID *uint  `json:"user_id"`
	Action string `json:"action"`
}

func (r userRequest) id() uint {
	if r.UserID == nil {
		return 0
	}
	return *r.UserID
}

// success flattens a service result into the JSON envelope.
func success(v any) gin.H {
	h := gin.H{}
	if b, err := json.Marshal(v); err == nil {
		_ = json.Unmarshal(b, &h)
	}
	h["success"] = true
	return h
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Invalid request body",
			"error":   "invalid_request",
			"detail":  err.Error(),
		})
		return false
	}
	return true
}

func requireUser(c *gin.Context, r userRequest) bool {
	if r.id() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User ID is required", "error": "missing_user_id"})
		return false
	}
	return true
}

func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "User ID must be a positive integer", "error": "invalid_request"})
		return 0, false
	}
	return uint(id), true
}

func errorBody(err error, agent string) (int, gin.H) {
	var ve *services.ValidationError
	var se *services.StorageError
	switch {
	case errors.As(err, &ve):
		body := gin.H{"success": false, "message": ve.Message, "error": ve.Code}
		for k, v := range ve.Extra {
			body[k] = v
		}
		status := http.StatusBadRequest
		if ve.Code == "user_not_found" || ve.Code == "user_context_error" {
			status = http.StatusNotFound
		}
		return status, body
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, gin.H{"success": false, "message": "User not found. Please enter a valid user ID (1-100).", "error": "user_not_found"}
	case errors.Is(err, services.ErrNoMealPlan):
		return http.StatusNotFound, gin.H{"success": false, "message": "No meal plans found. Generate your first meal plan!", "error": "no_plans_found"}
	case errors.As(err, &se):
		return http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Something went wrong while saving or loading your data. Please try again.",
			"error":   "database_error",
			"detail":  agent + " error: " + se.Error(),
		}
	default:
		return http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Something went wrong. Please try again.",
			"error":   "internal_error",
			"detail":  agent + " error: " + err.Error(),
		}
	}
}

func respondError(c *gin.Context, log *zap.Logger, err error, agent string) {
	status, body := errorBody(err, agent)
	if status >= 500 {
		log.Error("request failed", zap.String("agent", agent), zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}
