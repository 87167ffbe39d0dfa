package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SummaryController struct {
	Svc *services.SummaryService
	log *zap.Logger
}

func NewSummaryController(svc *services.SummaryService, log *zap.Logger) *SummaryController {
	return &SummaryController{Svc: svc, log: log}
}

func (h *SummaryController) UserSummary(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	s, err := h.Svc.Summary(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Summary")
		return
	}

	latest := gin.H{"success": false, "message": "No meal plans found. Generate your first meal plan!", "error": "no_plans_found"}
	if s.LatestPlan != nil {
		latest = success(s.LatestPlan)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"mood_summary":      success(s.Mood),
		"cgm_summary":       success(s.CGM),
		"nutrition_summary": success(s.Nutrition),
		"latest_meal_plan":  latest,
	})
}
