package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MealPlanController struct {
	Svc *services.MealPlanService
	log *zap.Logger
}

func NewMealPlanController(svc *services.MealPlanService, log *zap.Logger) *MealPlanController {
	return &MealPlanController{Svc: svc, log: log}
}

func (h *MealPlanController) Handle(c *gin.Context) {
	var req struct {
		userRequest
		SpecialRequirements string `json:"special_requirements"`
	}
	if !bindJSON(c, &req) || !requireUser(c, req.userRequest) {
		return
	}

	ctx := c.Request.Context()
	var (
		out any
		err error
	)
	switch req.Action {
	case "", "generate":
		out, err = h.Svc.Generate(ctx, req.id(), req.SpecialRequirements)
	case "get_latest":
		out, err = h.Svc.Latest(ctx, req.id())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": `Invalid action. Use "generate" or "get_latest".`, "error": "invalid_action"})
		return
	}
	if err != nil {
		respondError(c, h.log, err, "Meal planner")
		return
	}
	c.JSON(http.StatusOK, success(out))
}
