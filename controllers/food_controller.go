package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FoodController struct {
	Svc *services.FoodService
	log *zap.Logger
}

func NewFoodController(svc *services.FoodService, log *zap.Logger) *FoodController {
	return &FoodController{Svc: svc, log: log}
}

func (h *FoodController) Handle(c *gin.Context) {
	var req struct {
		userRequest
		MealDescription string `json:"meal_description"`
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
	case "", "log":
		out, err = h.Svc.Log(ctx, req.id(), req.MealDescription)
	case "get_stats":
		out, err = h.Svc.Summary(ctx, req.id())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": `Invalid action. Use "log" or "get_stats".`, "error": "invalid_action"})
		return
	}
	if err != nil {
		respondError(c, h.log, err, "Food intake")
		return
	}
	c.JSON(http.StatusOK, success(out))
}
