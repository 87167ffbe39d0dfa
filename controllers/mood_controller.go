package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MoodController struct {
	Svc *services.MoodService
	log *zap.Logger
}

func NewMoodController(svc *services.MoodService, log *zap.Logger) *MoodController {
	return &MoodController{Svc: svc, log: log}
}

func (h *MoodController) Handle(c *gin.Context) {
	var req struct {
		userRequest
		Mood string `json:"mood"`
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
		out, err = h.Svc.Log(ctx, req.id(), req.Mood)
	case "get_stats":
		out, err = h.Svc.Summary(ctx, req.id())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": `Invalid action. Use "log" or "get_stats".`, "error": "invalid_action"})
		return
	}
	if err != nil {
		respondError(c, h.log, err, "Mood tracker")
		return
	}
	c.JSON(http.StatusOK, success(out))
}

func (h *MoodController) AvailableMoods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"moods": services.AvailableMoods, "mood_values": services.MoodValues})
}
