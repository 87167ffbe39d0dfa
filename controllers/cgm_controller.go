package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CGMController struct {
	Svc *services.CGMService
	log *zap.Logger
}

func NewCGMController(svc *services.CGMService, log *zap.Logger) *CGMController {
	return &CGMController{Svc: svc, log: log}
}

func (h *CGMController) Handle(c *gin.Context) {
	var req struct {
		userRequest
		GlucoseReading *int `json:"glucose_reading"`
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
		out, err = h.Svc.Log(ctx, req.id(), req.GlucoseReading)
	case "generate":
		out, err = h.Svc.Generate(ctx, req.id())
	case "get_stats":
		out, err = h.Svc.Summary(ctx, req.id())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": `Invalid action. Use "log", "generate", or "get_stats".`, "error": "invalid_action"})
		return
	}
	if err != nil {
		respondError(c, h.log, err, "CGM")
		return
	}
	c.JSON(http.StatusOK, success(out))
}
