package controllers

import (
	"net/http"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InterruptController struct {
	Svc *services.InterruptService
	log *zap.Logger
}

func NewInterruptController(svc *services.InterruptService, log *zap.Logger) *InterruptController {
	return &InterruptController{Svc: svc, log: log}
}

func (h *InterruptController) Ask(c *gin.Context) {
	var req struct {
		UserID         *uint          `json:"user_id"`
		Query          string         `json:"query"`
		CurrentContext map[string]any `json:"current_context"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Svc.Ask(c.Request.Context(), services.InterruptRequest{
		UserID:         req.UserID,
		Query:          req.Query,
		CurrentContext: req.CurrentContext,
	})
	if err != nil {
		respondError(c, h.log, err, "Interrupt")
		return
	}
	c.JSON(http.StatusOK, success(res))
}
