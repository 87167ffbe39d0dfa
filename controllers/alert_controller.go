// controllers/alert_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertController struct {
	Bus *services.AlertBus
	log *zap.Logger
}

func NewAlertController(bus *services.AlertBus, log *zap.Logger) *AlertController {
	return &AlertController{Bus: bus, log: log}
}

func (h *AlertController) List(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	alerts, err := h.Bus.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.log, err, "Alerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "alerts": alerts})
}
