package controllers

import (
	"net/http"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/services"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GreetingController struct {
	Svc        *services.GreetingService
	secret     string
	sessionTTL time.Duration
	log        *zap.Logger
}

func NewGreetingController(svc *services.GreetingService, secret string, sessionTTL time.Duration, log *zap.Logger) *GreetingController {
	return &GreetingController{Svc: svc, secret: secret, sessionTTL: sessionTTL, log: log}
}

func (h *GreetingController) Greet(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}

	g, err := h.Svc.Greet(c.Request.Context(), req.id())
	if err != nil {
		respondError(c, h.log, err, "Greeting")
		return
	}

	body := success(g)
	token, err := utils.GenerateSessionToken(h.secret, g.UserID, h.sessionTTL)
	if err != nil {
		// greeting still works without realtime alerts
		h.log.Warn("issue session token", zap.Uint("user_id", g.UserID), zap.Error(err))
	} else {
		body["session_token"] = token
	}
	c.JSON(http.StatusOK, body)
}
