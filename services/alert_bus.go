package services

import (
	"context"
	"fmt"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
)

type AlertEvent struct {
	Kind  string        `json:"kind"`
	Alert *models.Alert `json:"alert"`
}

// AlertBus persists glucose alerts and pushes them to connected sockets.
type AlertBus struct {
	db  *gorm.DB
	rt  *RealtimeHub
	log *zap.Logger
}

func NewAlertBus(db *gorm.DB, rt *RealtimeHub, log *zap.Logger) *AlertBus {
	return &AlertBus{db: db, rt: rt, log: log}
}

func (b *AlertBus) Emit(ctx context.Context, userID uint, typ, message string, reading int) (*models.Alert, error) {
	a := &models.Alert{UserID: userID, Type: typ, Message: message, GlucoseReading: reading}
	if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, storageErr("save alert", err)
	}

	if b.rt != nil {
		b.rt.Broadcast(userID, AlertEvent{Kind: "alert.created", Alert: a})
	}
	b.log.Info("glucose alert emitted",
		zap.Uint("user_id", userID),
		zap.String("type", typ),
		zap.Int("reading", reading),
	)
	return a, nil
}

func (b *AlertBus) List(ctx context.Context, userID uint, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	var out []models.Alert
	if err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, storageErr(fmt.Sprintf("list alerts for user %d", userID), err)
	}
	return out, nil
}
