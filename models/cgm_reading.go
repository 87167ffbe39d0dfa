package models

import "time"

type CGMReading struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	GlucoseReading int       `gorm:"not null" json:"glucose_reading"`
	AlertFlag      bool      `gorm:"default:false" json:"alert_flag"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}
