package models

import "time"

type Alert struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	Type           string    `gorm:"size:20" json:"type"` // "critical" | "warning"
	Message        string    `gorm:"type:text" json:"message"`
	GlucoseReading int       `json:"glucose_reading,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
