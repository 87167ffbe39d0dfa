package models

import "time"

type MoodLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Mood      string    `gorm:"size:32;not null" json:"mood"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
