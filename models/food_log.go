package models

import "time"

// A free-text meal entry with the macro estimate taken when it was logged.
type FoodLog struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	MealDescription   string    `gorm:"type:text;not null" json:"meal_description"`
	EstimatedCalories float64   `json:"estimated_calories"`
	EstimatedCarbs    float64   `json:"estimated_carbs"`
	EstimatedProtein  float64   `json:"estimated_protein"`
	EstimatedFat      float64   `json:"estimated_fat"`
	Timestamp         time.Time `gorm:"index" json:"timestamp"`
}
