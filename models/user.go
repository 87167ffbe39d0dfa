package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	FirstName           string                      `gorm:"size:100;not null" json:"first_name"`
	LastName            string                      `gorm:"size:100;not null" json:"last_name"`
	City                string                      `gorm:"size:100" json:"city"`
	DietaryPreference   string                      `gorm:"size:32" json:"dietary_preference"` // "vegetarian" | "non-vegetarian" | "vegan"
	MedicalConditions   datatypes.JSONSlice[string] `json:"medical_conditions"`
	PhysicalLimitations datatypes.JSONSlice[string] `json:"physical_limitations"`
	BaselineGlucoseMin  *int                        `json:"baseline_glucose_min,omitempty"`
	BaselineGlucoseMax  *int                        `json:"baseline_glucose_max,omitempty"`
	CreatedAt           time.Time                   `json:"created_at"`
}

// HasCondition matches medical conditions case-insensitively.
func (u *User) HasCondition(name string) bool {
	for _, c := range u.MedicalConditions {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return true
		}
	}
	return false
}

// GlucoseBaseline falls back to 80..180 when the profile has no range.
func (u *User) GlucoseBaseline() (int, int) {
	lo, hi := 80, 180
	if u.BaselineGlucoseMin != nil {
		lo = *u.BaselineGlucoseMin
	}
	if u.BaselineGlucoseMax != nil {
		hi = *u.BaselineGlucoseMax
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}
