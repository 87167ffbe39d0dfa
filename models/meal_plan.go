package models

import (
	"time"

	"gorm.io/datatypes"
)

type Nutrition struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

func (n Nutrition) Add(o Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + o.Calories,
		Carbs:    n.Carbs + o.Carbs,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
	}
}

func (n Nutrition) IsZero() bool { return n == Nutrition{} }

type PlannedMeal struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Ingredients        []string  `json:"ingredients"`
	EstimatedNutrition Nutrition `json:"estimated_nutrition"`
	HealthBenefits     []string  `json:"health_benefits"`
}

// PlanDocument is the stored and served shape of one day's plan.
type PlanDocument struct {
	Breakfast    *PlannedMeal `json:"breakfast,omitempty"`
	Lunch        *PlannedMeal `json:"lunch,omitempty"`
	Dinner       *PlannedMeal `json:"dinner,omitempty"`
	DailyTotals  Nutrition    `json:"daily_totals"`
	SpecialNotes []string     `json:"special_notes"`
}

type MealSlot struct {
	Type string // "breakfast" | "lunch" | "dinner"
	Meal *PlannedMeal
}

// Meals returns the populated meals in breakfast, lunch, dinner order.
func (p *PlanDocument) Meals() []MealSlot {
	var out []MealSlot
	for _, m := range []MealSlot{{"breakfast", p.Breakfast}, {"lunch", p.Lunch}, {"dinner", p.Dinner}} {
		if m.Meal != nil {
			out = append(out, m)
		}
	}
	return out
}

type MealPlan struct {
	ID        uint                             `gorm:"primaryKey" json:"id"`
	UserID    uint                             `gorm:"index;not null" json:"user_id"`
	PlanData  datatypes.JSONType[PlanDocument] `json:"plan_data"`
	CreatedAt time.Time                        `json:"created_at"`
}
