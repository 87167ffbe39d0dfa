// services/meal_plan_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const contextWindow = 3 * 24 * time.Hour

type MealPlanContext struct {
	FirstName           string   `json:"first_name"`
	DietaryPreference   string   `json:"dietary_preference"`
	MedicalConditions   []string `json:"medical_conditions"`
	PhysicalLimitations []string `json:"physical_limitations"`
	RecentMoods         []string `json:"recent_moods"`
	RecentCGMReadings   []int    `json:"recent_cgm_readings"`
	RecentMeals         []string `json:"recent_meals"`
}

type PlanUserContext struct {
	DietaryPreference string   `json:"dietary_preference"`
	MedicalConditions []string `json:"medical_conditions"`
}

type MealPlanResult struct {
	Message     string              `json:"message"`
	MealPlan    models.PlanDocument `json:"meal_plan"`
	UserContext PlanUserContext     `json:"user_context"`
	Source      string              `json:"source"` // "llm" | "fallback"
}

type LatestMealPlan struct {
	Message   string              `json:"message"`
	MealPlan  models.PlanDocument `json:"meal_plan"`
	CreatedAt string              `json:"created_at"`
}

type MealPlanService struct {
	db    *gorm.DB
	users *UserService
	llm   TextGenerator
	log   *zap.Logger
	now   func() time.Time
}

func NewMealPlanService(db *gorm.DB, users *UserService, llm TextGenerator, log *zap.Logger) *MealPlanService {
	return &MealPlanService{db: db, users: users, llm: llm, log: log, now: time.Now}
}

func (s *MealPlanService) Generate(ctx context.Context, userID uint, special string) (*MealPlanResult, error) {
	uc, err := s.UserContext(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, &ValidationError{Code: "user_context_error", Message: "Unable to retrieve user information for meal planning"}
	}
	if err != nil {
		return nil, err
	}

	plan, source := s.plan(ctx, uc, strings.TrimSpace(special))

	row := models.MealPlan{UserID: userID, PlanData: datatypes.NewJSONType(plan)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, storageErr("save meal plan", err)
	}

	return &MealPlanResult{
		Message:  mealPlanText(uc.FirstName, &plan),
		MealPlan: plan,
		UserContext: PlanUserContext{
			DietaryPreference: uc.DietaryPreference,
			MedicalConditions: uc.MedicalConditions,
		},
		Source: source,
	}, nil
}

func (s *MealPlanService) plan(ctx context.Context, uc *MealPlanContext, special string) (models.PlanDocument, string) {
	if s.llm == nil {
		return FallbackMealPlan(uc.DietaryPreference, uc.MedicalConditions), "fallback"
	}
	text, err := s.llm.Generate(ctx, mealPlanPrompt(uc, special), GenerateOptions{})
	if err != nil {
		s.log.Warn("llm meal plan failed, using fallback", zap.Error(err))
		return FallbackMealPlan(uc.DietaryPreference, uc.MedicalConditions), "fallback"
	}
	return ParseMealPlan(text), "llm"
}

// UserContext gathers the profile and the last three days of activity.
func (s *MealPlanService) UserContext(ctx context.Context, userID uint) (*MealPlanContext, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-contextWindow)
	db := s.db.WithContext(ctx)

	uc := &MealPlanContext{
		FirstName:           u.FirstName,
		DietaryPreference:   u.DietaryPreference,
		MedicalConditions:   nonNil(u.MedicalConditions),
		PhysicalLimitations: nonNil(u.PhysicalLimitations),
	}
	if err := db.Model(&models.MoodLog{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp DESC, id DESC").Limit(5).
		Pluck("mood", &uc.RecentMoods).Error; err != nil {
		return nil, storageErr("load recent moods", err)
	}
	if err := db.Model(&models.CGMReading{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp DESC, id DESC").Limit(10).
		Pluck("glucose_reading", &uc.RecentCGMReadings).Error; err != nil {
		return nil, storageErr("load recent readings", err)
	}
	if err := db.Model(&models.FoodLog{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Order("timestamp DESC, id DESC").Limit(10).
		Pluck("meal_description", &uc.RecentMeals).Error; err != nil {
		return nil, storageErr("load recent meals", err)
	}
	return uc, nil
}

func (s *MealPlanService) Latest(ctx context.Context, userID uint) (*LatestMealPlan, error) {
	var row models.MealPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoMealPlan
	}
	if err != nil {
		return nil, storageErr("load latest meal plan", err)
	}

	created := row.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	return &LatestMealPlan{
		Message:   fmt.Sprintf("Here's your latest meal plan from %s:", created),
		MealPlan:  row.PlanData.Data(),
		CreatedAt: created,
	}, nil
}

func mealPlanPrompt(uc *MealPlanContext, special string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a one-day personalized meal plan for %s with dietary preference %s and conditions %v.\n",
		uc.FirstName, uc.DietaryPreference, uc.MedicalConditions)
	if len(uc.PhysicalLimitations) > 0 {
		fmt.Fprintf(&b, "Physical limitations: %s.\n", strings.Join(uc.PhysicalLimitations, ", "))
	}
	if len(uc.RecentCGMReadings) > 0 {
		fmt.Fprintf(&b, "Recent glucose readings (mg/dL, newest first): %v.\n", uc.RecentCGMReadings)
	}
	if len(uc.RecentMoods) > 0 {
		fmt.Fprintf(&b, "Recent moods: %s.\n", strings.Join(uc.RecentMoods, ", "))
	}
	if len(uc.RecentMeals) > 0 {
		fmt.Fprintf(&b, "Recently eaten: %s.\n", strings.Join(uc.RecentMeals, "; "))
	}
	b.WriteString("Meals: breakfast, lunch, dinner. Include nutrition (calories, carbs, protein, fat, fiber).\n\n")
	b.WriteString("IMPORTANT: Please provide your response in this EXACT format:\n\n")
	for _, meal := range []string{"Breakfast", "Lunch", "Dinner"} {
		fmt.Fprintf(&b, "%s: [Meal name]\n", meal)
		b.WriteString("[Brief description]\n")
		b.WriteString("Ingredients: [ingredient1], [ingredient2], [ingredient3]\n")
		b.WriteString("Nutrition: [calories] calories, [carbs]g carbs, [protein]g protein, [fat]g fat, [fiber]g fiber\n")
		b.WriteString("Benefits: [benefit1], [benefit2]\n\n")
	}
	b.WriteString("Make sure to provide real numeric values for all nutrition information.\n")
	if special != "" {
		fmt.Fprintf(&b, "\nSpecial requirements: %s", special)
	}
	return b.String()
}

// FallbackMealPlan is served when the model is unavailable.
func FallbackMealPlan(dietaryPref string, conditions []string) models.PlanDocument {
	var breakfast, lunch, dinner *models.PlannedMeal

	if dietaryPref == "vegetarian" || dietaryPref == "vegan" {
		breakfast = &models.PlannedMeal{
			Name:               "Overnight Oats with Berries",
			Description:        "Steel-cut oats soaked with almond milk, topped with blueberries and walnuts",
			Ingredients:        []string{"steel-cut oats", "unsweetened almond milk", "blueberries", "walnuts", "cinnamon"},
			EstimatedNutrition: models.Nutrition{Calories: 320, Carbs: 45, Protein: 12, Fat: 12, Fiber: 8},
			HealthBenefits:     []string{"High fiber", "Antioxidants", "Heart-healthy fats"},
		}
		lunch = &models.PlannedMeal{
			Name:               "Quinoa Buddha Bowl",
			Description:        "Quinoa with roasted vegetables, chickpeas, and tahini dressing",
			Ingredients:        []string{"quinoa", "roasted bell peppers", "chickpeas", "spinach", "tahini", "lemon"},
			EstimatedNutrition: models.Nutrition{Calories: 480, Carbs: 65, Protein: 18, Fat: 16, Fiber: 12},
			HealthBenefits:     []string{"Complete protein", "High fiber", "Plant-based nutrition"},
		}
		dinner = &models.PlannedMeal{
			Name:               "Lentil and Vegetable Curry",
			Description:        "Red lentil curry with mixed vegetables served with brown rice",
			Ingredients:        []string{"red lentils", "mixed vegetables", "coconut milk", "brown rice", "turmeric", "ginger"},
			EstimatedNutrition: models.Nutrition{Calories: 420, Carbs: 58, Protein: 16, Fat: 14, Fiber: 15},
			HealthBenefits:     []string{"Plant protein", "Anti-inflammatory spices", "Complex carbohydrates"},
		}
	} else {
		protein, display, title := "grilled chicken", "Grilled Chicken", "Chicken"
		for _, c := range conditions {
			if c == "Type 2 Diabetes" {
				protein, display, title = "lean fish", "Lean Fish", "Fish"
			}
		}
		breakfast = &models.PlannedMeal{
			Name:               "Veggie Scramble",
			Description:        "Scrambled eggs with spinach, tomatoes, and herbs",
			Ingredients:        []string{"eggs", "spinach", "cherry tomatoes", "bell pepper", "herbs", "olive oil"},
			EstimatedNutrition: models.Nutrition{Calories: 280, Carbs: 8, Protein: 18, Fat: 20, Fiber: 3},
			HealthBenefits:     []string{"High protein", "Low carb", "Nutrient-dense vegetables"},
		}
		lunch = &models.PlannedMeal{
			Name:               "Grilled " + title + " Salad",
			Description:        display + " with mixed greens, avocado, and olive oil dressing",
			Ingredients:        []string{protein, "mixed greens", "avocado", "cucumber", "olive oil", "lemon"},
			EstimatedNutrition: models.Nutrition{Calories: 420, Carbs: 12, Protein: 35, Fat: 28, Fiber: 8},
			HealthBenefits:     []string{"Lean protein", "Healthy fats", "Low glycemic"},
		}
		dinner = &models.PlannedMeal{
			Name:               "Baked Salmon with Roasted Vegetables",
			Description:        "Herb-crusted salmon with roasted broccoli and sweet potato",
			Ingredients:        []string{"salmon fillet", "broccoli", "sweet potato", "herbs", "olive oil"},
			EstimatedNutrition: models.Nutrition{Calories: 450, Carbs: 25, Protein: 32, Fat: 24, Fiber: 6},
			HealthBenefits:     []string{"Omega-3 fatty acids", "High protein", "Complex carbohydrates"},
		}
	}

	plan := models.PlanDocument{
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
		SpecialNotes: []string{
			"Drink plenty of water throughout the day",
			"Consider spacing meals 3-4 hours apart",
			"Adjust portions based on your individual needs",
		},
	}
	plan.DailyTotals = sumPlan(&plan)
	return plan
}

func mealPlanText(firstName string, plan *models.PlanDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ Here's your personalized meal plan, %s!\n\n", firstName)

	emojis := map[string]string{"breakfast": "🌅", "lunch": "☀️", "dinner": "🌙"}
	meals := map[string]*models.PlannedMeal{"breakfast": plan.Breakfast, "lunch": plan.Lunch, "dinner": plan.Dinner}
	for _, t := range mealTypes {
		m := meals[t]
		if m == nil {
			m = &models.PlannedMeal{Name: "Not specified"}
		}
		n := m.EstimatedNutrition
		fmt.Fprintf(&b, "%s **%s**: %s\n", emojis[t], utils.Title(t), m.Name)
		fmt.Fprintf(&b, "   %s\n", m.Description)
		fmt.Fprintf(&b, "   📊 %.0f cal | %.0fg carbs | %.0fg protein\n\n", n.Calories, n.Carbs, n.Protein)
	}

	t := plan.DailyTotals
	fmt.Fprintf(&b, "📈 **Daily Totals**: %.0f calories, %.0fg carbs, %.0fg protein\n\n", t.Calories, t.Carbs, t.Protein)

	if len(plan.SpecialNotes) > 0 {
		b.WriteString("💡 **Special Notes**:\n")
		for _, note := range plan.SpecialNotes {
			fmt.Fprintf(&b, "• %s\n", note)
		}
	}
	return b.String()
}
