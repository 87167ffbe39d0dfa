package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"
)

var (
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	listSplitRe  = regexp.MustCompile(`[,;]`)
	afterColonRe = regexp.MustCompile(`:\s*(.+)`)

	caloriesRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*calories?`)
	carbsRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g?\s*carbs?`)
	proteinRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g?\s*protein`)
	fatRe      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g?\s*fat`)
	fiberRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g?\s*fiber`)
)

var mealTypes = []string{"breakfast", "lunch", "dinner"}

func aiPlanNotes() []string {
	return []string{
		"This meal plan was generated by AI and should be adjusted based on your individual needs",
		"Consider consulting with a nutritionist for personalized advice",
	}
}

// ParseMealPlan turns a model answer into a plan. It accepts a JSON plan,
// the "Breakfast: name" text layout requested in the prompt, or anything
// else; the last case degrades to a nutrition-only or raw-text plan.
func ParseMealPlan(text string) models.PlanDocument {
	if plan, ok := parseJSONPlan(text); ok {
		return plan
	}

	plan := models.PlanDocument{SpecialNotes: aiPlanNotes()}
	parsed := 0
	for _, section := range splitMealSections(text) {
		lines := nonEmptyLines(section)
		if len(lines) < 2 {
			continue
		}
		mealType := detectMealType(lines)
		if mealType == "" {
			continue
		}
		setMeal(&plan, mealType, parseMealSection(mealType, lines))
		parsed++
	}

	if parsed > 0 {
		plan.DailyTotals = sumPlan(&plan)
		return plan
	}

	if n := extractNutrition(text); !n.IsZero() {
		return nutritionOnlyPlan(n)
	}
	return rawTextPlan(text)
}

func parseJSONPlan(text string) (models.PlanDocument, bool) {
	raw := strings.TrimSpace(text)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "```"))
	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
		return models.PlanDocument{}, false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return models.PlanDocument{}, false
	}
	found := false
	for _, k := range mealTypes {
		if _, ok := keys[k]; ok {
			found = true
		}
	}
	if !found {
		return models.PlanDocument{}, false
	}

	var plan models.PlanDocument
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return models.PlanDocument{}, false
	}
	if plan.DailyTotals.IsZero() {
		plan.DailyTotals = sumPlan(&plan)
	}
	return plan, true
}

func splitMealSections(text string) []string {
	sections := blankLineRe.Split(strings.TrimSpace(text), -1)
	if len(sections) >= 3 {
		return sections
	}

	// too few paragraphs: start a new section at every line naming a meal
	sections = nil
	var cur []string
	for _, line := range nonEmptyLines(text) {
		lower := strings.ToLower(line)
		if containsAny(lower, mealTypes) && len(cur) > 0 {
			sections = append(sections, strings.Join(cur, "\n"))
			cur = nil
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		sections = append(sections, strings.Join(cur, "\n"))
	}
	return sections
}

func detectMealType(lines []string) string {
	first := strings.ToLower(lines[0])
	for _, t := range mealTypes {
		if strings.Contains(first, t) {
			return t
		}
	}
	all := strings.ToLower(strings.Join(lines, " "))
	for _, t := range mealTypes {
		if strings.Contains(all, t) {
			return t
		}
	}
	return ""
}

func parseMealSection(mealType string, lines []string) *models.PlannedMeal {
	label := utils.Title(mealType)

	name := "Meal"
	for _, line := range lines {
		if !strings.Contains(line, label) {
			continue
		}
		if strings.Contains(line, ":") {
			if m := afterColonRe.FindStringSubmatch(line); m != nil {
				name = cleanMarkup(m[1])
				break
			}
			continue
		}
		name = cleanMarkup(strings.ReplaceAll(line, label+":", ""))
		if name != "" {
			break
		}
	}

	description := ""
	for i, line := range lines {
		if strings.Contains(line, label) || (name != "" && strings.Contains(line, name)) {
			if i+1 < len(lines) {
				description = cleanMarkup(lines[i+1])
			}
			break
		}
	}

	meal := &models.PlannedMeal{
		Name:               name,
		Description:        description,
		Ingredients:        labelledList(lines, "Ingredients:"),
		EstimatedNutrition: extractNutrition(labelledValue(lines, "Nutrition:")),
		HealthBenefits:     labelledList(lines, "Benefits:"),
	}
	if meal.Name == "" {
		meal.Name = label + " Meal"
	}
	if meal.Description == "" {
		meal.Description = "A nutritious meal option"
	}
	if len(meal.Ingredients) == 0 {
		meal.Ingredients = []string{"Various ingredients"}
	}
	if len(meal.HealthBenefits) == 0 {
		meal.HealthBenefits = []string{"General health benefits"}
	}
	return meal
}

func labelledValue(lines []string, label string) string {
	for _, line := range lines {
		if strings.Contains(line, label) {
			if v := strings.TrimSpace(strings.ReplaceAll(line, label, "")); v != "" {
				return v
			}
		}
	}
	return ""
}

func labelledList(lines []string, label string) []string {
	v := labelledValue(lines, label)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range listSplitRe.Split(v, -1) {
		if item = cleanMarkup(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func extractNutrition(s string) models.Nutrition {
	return models.Nutrition{
		Calories: firstNumber(caloriesRe, s),
		Carbs:    firstNumber(carbsRe, s),
		Protein:  firstNumber(proteinRe, s),
		Fat:      firstNumber(fatRe, s),
		Fiber:    firstNumber(fiberRe, s),
	}
}

func firstNumber(re *regexp.Regexp, s string) float64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	return v
}

func setMeal(plan *models.PlanDocument, mealType string, meal *models.PlannedMeal) {
	switch mealType {
	case "breakfast":
		plan.Breakfast = meal
	case "lunch":
		plan.Lunch = meal
	case "dinner":
		plan.Dinner = meal
	}
}

func sumPlan(plan *models.PlanDocument) models.Nutrition {
	var total models.Nutrition
	for _, m := range plan.Meals() {
		total = total.Add(m.Meal.EstimatedNutrition)
	}
	return total
}

func nutritionOnlyPlan(n models.Nutrition) models.PlanDocument {
	option := func(name, desc, benefit string) *models.PlannedMeal {
		return &models.PlannedMeal{
			Name:               name,
			Description:        desc,
			Ingredients:        []string{"Mixed ingredients"},
			EstimatedNutrition: n,
			HealthBenefits:     []string{benefit},
		}
	}
	plan := models.PlanDocument{
		Breakfast:    option("Breakfast Option", "A balanced breakfast based on your health profile", "Nutritious start to the day"),
		Lunch:        option("Lunch Option", "A satisfying lunch option", "Sustained energy"),
		Dinner:       option("Dinner Option", "A wholesome dinner option", "Good for recovery"),
		SpecialNotes: aiPlanNotes(),
	}
	plan.DailyTotals = sumPlan(&plan)
	return plan
}

func rawTextPlan(text string) models.PlanDocument {
	placeholder := func(desc, ingredient string) *models.PlannedMeal {
		return &models.PlannedMeal{
			Name:           "Personalized Meal Plan",
			Description:    desc,
			Ingredients:    []string{ingredient},
			HealthBenefits: []string{"Generated by AI"},
		}
	}
	return models.PlanDocument{
		Breakfast: placeholder(strings.TrimSpace(text), "See description for details"),
		Lunch:     placeholder("Please check the breakfast section for details", "See breakfast section"),
		Dinner:    placeholder("Please check the breakfast section for details", "See breakfast section"),
		SpecialNotes: []string{
			"The AI response format was not as expected",
			"This meal plan was generated by AI and should be adjusted based on your individual needs",
		},
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// cleanMarkup drops the markdown emphasis models like to add around labels.
func cleanMarkup(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*#_ "))
}
