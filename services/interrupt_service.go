package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

const (
	QuestionHealthScore   = "health_score"
	QuestionInformational = "informational"
	QuestionAppHelp       = "app_help"
	QuestionGeneral       = "general"

	apologyAnswer     = "I'm sorry, I'm having trouble processing your request right now. Please try again later."
	defaultNavigation = "You can continue with your previous task or ask another question."
)

var healthScoreKeywords = []string{"health score", "how healthy", "health rating", "wellness score"}

type InterruptRequest struct {
	UserID         *uint
	Query          string
	CurrentContext map[string]any
}

type InterruptResult struct {
	Message              string `json:"message"`
	QuestionType         string `json:"question_type"`
	ResponseSource       string `json:"response_source"` // llm | health_score_calculation | system | error
	NavigationSuggestion string `json:"navigation_suggestion"`
	ContinueFlow         bool   `json:"continue_flow"`
}

type HealthScore struct {
	Overall         float64  `json:"overall_score"`
	Mood            float64  `json:"mood_score"`
	Glucose         float64  `json:"glucose_score"`
	Nutrition       float64  `json:"nutrition_score"`
	Recommendations []string `json:"recommendations"`
}

type InterruptService struct {
	db    *gorm.DB
	llm   TextGenerator
	model string
	cache AnswerCache
	log   *zap.Logger
	now   func() time.Time
}

func NewInterruptService(db *gorm.DB, llm TextGenerator, model string, cache AnswerCache, log *zap.Logger) *InterruptService {
	return &InterruptService{db: db, llm: llm, model: model, cache: cache, log: log, now: time.Now}
}

// ClassifyQuestion is keyword based; health score phrases win over the
// generic how/what/why check.
func ClassifyQuestion(query string) string {
	q := strings.ToLower(query)
	if containsAny(q, healthScoreKeywords) {
		return QuestionHealthScore
	}
	switch {
	case strings.Contains(q, "how"), strings.Contains(q, "what"), strings.Contains(q, "why"):
		return QuestionInformational
	case strings.Contains(q, "help"):
		return QuestionAppHelp
	}
	return QuestionGeneral
}

func (s *InterruptService) Ask(ctx context.Context, req InterruptRequest) (*InterruptResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &ValidationError{
			Code:    "missing_query",
			Message: "Query is required",
			Extra: map[string]any{
				"question_type":         nil,
				"response_source":       nil,
				"navigation_suggestion": nil,
				"continue_flow":         true,
			},
		}
	}

	qt := ClassifyQuestion(query)
	res := &InterruptResult{
		QuestionType:         qt,
		NavigationSuggestion: navigationSuggestion(req.CurrentContext),
		ContinueFlow:         true,
	}

	if qt == QuestionHealthScore {
		res.Message, res.ResponseSource = s.healthScoreAnswer(ctx, req.UserID)
		return res, nil
	}
	res.Message, res.ResponseSource = s.answer(ctx, query)
	return res, nil
}

func navigationSuggestion(current map[string]any) string {
	if screen, ok := current["screen"].(string); ok && strings.TrimSpace(screen) != "" {
		return fmt.Sprintf("You can continue with %s or ask another question.", strings.TrimSpace(screen))
	}
	return defaultNavigation
}

func (s *InterruptService) answer(ctx context.Context, query string) (string, string) {
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, query); ok {
			return v, "llm"
		}
	}
	if s.llm == nil {
		return apologyAnswer, "error"
	}

	prompt := "You are an intelligent assistant. Answer the following query clearly and concisely. " +
		"Do not use markdown, bold text, or special formatting. Just plain text.\n\n" +
		"Query: " + query
	text, err := s.llm.Generate(ctx, prompt, GenerateOptions{
		Model:           s.model,
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 500,
	})
	if err != nil {
		s.log.Warn("assistant answer failed", zap.Error(err))
		return apologyAnswer, "error"
	}

	if s.cache != nil {
		s.cache.Set(ctx, query, text)
	}
	return text, "llm"
}

func (s *InterruptService) healthScoreAnswer(ctx context.Context, userID *uint) (string, string) {
	if userID == nil || *userID == 0 {
		return "I need to know your user ID to calculate your health score. Please log in or provide your user ID.", "system"
	}
	hs, err := s.HealthScore(ctx, *userID)
	if err != nil {
		s.log.Error("health score", zap.Uint("user_id", *userID), zap.Error(err))
		return "Sorry, I couldn't calculate your health score at the moment. Please try again later.", "system"
	}
	return healthScoreReport(hs), "health_score_calculation"
}

// HealthScore weighs seven days of mood (30%), glucose (40%) and meal
// variety (30%) on a 0-10 scale; a component with no data scores 5.
func (s *InterruptService) HealthScore(ctx context.Context, userID uint) (*HealthScore, error) {
	since := s.now().UTC().Add(-historyWindow)
	db := s.db.WithContext(ctx)

	var moods []string
	if err := db.Model(&models.MoodLog{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Pluck("mood", &moods).Error; err != nil {
		return nil, storageErr("load moods", err)
	}
	var readings []int
	if err := db.Model(&models.CGMReading{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Pluck("glucose_reading", &readings).Error; err != nil {
		return nil, storageErr("load readings", err)
	}
	var meals []string
	if err := db.Model(&models.FoodLog{}).
		Where("user_id = ? AND timestamp >= ?", userID, since).
		Pluck("meal_description", &meals).Error; err != nil {
		return nil, storageErr("load meals", err)
	}

	return ComputeHealthScore(moods, readings, meals), nil
}

func ComputeHealthScore(moods []string, readings []int, meals []string) *HealthScore {
	mood := 5.0
	if len(moods) > 0 {
		positive := 0
		for _, m := range moods {
			if m == "happy" || m == "calm" {
				positive++
			}
		}
		mood = 10 * float64(positive) / float64(len(moods))
	}

	glucose := 5.0
	if len(readings) > 0 {
		healthy := 0
		for _, r := range readings {
			if r >= 80 && r <= 180 {
				healthy++
			}
		}
		glucose = 10 * float64(healthy) / float64(len(readings))
	}

	nutrition := 5.0
	if len(meals) > 0 {
		words := map[string]struct{}{}
		for _, w := range strings.Fields(strings.ToLower(strings.Join(meals, " "))) {
			words[w] = struct{}{}
		}
		nutrition = min(10.0, float64(len(words))/2)
	}

	overall := mood*0.3 + glucose*0.4 + nutrition*0.3

	return &HealthScore{
		Overall:         utils.Round1(overall),
		Mood:            utils.Round1(mood),
		Glucose:         utils.Round1(glucose),
		Nutrition:       utils.Round1(nutrition),
		Recommendations: healthRecommendations(mood, glucose, nutrition),
	}
}

func tiered(score float64, low, mid, high []string) []string {
	switch {
	case score < 5:
		return low
	case score < 7:
		return mid
	}
	return high
}

func healthRecommendations(mood, glucose, nutrition float64) []string {
	var recs []string
	recs = append(recs, tiered(mood,
		[]string{
			"Your mood score is low. Consider practicing mindfulness or meditation.",
			"Try to engage in activities that bring you joy.",
			"Consider speaking with a mental health professional if negative feelings persist.",
		},
		[]string{
			"You could improve your mood by engaging in more positive activities.",
			"Consider regular exercise, which can boost mood naturally.",
			"Maintain social connections with friends and family.",
		},
		[]string{"Great job maintaining a positive mood!"},
	)...)
	recs = append(recs, tiered(glucose,
		[]string{
			"Your glucose levels need attention. Focus on a balanced diet.",
			"Avoid sugary snacks and drinks.",
			"Consider consulting with a nutritionist for personalized advice.",
		},
		[]string{
			"Work on maintaining more consistent glucose levels.",
			"Eat regular meals and avoid skipping breakfast.",
			"Include fiber-rich foods to help stabilize blood sugar.",
		},
		[]string{"Excellent work maintaining stable glucose levels!"},
	)...)
	recs = append(recs, tiered(nutrition,
		[]string{
			"Your diet variety needs improvement. Try incorporating more different foods.",
			"Add more fruits and vegetables to your meals.",
			"Consider meal planning to ensure balanced nutrition.",
		},
		[]string{
			"You can enhance your diet by trying new foods.",
			"Include foods from all food groups in your meals.",
			"Stay hydrated and limit processed foods.",
		},
		[]string{"Your diet variety is excellent!"},
	)...)
	return recs
}

func healthScoreReport(hs *HealthScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Health Score Report\n\nOverall Health Score: %.1f/10\n\n", hs.Overall)
	fmt.Fprintf(&b, "Detailed Scores:\n  Mood: %.1f/10\n  Glucose: %.1f/10\n  Nutrition: %.1f/10\n\n",
		hs.Mood, hs.Glucose, hs.Nutrition)

	switch {
	case hs.Overall >= 8.5:
		b.WriteString("\n🌟 Excellent! You're in great health. Keep up the good work!\n\n")
	case hs.Overall >= 7:
		b.WriteString("\n👍 Good job! You're maintaining a healthy lifestyle with room for minor improvements.\n\n")
	case hs.Overall >= 5:
		b.WriteString("\n⚠️ Fair health. Focus on the recommendations to improve your well-being.\n\n")
	default:
		b.WriteString("\n⚠️ Poor health. It's important to take action on the recommendations and consider consulting a healthcare professional.\n\n")
	}

	if len(hs.Recommendations) > 0 {
		b.WriteString("🎯 Personalized Recommendations:\n")
		for i, r := range hs.Recommendations {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  • " + r)
		}
	}
	b.WriteString("\n")
	return b.String()
}
