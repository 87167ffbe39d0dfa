package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/models"
)

type UserInfo struct {
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	City                string   `json:"city"`
	DietaryPreference   string   `json:"dietary_preference"`
	MedicalConditions   []string `json:"medical_conditions"`
	PhysicalLimitations []string `json:"physical_limitations"`
}

type Greeting struct {
	UserID   uint     `json:"-"`
	Message  string   `json:"message"`
	UserInfo UserInfo `json:"user_info"`
	Action   string   `json:"action"`
}

type GreetingService struct{ users *UserService }

func NewGreetingService(users *UserService) *GreetingService {
	return &GreetingService{users: users}
}

func (s *GreetingService) Greet(ctx context.Context, userID uint) (*Greeting, error) {
	if userID == 0 {
		return nil, &ValidationError{
			Code:    "missing_user_id",
			Message: "Please provide a valid user ID to continue.",
			Extra:   map[string]any{"action": "request_user_id"},
		}
	}

	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, &ValidationError{
			Code:    "user_not_found",
			Message: fmt.Sprintf("User ID %d not found. Please enter a valid user ID (1-100).", userID),
			Extra:   map[string]any{"action": "request_user_id"},
		}
	}
	if err != nil {
		return nil, err
	}

	return &Greeting{
		UserID:   u.ID,
		Message:  greetingText(u),
		UserInfo: userInfo(u),
		Action:   "show_dashboard",
	}, nil
}

func userInfo(u *models.User) UserInfo {
	return UserInfo{
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		City:                u.City,
		DietaryPreference:   u.DietaryPreference,
		MedicalConditions:   nonNil(u.MedicalConditions),
		PhysicalLimitations: nonNil(u.PhysicalLimitations),
	}
}

func greetingText(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! 👋 Welcome to your personalized health companion.\n\n", u.FirstName)
	fmt.Fprintf(&b, "I see you're joining us from %s. ", u.City)

	if u.DietaryPreference != "" && u.DietaryPreference != "non-vegetarian" {
		fmt.Fprintf(&b, "Great to have another %s user! ", u.DietaryPreference)
	}

	if u.HasCondition("Type 2 Diabetes") || u.HasCondition("Hypertension") {
		b.WriteString("I'm here to help you manage your health with personalized meal planning and glucose monitoring. ")
	} else {
		b.WriteString("I'm here to help you maintain optimal health with mood tracking and personalized meal planning. ")
	}

	b.WriteString("\n\nHow can I assist you today? I can help you with:\n" +
		"🎭 Mood tracking\n" +
		"📊 Glucose monitoring\n" +
		"🍽️ Food logging\n" +
		"📋 Meal planning\n" +
		"❓ General health questions")
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
