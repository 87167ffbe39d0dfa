package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type UserSummary struct {
	Mood       *MoodSummary
	CGM        *GlucoseSummary
	Nutrition  *NutritionSummary
	LatestPlan *LatestMealPlan // nil when the user has no plan yet
}

// SummaryService assembles the dashboard view from the feature services.
type SummaryService struct {
	users *UserService
	mood  *MoodService
	cgm   *CGMService
	food  *FoodService
	plans *MealPlanService
}

func NewSummaryService(users *UserService, mood *MoodService, cgm *CGMService, food *FoodService, plans *MealPlanService) *SummaryService {
	return &SummaryService{users: users, mood: mood, cgm: cgm, food: food, plans: plans}
}

func (s *SummaryService) Summary(ctx context.Context, userID uint) (*UserSummary, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, err
	}

	out := &UserSummary{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Mood, err = s.mood.Summary(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.CGM, err = s.cgm.Summary(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		out.Nutrition, err = s.food.Summary(ctx, userID)
		return err
	})
	g.Go(func() error {
		plan, err := s.plans.Latest(ctx, userID)
		if errors.Is(err, ErrNoMealPlan) {
			return nil
		}
		out.LatestPlan = plan
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
