package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/dashboard"
	"github.com/2beens/fitassist/internal/goals"
	"github.com/2beens/fitassist/internal/report"
	"github.com/2beens/fitassist/internal/workouts"
)

const DefaultRecentWorkouts = 10

type GoalsRepo interface {
	List(ctx context.Context, userID int, filter goals.Filter) ([]goals.Goal, error)
}

type WorkoutsRepo interface {
	ListRecent(ctx context.Context, userID, limit int) ([]workouts.Workout, error)
}

type dashboardService interface {
	Summary(ctx context.Context, userID, windowDays int, now time.Time) (*dashboard.Summary, error)
}

type reportModelBuilder interface {
	Build(ctx context.Context, userID int) (*report.Model, error)
}

// contextService provides a user's fitness context (goals, workouts, dashboard, report data).
// Used by Handler for testability.
type contextService interface {
	Goals(ctx context.Context, userID int, filter string) ([]goals.GoalView, error)
	RecentWorkouts(ctx context.Context, userID, limit int) ([]workouts.Workout, error)
	Dashboard(ctx context.Context, userID, days int) (*dashboard.Summary, error)
	ReportModel(ctx context.Context, userID int) (*report.Model, error)
}

// ContextService holds dependencies and implements the fitness context lookups.
type ContextService struct {
	goals     GoalsRepo
	workouts  WorkoutsRepo
	dashboard dashboardService
	reports   reportModelBuilder
	nowFunc   func() time.Time
}

func NewContextService(
	goalsRepo GoalsRepo,
	workoutsRepo WorkoutsRepo,
	dashboardService dashboardService,
	reports reportModelBuilder,
) *ContextService {
	return &ContextService{
		goals:     goalsRepo,
		workouts:  workoutsRepo,
		dashboard: dashboardService,
		reports:   reports,
		nowFunc:   time.Now,
	}
}

// Goals returns the user's goals with progress; filter is "all" (default) or "active".
func (s *ContextService) Goals(ctx context.Context, userID int, filter string) ([]goals.GoalView, error) {
	f, err := goals.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	list, err := s.goals.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return goals.NewGoalViews(list), nil
}

// RecentWorkouts returns up to limit latest workouts, DefaultRecentWorkouts when limit is 0.
func (s *ContextService) RecentWorkouts(ctx context.Context, userID, limit int) ([]workouts.Workout, error) {
	if limit == 0 {
		limit = DefaultRecentWorkouts
	}
	if limit < 0 || limit > workouts.MaxListLimit {
		return nil, apperr.InvalidInput("limit must be in [1, %d]", workouts.MaxListLimit)
	}
	return s.workouts.ListRecent(ctx, userID, limit)
}

// Dashboard returns the dashboard summary over the last days, dashboard.DefaultWindowDays when days is 0.
func (s *ContextService) Dashboard(ctx context.Context, userID, days int) (*dashboard.Summary, error) {
	if days == 0 {
		days = dashboard.DefaultWindowDays
	}
	if days < 0 || days > dashboard.MaxWindowDays {
		return nil, apperr.InvalidInput("days must be in [1, %d]", dashboard.MaxWindowDays)
	}
	return s.dashboard.Summary(ctx, userID, days, s.nowFunc())
}

func (s *ContextService) ReportModel(ctx context.Context, userID int) (*report.Model, error) {
	model, err := s.reports.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build report model: %w", err)
	}
	return model, nil
}
