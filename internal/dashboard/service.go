package dashboard

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/aggregate"
	"github.com/2beens/fitassist/internal/bodymetrics"
	"github.com/2beens/fitassist/internal/chat"
	"github.com/2beens/fitassist/internal/goals"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=dashboard_test

const (
	DefaultWindowDays = 7
	MaxWindowDays     = 365

	SumDuration = "duration"
	SumCalories = "calories"
)

type usersRepo interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type goalsRepo interface {
	List(ctx context.Context, userID int, filter goals.Filter) ([]goals.Goal, error)
}

type workoutsRepo interface {
	ListSince(ctx context.Context, userID int, since time.Time) ([]workouts.Workout, error)
}

type chatRepo interface {
	ListSince(ctx context.Context, userID int, since time.Time) ([]chat.Log, error)
}

// Summary is the dashboard of a single user. BMI is nil when height or weight is missing.
type Summary struct {
	WindowDays         int                   `json:"windowDays"`
	TotalWorkouts      int                   `json:"totalWorkouts"`
	CaloriesBurned     float64               `json:"caloriesBurned"`
	ActiveGoals        int                   `json:"activeGoals"`
	TotalGoals         int                   `json:"totalGoals"`
	BMI                *float64              `json:"bmi"`
	BMICategory        *bodymetrics.Category `json:"bmiCategory,omitempty"`
	StatusDistribution map[goals.Status]int  `json:"statusDistribution"`
	Goals              []goals.GoalView      `json:"goals"`
	WorkoutsPerDay     []aggregate.Bucket    `json:"workoutsPerDay"`
	ChatsPerDay        []aggregate.Count     `json:"chatsPerDay"`
}

type Service struct {
	users    usersRepo
	goals    goalsRepo
	workouts workoutsRepo
	chats    chatRepo
}

func NewService(users usersRepo, goals goalsRepo, workouts workoutsRepo, chats chatRepo) *Service {
	return &Service{
		users:    users,
		goals:    goals,
		workouts: workouts,
		chats:    chats,
	}
}

// Summary collects the user's activity within the last windowDays days (today included).
func (s *Service) Summary(ctx context.Context, userID, windowDays int, now time.Time) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("window_days", windowDays))

	window, err := aggregate.Window(windowDays, now)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	userGoals, err := s.goals.List(ctx, userID, goals.FilterAll)
	if err != nil {
		return nil, err
	}
	recentWorkouts, err := s.workouts.ListSince(ctx, userID, window.From)
	if err != nil {
		return nil, err
	}
	recentChats, err := s.chats.ListSince(ctx, userID, window.From)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		WindowDays:         windowDays,
		TotalGoals:         len(userGoals),
		StatusDistribution: make(map[goals.Status]int),
		Goals:              goals.NewGoalViews(userGoals),
	}

	// workout dates are date-only; keep their calendar day in now's zone
	workoutDay := func(w workouts.Workout) time.Time {
		return aggregate.CalendarDate(w.Date, now.Location())
	}
	for _, w := range recentWorkouts {
		if !window.Contains(workoutDay(w)) {
			continue
		}
		summary.TotalWorkouts++
		summary.CaloriesBurned += w.CaloriesBurned
	}

	for _, g := range userGoals {
		summary.StatusDistribution[g.Status]++
		if g.Status != goals.StatusCompleted {
			summary.ActiveGoals++
		}
	}

	if user.HasBodyMetrics() {
		if bmi, err := bodymetrics.ComputeBMI(user.WeightKg, user.HeightCm); err == nil {
			category := bodymetrics.ClassifyBMI(bmi)
			summary.BMI = &bmi
			summary.BMICategory = &category
		}
	}

	summary.WorkoutsPerDay, err = aggregate.BucketByDay(
		recentWorkouts,
		workoutDay,
		map[string]func(workouts.Workout) float64{
			SumDuration: func(w workouts.Workout) float64 { return float64(w.DurationMin) },
			SumCalories: func(w workouts.Workout) float64 { return w.CaloriesBurned },
		},
		windowDays,
		now,
	)
	if err != nil {
		return nil, err
	}
	summary.ChatsPerDay, err = aggregate.CountByDay(
		recentChats,
		func(l chat.Log) time.Time { return l.Timestamp },
		windowDays,
		now,
	)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
