// Package report assembles a user's fitness report and renders it as a PDF.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/bodymetrics"
	"github.com/2beens/fitassist/internal/chat"
	"github.com/2beens/fitassist/internal/goals"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/internal/users"
	"github.com/2beens/fitassist/internal/workouts"
)

//go:generate mockgen -source=$GOFILE -destination=model_mocks_test.go -package=report_test

const (
	RecentWorkoutsLimit = 20
	RecentChatsLimit    = 10

	notAvailable = "N/A"
)

type usersRepo interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type goalsRepo interface {
	List(ctx context.Context, userID int, filter goals.Filter) ([]goals.Goal, error)
}

type workoutsRepo interface {
	ListRecent(ctx context.Context, userID, limit int) ([]workouts.Workout, error)
}

type chatRepo interface {
	ListRecent(ctx context.Context, userID, limit int) ([]chat.Log, error)
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type GoalRow struct {
	Title    string `json:"title"`
	Target   string `json:"target"`
	Current  string `json:"current"`
	Progress string `json:"progress"`
	Status   string `json:"status"`
	Period   string `json:"period"`
}

type WorkoutRow struct {
	Date        string `json:"date"`
	Exercise    string `json:"exercise"`
	DurationMin int    `json:"durationMin"`
	Calories    string `json:"calories"`
}

type ChatRow struct {
	UserMessage string    `json:"userMessage"`
	BotReply    string    `json:"botReply"`
	Timestamp   time.Time `json:"timestamp"`
}

// Model is everything a report shows, already formatted for display.
type Model struct {
	UserName    string                `json:"userName"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Profile     []Field               `json:"profile"`
	BMI         *float64              `json:"bmi"`
	BMICategory *bodymetrics.Category `json:"bmiCategory,omitempty"`
	Goals       []GoalRow             `json:"goals"`
	Workouts    []WorkoutRow          `json:"workouts"`
	Chats       []ChatRow             `json:"chats"`
}

type Assembler struct {
	users    usersRepo
	goals    goalsRepo
	workouts workoutsRepo
	chats    chatRepo
	nowFunc  func() time.Time
}

func NewAssembler(users usersRepo, goals goalsRepo, workouts workoutsRepo, chats chatRepo) *Assembler {
	return &Assembler{
		users:    users,
		goals:    goals,
		workouts: workouts,
		chats:    chats,
		nowFunc:  time.Now,
	}
}

// Build gathers the report data of a user. Unknown users yield a not found error.
func (a *Assembler) Build(ctx context.Context, userID int) (_ *Model, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "report.assembler.build")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	userGoals, err := a.goals.List(ctx, userID, goals.FilterAll)
	if err != nil {
		return nil, err
	}
	recentWorkouts, err := a.workouts.ListRecent(ctx, userID, RecentWorkoutsLimit)
	if err != nil {
		return nil, err
	}
	recentChats, err := a.chats.ListRecent(ctx, userID, RecentChatsLimit)
	if err != nil {
		return nil, err
	}

	model := &Model{
		UserName:    user.Name,
		GeneratedAt: a.nowFunc(),
		Goals:       make([]GoalRow, 0, len(userGoals)),
		Workouts:    make([]WorkoutRow, 0, len(recentWorkouts)),
		Chats:       make([]ChatRow, 0, len(recentChats)),
	}

	bmiText := notAvailable
	if user.HasBodyMetrics() {
		if bmi, err := bodymetrics.ComputeBMI(user.WeightKg, user.HeightCm); err == nil {
			category := bodymetrics.ClassifyBMI(bmi)
			model.BMI = &bmi
			model.BMICategory = &category
			bmiText = fmt.Sprintf("%.2f (%s)", bmi, category.Name)
		}
	}

	model.Profile = []Field{
		{Label: "Name", Value: user.Name},
		{Label: "Age", Value: orNA(user.Age > 0, strconv.Itoa(user.Age))},
		{Label: "Gender", Value: orNA(user.Gender != "", user.Gender)},
		{Label: "Height", Value: orNA(user.HeightCm > 0, formatFloat(user.HeightCm)+" cm")},
		{Label: "Weight", Value: orNA(user.WeightKg > 0, formatFloat(user.WeightKg)+" kg")},
		{Label: "BMI", Value: bmiText},
	}

	for _, g := range userGoals {
		model.Goals = append(model.Goals, GoalRow{
			Title:    goals.TitleCase(g.GoalType),
			Target:   fmt.Sprintf("%.1f", g.TargetValue),
			Current:  fmt.Sprintf("%.1f", g.CurrentValue),
			Progress: bodymetrics.FormatProgress(g.CurrentValue, g.TargetValue),
			Status:   goals.TitleCase(string(g.Status)),
			Period:   g.StartDate.Format(time.DateOnly) + " to " + g.EndDate.Format(time.DateOnly),
		})
	}

	for _, w := range recentWorkouts {
		model.Workouts = append(model.Workouts, WorkoutRow{
			Date:        w.Date.Format(time.DateOnly),
			Exercise:    w.Exercise,
			DurationMin: w.DurationMin,
			Calories:    bodymetrics.FormatCalories(w.CaloriesBurned),
		})
	}

	for _, l := range recentChats {
		model.Chats = append(model.Chats, ChatRow{
			UserMessage: l.UserMessage,
			BotReply:    l.BotReply,
			Timestamp:   l.Timestamp,
		})
	}

	return model, nil
}

func orNA(ok bool, value string) string {
	if !ok {
		return notAvailable
	}
	return value
}

// formatFloat prints the shortest form that round-trips v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
