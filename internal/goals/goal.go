package goals

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/bodymetrics"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on hold"
	StatusAbandoned Status = "abandoned"
)

var AllStatuses = []Status{StatusActive, StatusCompleted, StatusOnHold, StatusAbandoned}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOnHold, StatusAbandoned:
		return true
	default:
		return false
	}
}

// ParseStatus accepts any casing, and "_" or "-" in place of the space ("on_hold").
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	status := Status(normalized)
	if !status.IsValid() {
		return "", apperr.InvalidInput("unknown goal status: %q", s)
	}
	return status, nil
}

type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
)

func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	default:
		return "", apperr.InvalidInput("unknown goals filter: %q", s)
	}
}

type Goal struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	GoalType     string    `json:"goalType"`
	TargetValue  float64   `json:"targetValue"`
	CurrentValue float64   `json:"currentValue"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       Status    `json:"status"`
}

func (g *Goal) Progress() float64 {
	return bodymetrics.GoalProgress(g.CurrentValue, g.TargetValue)
}

// GoalView is a goal as shown to the user.
type GoalView struct {
	Goal
	Title        string  `json:"title"`
	Progress     float64 `json:"progress"`
	ProgressText string  `json:"progressText"`
}

func NewGoalView(g Goal) GoalView {
	return GoalView{
		Goal:         g,
		Title:        TitleCase(g.GoalType),
		Progress:     g.Progress(),
		ProgressText: bodymetrics.FormatProgress(g.CurrentValue, g.TargetValue),
	}
}

func NewGoalViews(goals []Goal) []GoalView {
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, NewGoalView(g))
	}
	return views
}

type NewGoalParams struct {
	UserID      int
	GoalType    string
	TargetValue float64
	StartDate   time.Time
	EndDate     time.Time
}

// Validate checks the date range first, then the remaining fields.
func (p NewGoalParams) Validate() error {
	start, end := DateOnly(p.StartDate), DateOnly(p.EndDate)
	if !end.After(start) {
		return apperr.InvalidRange(
			"end date %s must be after start date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly),
		)
	}
	if p.UserID <= 0 {
		return apperr.InvalidInput("invalid user id: %d", p.UserID)
	}
	if NormalizeGoalType(p.GoalType) == "" {
		return apperr.InvalidInput("goal type empty")
	}
	if p.TargetValue < 0 || math.IsNaN(p.TargetValue) {
		return apperr.InvalidInput("target value must not be negative, got %v", p.TargetValue)
	}
	return nil
}

// NormalizeGoalType turns "Weight Loss" into "weight_loss".
func NormalizeGoalType(goalType string) string {
	return strings.Join(strings.Fields(strings.ToLower(goalType)), "_")
}

// TitleCase turns "weight_loss" into "Weight Loss" and "on hold" into "On Hold".
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// DateOnly drops the clock part, keeping the calendar date as UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
