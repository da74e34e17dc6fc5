package workouts

import (
	"strings"
	"time"

	"github.com/2beens/fitassist/internal/apperr"
)

type Workout struct {
	ID             int       `json:"id"`
	UserID         int       `json:"userId"`
	Date           time.Time `json:"date"`
	Exercise       string    `json:"exercise"`
	DurationMin    int       `json:"durationMin"`
	CaloriesBurned float64   `json:"caloriesBurned"`
}

func (w *Workout) Validate() error {
	if w.UserID <= 0 {
		return apperr.InvalidInput("invalid user id: %d", w.UserID)
	}
	if strings.TrimSpace(w.Exercise) == "" {
		return apperr.InvalidInput("exercise name empty")
	}
	if w.DurationMin < 1 {
		return apperr.InvalidInput("duration must be at least 1 minute, got %d", w.DurationMin)
	}
	if w.CaloriesBurned < 0 {
		return apperr.InvalidInput("calories must not be negative, got %v", w.CaloriesBurned)
	}
	return nil
}
