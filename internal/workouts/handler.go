package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	ListRecent(ctx context.Context, userID, limit int) ([]Workout, error)
}

type AddWorkoutRequest struct {
	Date           string  `json:"date"` // YYYY-MM-DD, today when empty
	Exercise       string  `json:"exercise"`
	DurationMin    int     `json:"durationMin"`
	CaloriesBurned float64 `json:"caloriesBurned"`
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/workouts", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/recent/{limit}", handler.HandleListRecent).Methods("GET", "OPTIONS").Name("list-workouts")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req AddWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	workout := Workout{
		UserID:         userID,
		Exercise:       req.Exercise,
		DurationMin:    req.DurationMin,
		CaloriesBurned: req.CaloriesBurned,
	}
	if req.Date != "" {
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			http.Error(w, "error, invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		workout.Date = date
	}

	added, err := handler.repo.Add(ctx, workout)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("failed to add new workout for user %d: %s", userID, err)
			http.Error(w, "error, failed to add new workout", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	span.SetAttributes(attribute.Int("workout.id", added.ID))
	handler.metricsManager.CounterWorkoutsLogged.Inc()
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list-recent")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	limit, err := strconv.Atoi(mux.Vars(r)["limit"])
	if err != nil {
		http.Error(w, "error, limit NaN", http.StatusBadRequest)
		return
	}

	workouts, err := handler.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("list workouts for user %d: %s", userID, err)
			http.Error(w, "error, failed to list workouts", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	pkg.WriteJSON(w, workouts, http.StatusOK)
}
