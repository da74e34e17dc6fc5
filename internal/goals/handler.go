package goals

import (
	"context"
	"encoding/json"
	"errors"
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

//go:generate mockgen -source=$GOFILE -destination=goals_mocks_test.go -package=goals_test

type goalsRepo interface {
	Create(ctx context.Context, params NewGoalParams) (*Goal, error)
	Get(ctx context.Context, goalID int) (*Goal, error)
	UpdateProgress(ctx context.Context, goalID int, current float64) (*Goal, error)
	UpdateStatus(ctx context.Context, goalID int, status Status) (*Goal, error)
	List(ctx context.Context, userID int, filter Filter) ([]Goal, error)
}

type CreateGoalRequest struct {
	GoalType    string  `json:"goalType"`
	TargetValue float64 `json:"targetValue"`
	StartDate   string  `json:"startDate"` // YYYY-MM-DD
	EndDate     string  `json:"endDate"`   // YYYY-MM-DD
}

type UpdateProgressRequest struct {
	CurrentValue float64 `json:"currentValue"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type Handler struct {
	repo           goalsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo goalsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/goals", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals", handler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals/{id}/progress", handler.HandleUpdateProgress).Methods("PUT", "OPTIONS").Name("update-goal-progress")
	r.HandleFunc("/goals/{id}/status", handler.HandleUpdateStatus).Methods("PUT", "OPTIONS").Name("update-goal-status")
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		http.Error(w, "error, invalid start date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	endDate, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		http.Error(w, "error, invalid end date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	goal, err := handler.repo.Create(ctx, NewGoalParams{
		UserID:      userID,
		GoalType:    req.GoalType,
		TargetValue: req.TargetValue,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		writeError(w, "add goal", err)
		return
	}

	span.SetAttributes(attribute.Int("goal.id", goal.ID))
	handler.metricsManager.CounterGoalsCreated.Inc()
	pkg.WriteJSON(w, NewGoalView(*goal), http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	filter, err := ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goals, err := handler.repo.List(ctx, userID, filter)
	if err != nil {
		writeError(w, "list goals", err)
		return
	}

	pkg.WriteJSON(w, NewGoalViews(goals), http.StatusOK)
}

func (handler *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update-progress")
	defer span.End()

	goalID, ok := handler.ownedGoalID(ctx, w, r)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update goal progress failed", http.StatusBadRequest)
		return
	}

	goal, err := handler.repo.UpdateProgress(ctx, goalID, req.CurrentValue)
	if err != nil {
		writeError(w, "update goal progress", err)
		return
	}

	pkg.WriteJSON(w, NewGoalView(*goal), http.StatusOK)
}

func (handler *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update-status")
	defer span.End()

	goalID, ok := handler.ownedGoalID(ctx, w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update goal status failed", http.StatusBadRequest)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goal, err := handler.repo.UpdateStatus(ctx, goalID, status)
	if err != nil {
		writeError(w, "update goal status", err)
		return
	}

	pkg.WriteJSON(w, NewGoalView(*goal), http.StatusOK)
}

// ownedGoalID resolves the {id} path var to a goal owned by the session user.
// Goals of other users are reported as not found.
func (handler *Handler) ownedGoalID(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return 0, false
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}

	goal, err := handler.repo.Get(ctx, goalID)
	if err != nil {
		writeError(w, "get goal", err)
		return 0, false
	}
	if goal.UserID != userID {
		http.Error(w, ErrGoalNotFound.Error(), http.StatusNotFound)
		return 0, false
	}

	return goalID, true
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", op, err)
		http.Error(w, "error, "+op+" failed", status)
		return
	}
	if errors.Is(err, ErrGoalNotFound) {
		http.Error(w, ErrGoalNotFound.Error(), status)
		return
	}
	http.Error(w, err.Error(), status)
}
