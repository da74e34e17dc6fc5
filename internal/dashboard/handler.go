package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

type summaryService interface {
	Summary(ctx context.Context, userID, windowDays int, now time.Time) (*Summary, error)
}

type Handler struct {
	service summaryService
	nowFunc func() time.Time
}

func NewHandler(service summaryService) *Handler {
	return &Handler{
		service: service,
		nowFunc: time.Now,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/dashboard", handler.HandleSummary).Methods("GET", "OPTIONS").Name("dashboard")
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.summary")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	windowDays := DefaultWindowDays
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		days, err := strconv.Atoi(daysParam)
		if err != nil || days < 0 || days > MaxWindowDays {
			http.Error(w, "error, days must be a number in [0, 365]", http.StatusBadRequest)
			return
		}
		windowDays = days
	}

	summary, err := handler.service.Summary(ctx, userID, windowDays, handler.nowFunc())
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("dashboard summary for user %d: %s", userID, err)
			http.Error(w, "error, get dashboard failed", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}
