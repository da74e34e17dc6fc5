package tips

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager: manager,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/tips/random", handler.HandleRandom).Methods("GET").Name("random-tip")
}

// HandleRandom serves a random tip, optionally limited by ?category=.
func (handler *Handler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.tips.random")
	defer span.End()

	category := r.URL.Query().Get("category")
	if category == "" {
		pkg.WriteJSON(w, handler.manager.Random(), http.StatusOK)
		return
	}

	span.SetAttributes(attribute.String("tip.category", category))
	tip := handler.manager.RandomOf(category)
	if tip == nil {
		http.Error(w, "no tips in category "+category, http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, tip, http.StatusOK)
}
