package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
)

// PanicRecovery turns a handler panic into a 500 and counts it.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				fields := log.Fields{
					"method": r.Method,
					"route":  routeName(r),
				}
				if userID, ok := auth.UserIDFromContext(r.Context()); ok {
					fields["user_id"] = userID
				}
				log.WithFields(fields).Errorf("recovered from panic: %v\n%s", recovered, debug.Stack())

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return r.URL.Path
}
