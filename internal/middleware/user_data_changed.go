package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/2beens/fitassist/internal/auth"
)

// OnUserDataChanged calls notify with the session user after a successful
// request to one of the named routes.
func OnUserDataChanged(notify func(userID int), routeNames ...string) func(next http.Handler) http.Handler {
	watched := make(map[string]bool, len(routeNames))
	for _, name := range routeNames {
		watched[name] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil || !watched[route.GetName()] {
				next.ServeHTTP(w, r)
				return
			}

			resp := &responseWriter{w, http.StatusOK}
			next.ServeHTTP(resp, r)

			if resp.statusCode >= http.StatusBadRequest {
				return
			}
			if userID, ok := auth.UserIDFromContext(r.Context()); ok {
				notify(userID)
			}
		})
	}
}
