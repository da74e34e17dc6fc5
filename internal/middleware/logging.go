package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest traces each request with its route and latency; it is a no-op
// unless the logger runs at trace level.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !log.IsLevelEnabled(log.TraceLevel) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(log.Fields{
				"method":  r.Method,
				"route":   routeName(r),
				"took_ms": time.Since(start).Milliseconds(),
				"ua":      r.UserAgent(),
			}).Trace("request served")
		})
	}
}
