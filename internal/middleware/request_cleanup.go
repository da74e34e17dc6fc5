package middleware

import (
	"io"
	"net/http"
)

// maxDrainBytes bounds how much of an unread body is consumed before closing.
const maxDrainBytes = 256 << 10

// LimitAndDrainBody caps request bodies at maxBodyBytes (no cap when <= 0) and,
// once the handler returns, discards what it left unread so the connection can be reused.
func LimitAndDrainBody(maxBodyBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			body := r.Body
			if maxBodyBytes > 0 {
				r.Body = http.MaxBytesReader(w, body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)

			_, _ = io.CopyN(io.Discard, body, maxDrainBytes)
			_ = body.Close()
		})
	}
}
