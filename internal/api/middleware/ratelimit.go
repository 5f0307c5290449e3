package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
)

// RateLimit allows limit requests per client IP within window. Excess
// requests get a 429 failure envelope.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "too_many_requests", nil)
		}),
	)
}
