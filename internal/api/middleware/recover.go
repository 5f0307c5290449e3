package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// Recoverer turns a panicking handler into a 500 failure envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context()).Error("handler panic",
				"panic", fmt.Sprint(rec),
				"path", r.URL.Path,
				"stack", string(debug.Stack()))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "internal_server_error")
		}()

		next.ServeHTTP(w, r)
	})
}
