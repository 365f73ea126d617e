package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"arbitrage/internal/logging"
)

// Recovery catches a panic in any downstream handler, logs it with a
// stack trace, and returns 500 instead of taking the whole process down.
func Recovery(log logging.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic in status API handler",
						logging.String("path", r.URL.Path),
						logging.String("recovered", fmt.Sprintf("%v", err)),
						logging.String("stack", string(debug.Stack())))
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
