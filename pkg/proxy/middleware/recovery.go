package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
)

// RecoveryMiddleware turns a handler panic into a 500 error envelope. The
// panic value and stack only go to the log. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}

			slog.ErrorContext(r.Context(), "handler panicked",
				"panic", v,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			_ = proxy.WriteErrorResponse(w, types.NewServerError("internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
