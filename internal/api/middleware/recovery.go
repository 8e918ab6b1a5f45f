package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/eventide-gm/internal/api/apierr"
	"github.com/mcoot/eventide-gm/internal/middleware"
)

// Recovery creates panic recovery middleware that answers with a JSON error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging logs every request except the quiet paths, which go to debug
func Logging(logger *slog.Logger, quiet ...string) func(http.Handler) http.Handler {
	return middleware.Logging(logger, quiet...)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
