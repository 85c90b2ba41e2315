package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// NewErrorHandler returns an ErrorHandler that logs err and answers with its
// JSON error body. Client errors log at warn, server errors at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		status := classify(err).Code
		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.RequestID(middleware.GetReqID(r.Context())),
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			logger.Component("handler"),
		)
		_ = JSONError(err).Render(ctx.ResponseWriter(), r)
	}
}
