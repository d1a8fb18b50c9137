package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"libdb.so/hserve"
)

// NewRouter wires the session routes. ws serves the live view of /sessions/{id}/ws.
func NewRouter(logger *slog.Logger, sessions SessionHandlers, ws http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger.With("component", "http")))

	r.Get("/ping", pingHandler)

	r.Post("/sessions", sessions.Create)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", sessions.Get)
		r.Delete("/", sessions.End)
		r.Post("/play", sessions.Play)
		r.Post("/jump", sessions.Jump)
		r.Post("/sort", sessions.Sort)
		r.Get("/ws", ws.ServeHTTP)
	})

	return r
}

// Start serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	err := hserve.ListenAndServe(ctx, ":"+port, handler)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request served",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}
