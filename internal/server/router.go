package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/pocket-points/internal/config"
	"github.com/sevigo/pocket-points/internal/core"
	"github.com/sevigo/pocket-points/internal/roster"
	"github.com/sevigo/pocket-points/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, svc roster.Service, decoder core.Decoder, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		students := handler.NewStudentHandler(cfg, svc, decoder, logger)
		r.Get("/students", students.List)
		r.Route("/students/{id}", func(r chi.Router) {
			r.Get("/", students.Get)
			r.Put("/", students.Update)
			r.Get("/thumbnail.png", students.Thumbnail)
			r.Post("/stickers", students.AddSticker)
			r.Delete("/stickers", students.RemoveSticker)
		})
	})

	return r
}
