// Package server exposes the station finder over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/rubiojr/fuelfinder/internal/auth"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/geocode"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/internal/selection"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

const (
	shutdownTimeout     = 10 * time.Second
	readHeaderTimeout   = 10 * time.Second
	defaultPopularLimit = 50
	maxBodyBytes        = 1 << 20
)

// Deps are the components the handlers are built on.
type Deps struct {
	Store    *fueldb.Storage
	Auth     *auth.Service
	Sessions session.Store
	Sync     *selection.Synchronizer
	Hub      *selection.Hub
	Resolver *geocode.Resolver
	// Maps is nil when the configured backend could not be set up; the
	// map endpoints then answer 503 and the list keeps working.
	Maps       mapview.Renderer
	MapsConfig api.MapsConfig
	// RateLimit is in requests per minute per IP. Zero disables it.
	RateLimit int
	Logger    *httplog.Logger
}

type Server struct {
	Deps
	log    *slog.Logger
	router chi.Router
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = httplog.NewLogger("fuelfinder", httplog.Options{
			LogLevel: slog.LevelError,
			Concise:  true,
		})
	}
	s := &Server{
		Deps: deps,
		log:  deps.Logger.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.Logger))
	r.Use(middleware.Recoverer)
	if s.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.RateLimit, time.Minute))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/config/maps", s.handleMapsConfig)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/logout", s.handleLogout)

			r.Get("/session", s.handleSession)
			r.Put("/session/language", s.handleSetLanguage)
			r.Put("/session/location", s.handleSetLocation)
			r.Put("/session/selection", s.handleSelect)
			r.Delete("/session/selection", s.handleClearSelection)
			r.Get("/session/events", s.handleEvents)

			r.Get("/stations", s.handleStations)
			r.Get("/stations.gpx", s.handleStationsGPX)
			r.Get("/stations/{id}", s.handleStation)
			r.Get("/stations/{id}/reviews", s.handleReviews)
			r.Post("/stations/{id}/reviews", s.handleAddReview)

			r.Get("/map", s.handleMap)
			r.Get("/stats/popular", s.handlePopular)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error serving HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, err := s.Store.HasSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "stations_loaded": ok})
}
