package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/edvin/valo-customs/internal/matchdetect"
	"github.com/edvin/valo-customs/internal/store"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router   *chi.Mux
	store    store.Store
	detector *matchdetect.Detector
	log      *logrus.Logger
}

// NewServer creates a new HTTP server.
func NewServer(st store.Store, detector *matchdetect.Detector, log *logrus.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    st,
		detector: detector,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)

	// Read API over persisted matches
	r.Get("/api/matches", s.handleListMatches)
	r.Get("/api/matches/{matchID}", s.handleGetMatch)

	// Intake endpoint for the message relay
	r.Post("/api/announcements", s.handleAnnouncement)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
