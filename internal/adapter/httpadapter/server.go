package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/bugwatch/internal/session"
	"github.com/couchcryptid/bugwatch/internal/submission"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// formOverhead is the allowance for multipart framing and text fields on
// top of the photo size limit.
const formOverhead = 1 << 20

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Submissions *submission.Service
	Sessions    *session.Store
	Ready       sharedobs.ReadinessChecker

	// CookieName names the session cookie.
	CookieName string
	// FormURL, when set, replaces the native form with a link and disables
	// the POST routes.
	FormURL string
}

// Server exposes the sighting board, its JSON API, and the health,
// readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
		deps:   deps,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/sightings", s.handleListSightings)
	mux.HandleFunc("GET /api/distribution", s.handleDistribution)
	mux.HandleFunc("GET /api/locations", s.handleLocations)

	if deps.FormURL == "" {
		mux.HandleFunc("POST /sightings", s.handleFormSubmit)
		mux.HandleFunc("POST /api/sightings", s.handleAPISubmit)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// session returns the visitor's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(s.deps.CookieName); err == nil {
		id = c.Value
	}

	sess, created := s.deps.Sessions.Resolve(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     s.deps.CookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
		s.logger.Debug("session started", "session", sess.ID())
	}
	return sess
}
