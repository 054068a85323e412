package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tokengate/tokengate"
	"github.com/tokengate/tokengate/middleware"
)

// Server exposes a tokengate.Engine over HTTP.
type Server struct {
	engine *tokengate.Engine
	log    zerolog.Logger
}

func New(engine *tokengate.Engine, log zerolog.Logger) *Server {
	return &Server{engine: engine, log: log}
}

// Router builds the full handler chain: request logging, bearer
// authentication, throttling, then the routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Authenticate(s.engine))
	r.Use(middleware.Throttle(s.engine))

	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/logoutall", s.handleLogoutAll)
		r.Get("/sessions", s.handleListSessions)
		r.Delete("/sessions/{id}", s.handleRevokeSession)
		r.Get("/apiaccess", s.handleGetAPIAccess)
		r.Post("/apiaccess", s.handleCreateAPIAccess)
		r.Delete("/apiaccess", s.handleDeleteAPIAccess)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error().Err(err).Str("op", op).Msg("request failed")
	writeDetail(w, http.StatusServiceUnavailable, "Service temporarily unavailable.")
}

// mustAuth retrieves the identity the RequireAuth guard already checked.
func mustAuth(r *http.Request) *tokengate.Auth {
	auth, _ := middleware.AuthFromContext(r.Context())
	return auth
}
