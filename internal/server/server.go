package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	inhttp "github.com/wolfeidau/inspect/internal/http"
	"github.com/wolfeidau/inspect/internal/logger"
	"github.com/wolfeidau/inspect/internal/service"
	"github.com/wolfeidau/inspect/internal/store"
)

const defaultMaxBodyBytes = 1 << 20

// Config controls transport behaviour.
type Config struct {
	Dev          bool   // Include internal error causes in responses
	Version      string // Reported by the banner endpoint
	MaxBodyBytes int64  // Request body limit, defaults to 1MiB
	TrustProxy   bool   // Honor X-Forwarded-For and X-Real-IP
}

// Services are the application services the HTTP API exposes.
type Services struct {
	Resolver      *auth.Resolver
	Users         *service.Users
	Organizations *service.Organizations
	Inspections   *service.Inspections
	Store         store.Pinger
}

// Server wraps the HTTP routes and the services behind them
type Server struct {
	cfg Config
	svc Services
}

// NewServer creates a new server over the given services
func NewServer(cfg Config, svc Services) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{cfg: cfg, svc: svc}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(inhttp.ClientIPMiddleware(s.cfg.TrustProxy))
	r.Use(logger.Requests(log))
	r.Use(middleware.Recoverer)
	r.Use(s.limitRequestBody)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Error: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Error: "Method not allowed"})
	})

	r.Get("/", s.banner)
	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/org/api/signin", s.organizationSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.svc.Resolver.Middleware(s.writeError))

			r.Get("/auth/profile", s.profile)
			r.Put("/auth/profile", s.updateProfile)
			r.Put("/auth/change-password", s.changePassword)
			r.Post("/auth/admin/create-user", s.registerUser)

			r.Route("/admin/api/organizations", func(r chi.Router) {
				r.Post("/", s.createOrganization)
				r.Get("/", s.listOrganizations)

				r.Route("/{orgId}", func(r chi.Router) {
					r.Get("/", s.getOrganization)
					r.Put("/", s.updateOrganization)
					r.Delete("/", s.deleteOrganization)
					r.Patch("/toggle-status", s.toggleOrganization)

					r.Post("/users", s.createMember)
					r.Get("/users", s.listMembers)
					r.Patch("/users/{userId}/toggle-status", s.toggleMember)
					r.Delete("/users/{userId}/permanent", s.deleteMember)
				})
			})

			r.Post("/user/api/inspections", s.createInspection)
			r.Get("/user/api/inspections", s.listMyInspections)
			r.Get("/user/api/inspections/{inspectionId}", s.getInspection)

			r.Get("/inspections/organizations/{orgId}/inspections", s.listOrganizationInspections)
		})
	})

	return r
}

func (s *Server) limitRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

type bannerResponse struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) banner(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", bannerResponse{
		Name:      "House Inspection System API",
		Status:    "running",
		Version:   s.cfg.Version,
		Timestamp: time.Now().UTC(),
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// health reports 503 when the store cannot be reached so load balancers drain the instance.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.Store.Ping(ctx); err != nil {
		s.writeError(w, r, apperr.Transient(err))
		return
	}

	writeData(w, http.StatusOK, "", healthResponse{
		Status:    "OK",
		Database:  "connected",
		Timestamp: time.Now().UTC(),
	})
}

// authContext returns the identity resolved by the auth middleware.
func authContext(r *http.Request) auth.AuthContext {
	ac, _ := auth.FromContext(r.Context())
	return ac
}
