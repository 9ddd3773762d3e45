package commands

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/bootstrap"
	"github.com/wolfeidau/inspect/internal/lifecycle"
	"github.com/wolfeidau/inspect/internal/logger"
	"github.com/wolfeidau/inspect/internal/server"
	"github.com/wolfeidau/inspect/internal/service"
	"github.com/wolfeidau/inspect/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ServerCmd struct {
	// Server configuration
	Listen       string `help:"HTTP server listen address" default:"0.0.0.0:5000" env:"INSPECT_LISTEN"`
	Cert         string `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"INSPECT_TLS_CERT"`
	Key          string `help:"path to TLS key file" default:"" env:"INSPECT_TLS_KEY"`
	MaxBodyBytes int64  `help:"maximum request body size in bytes" default:"1048576" env:"INSPECT_MAX_BODY_BYTES"`
	TrustProxy   bool   `help:"trust X-Forwarded-For and X-Real-IP for client addresses" default:"false" env:"INSPECT_TRUST_PROXY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"*" env:"INSPECT_CORS_ORIGINS"`

	// Token configuration
	TokenSecret string        `help:"HMAC secret for bearer tokens, at least 32 bytes" env:"INSPECT_TOKEN_SECRET"`
	TokenTTL    time.Duration `help:"bearer token lifetime" default:"24h" env:"INSPECT_TOKEN_TTL"`

	// Operational modes
	Tracing        bool          `help:"enable tracing and metric export" default:"false" env:"INSPECT_TRACING"`
	TraceRatio     float64       `help:"fraction of requests traced" default:"1.0" env:"INSPECT_TRACE_RATIO"`
	MetricInterval time.Duration `help:"how often metrics are exported" default:"10s" env:"INSPECT_METRIC_INTERVAL"`
	SkipSeeding    bool          `help:"do not create the system admin on startup" default:"false" env:"INSPECT_SKIP_ADMIN_SEED"`

	Store  StoreFlags  `embed:""`
	Admin  AdminFlags  `embed:"" prefix:"admin-"`
	Bcrypt BcryptFlags `embed:""`
}

func (c *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Dev)

	log.Info().Str("version", globals.Version).Bool("dev", globals.Dev).Msg("Starting server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:    "inspect-server",
			Version:        globals.Version,
			SampleRatio:    c.TraceRatio,
			MetricInterval: c.MetricInterval,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	secret, err := c.tokenSecret(globals.Dev)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(secret, c.TokenTTL)
	if err != nil {
		return err
	}

	hasher, err := c.Bcrypt.hasher()
	if err != nil {
		return err
	}

	db, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !c.SkipSeeding {
		if _, err := bootstrap.EnsureSystemAdmin(ctx, db, hasher, c.Admin.config()); err != nil {
			return err
		}
	}

	// Create services
	resolver := auth.NewResolver(tokens, db.Stores())
	defer resolver.Wait()

	lc := lifecycle.NewController(db, hasher)
	api := server.NewServer(server.Config{
		Dev:          globals.Dev,
		Version:      globals.Version,
		MaxBodyBytes: c.MaxBodyBytes,
		TrustProxy:   c.TrustProxy,
	}, server.Services{
		Resolver:      resolver,
		Users:         service.NewUsers(db, hasher, resolver, lc),
		Organizations: service.NewOrganizations(db, hasher, resolver, lc),
		Inspections:   service.NewInspections(db),
		Store:         db,
	})

	var handler http.Handler = api.Handler(log.Logger)
	handler = gzhttp.GzipHandler(handler)
	handler = withCORS(c.CORSOrigins, handler)
	if c.Tracing {
		handler = otelhttp.NewHandler(handler, "inspect-api")
	}

	srv := configureHTTPServer(c.Listen, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Msg("Starting HTTP server")
		if c.Cert != "" {
			errCh <- srv.ListenAndServeTLS(c.Cert, c.Key)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	return nil
}

// tokenSecret returns the configured signing secret. Dev mode falls back to a
// random per-process secret, so tokens do not survive a restart.
func (c *ServerCmd) tokenSecret(dev bool) ([]byte, error) {
	if c.TokenSecret != "" {
		return []byte(c.TokenSecret), nil
	}
	if !dev {
		return nil, errors.New("token secret is required (--token-secret or INSPECT_TOKEN_SECRET)")
	}

	log.Warn().Msg("No token secret configured, using a random secret for this process")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	return secret, nil
}

// withCORS adds CORS support to the API handler.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return middleware.Handler(h)
}
