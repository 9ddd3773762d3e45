package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/bootstrap"
	"github.com/wolfeidau/inspect/internal/store"
	memorystore "github.com/wolfeidau/inspect/internal/store/memory"
	postgresstore "github.com/wolfeidau/inspect/internal/store/postgres"
)

type Globals struct {
	Dev     bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// StoreFlags selects and configures the storage engine
type StoreFlags struct {
	StoreType string             `help:"store type (memory or postgres)" default:"memory" env:"INSPECT_STORE_TYPE" enum:"memory,postgres"`
	Postgres  PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20" env:"INSPECT_POSTGRES_MAX_CONNS"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5" env:"INSPECT_POSTGRES_MIN_CONNS"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	ConnectAttempts uint  `help:"attempts to reach the database on startup" default:"5" env:"INSPECT_POSTGRES_CONNECT_ATTEMPTS"`

	// Statement Configuration
	QueryTimeout  int32 `help:"maximum statement time in seconds" default:"10" env:"INSPECT_POSTGRES_QUERY_TIMEOUT"`
	MaxTxAttempts uint  `help:"attempts for a unit of work that hits a serialization conflict" default:"5"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"INSPECT_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) config(autoMigrate bool) *postgresstore.Config {
	return &postgresstore.Config{
		PoolConfig: postgresstore.PoolConfig{
			ConnString:      s.ConnString,
			MaxConns:        s.MaxConns,
			MinConns:        s.MinConns,
			MaxConnLifetime: s.MaxConnLifetime,
			MaxConnIdleTime: s.MaxConnIdleTime,
			ConnectAttempts: s.ConnectAttempts,
		},
		AutoMigrate:         autoMigrate,
		QueryTimeoutSeconds: s.QueryTimeout,
		MaxTxAttempts:       s.MaxTxAttempts,
	}
}

// open creates the configured storage engine
func (s *StoreFlags) open(ctx context.Context) (store.Store, error) {
	switch s.StoreType {
	case "postgres":
		if err := s.Postgres.validate(); err != nil {
			return nil, err
		}
		db, err := postgresstore.New(ctx, s.Postgres.config(s.Postgres.AutoMigrate))
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		log.Info().Msg("Using PostgreSQL store")
		return db, nil
	default:
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return memorystore.New(), nil
	}
}

// AdminFlags identify the system admin seeded at startup
type AdminFlags struct {
	Email    string `help:"system admin email" default:"admin@inspect.com" env:"INSPECT_ADMIN_EMAIL"`
	Name     string `help:"system admin name" default:"System Administrator" env:"INSPECT_ADMIN_NAME"`
	Phone    string `help:"system admin phone" default:"+1234567890" env:"INSPECT_ADMIN_PHONE"`
	Password string `help:"system admin password" default:"Admin@123456" env:"INSPECT_ADMIN_PASSWORD"`
}

func (a AdminFlags) config() bootstrap.Config {
	return bootstrap.Config{
		Email:    a.Email,
		Name:     a.Name,
		Phone:    a.Phone,
		Password: a.Password,
	}
}

// BcryptFlags configure secret hashing
type BcryptFlags struct {
	BcryptCost int `help:"bcrypt cost for password digests" default:"12" env:"INSPECT_BCRYPT_COST"`
}

func (b BcryptFlags) hasher() (*auth.Hasher, error) {
	hasher, err := auth.NewHasher(b.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("invalid bcrypt cost: %w", err)
	}
	return hasher, nil
}
