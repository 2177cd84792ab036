// Package config assembles a gallery service from declarative server
// configuration, with environment variable overrides for the common
// deployment knobs.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-gallery/pkg/simplegallery"
	"github.com/tendant/simple-gallery/pkg/simplegallery/repo/memory"
	repopg "github.com/tendant/simple-gallery/pkg/simplegallery/repo/postgres"
	"github.com/tendant/simple-gallery/pkg/simplegallery/snapshot"
	fssnapshot "github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/fs"
	memorysnapshot "github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/memory"
	s3snapshot "github.com/tendant/simple-gallery/pkg/simplegallery/snapshot/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		Snapshot: SnapshotConfig{
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the gallery service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Snapshot storage configuration
	Snapshot SnapshotConfig

	// Authentication
	JWTSecret      string
	TokenTTL       time.Duration
	AdminUsername  string
	AdminSecret    string // bootstrap secret, injected, never stored in code
	BootstrapAdmin bool

	// Server options
	EnableEventLogging bool
}

// SnapshotConfig represents configuration for the snapshot store backend
type SnapshotConfig struct {
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Snapshot.Type {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported snapshot store type: %s", c.Snapshot.Type)
	}

	if c.BootstrapAdmin {
		if c.AdminUsername == "" {
			return errors.New("admin_username is required to bootstrap the admin account")
		}
		if c.AdminSecret == "" {
			return errors.New("admin_secret is required to bootstrap the admin account")
		}
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simplegallery.Service, error) {
	repo, err := c.BuildRepository(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	return c.BuildServiceWithRepository(repo)
}

// BuildServiceWithRepository creates a Service around an existing repository.
func (c *ServerConfig) BuildServiceWithRepository(repo simplegallery.Repository) (simplegallery.Service, error) {
	options := []simplegallery.Option{
		simplegallery.WithRepository(repo),
	}

	if c.EnableEventLogging {
		options = append(options, simplegallery.WithEventSink(simplegallery.NewLoggingEventSink(slog.Default())))
	}

	return simplegallery.New(options...)
}

// BuildRepository creates a Repository based on the configuration
func (c *ServerConfig) BuildRepository(ctx context.Context) (simplegallery.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := repopg.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// BuildSnapshotStore creates a snapshot Store based on the configuration
func (c *ServerConfig) BuildSnapshotStore() (snapshot.Store, error) {
	switch c.Snapshot.Type {
	case "memory":
		return memorysnapshot.New(), nil

	case "fs":
		fsConfig := fssnapshot.Config{
			BaseDir: getString(c.Snapshot.Config, "base_dir", "./data/snapshots"),
		}
		return fssnapshot.New(fsConfig)

	case "s3":
		s3Config := s3snapshot.Config{
			Region:                 getString(c.Snapshot.Config, "region", "us-east-1"),
			Bucket:                 getString(c.Snapshot.Config, "bucket", ""),
			Prefix:                 getString(c.Snapshot.Config, "prefix", ""),
			AccessKeyID:            getString(c.Snapshot.Config, "access_key_id", ""),
			SecretAccessKey:        getString(c.Snapshot.Config, "secret_access_key", ""),
			Endpoint:               getString(c.Snapshot.Config, "endpoint", ""),
			UsePathStyle:           getBool(c.Snapshot.Config, "use_path_style", false),
			CreateBucketIfNotExist: getBool(c.Snapshot.Config, "create_bucket_if_not_exist", false),
		}
		return s3snapshot.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported snapshot store type: %s", c.Snapshot.Type)
	}
}

// BuildSnapshotManager creates a snapshot Manager from the configuration
func (c *ServerConfig) BuildSnapshotManager() (*snapshot.Manager, error) {
	store, err := c.BuildSnapshotStore()
	if err != nil {
		return nil, err
	}
	return snapshot.NewManager(store), nil
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
	}
	return defaultValue
}
