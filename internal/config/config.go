package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress       string
	DatabaseURI      string
	DBMaxConns       int
	DBMaxIdleTime    time.Duration
	JWTSecret        string
	SessionTTL       time.Duration
	RememberTTL      time.Duration
	BcryptCost       int
	LogLevel         slog.Level
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
	LogMaxAgeDays    int
	ShutdownTimeout  time.Duration
	SyncInterval     time.Duration
	SyncBatchSize    int
	WorkerPoolSize   int
	ZonesFile        string
	DeliveryTimezone string

	ShopifyShop          string
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyAPIKey        string
	ShopifyAPISecret     string
	ShopifyScopes        string
	ShopifyAppURL        string
	ShopifyWebhookSecret string

	WebhookInboxDir  string
	KafkaBrokers     []string
	OrderEventsTopic string
	OrderNodeID      int64

	AdminEmail    string
	AdminPassword string
}

// DefaultJWTSecret signs session tokens when no secret is configured.
const DefaultJWTSecret = "change-me-in-production"

const (
	defaultRunAddress       = ":8080"
	defaultShutdownTimeout  = 10 * time.Second
	defaultDBMaxConns       = 10
	defaultEnvFile          = ".env"
	defaultLogMaxSizeMB     = 100
	defaultLogMaxBackups    = 5
	defaultLogMaxAgeDays    = 28
	defaultDBMaxIdleTime    = 5 * time.Minute
	defaultSessionTTL       = 24 * time.Hour
	defaultRememberTTL      = 7 * 24 * time.Hour
	defaultSyncInterval     = 5 * time.Minute
	defaultSyncBatchSize    = 20
	defaultWorkerPoolSize   = 4
	defaultZonesFile        = "config/zones.yaml"
	defaultDeliveryTimezone = "Europe/Copenhagen"
	defaultAPIVersion       = "2024-10"
	defaultScopes           = "read_orders,write_orders,read_fulfillments,write_fulfillments"
	defaultWebhookInboxDir  = "data/webhooks"
	defaultOrderEventsTopic = "florist.order-events"
	defaultOrderNodeID      = 1
	maxOrderNodeID          = 1023
)

// Load parses configuration from flags and environment variables. Variables
// from ENV_FILE (default .env) fill in what the process environment lacks.
func Load() (*Config, error) {
	lookup, err := withEnvFile(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], lookup)
}

type envLookup func(string) (string, bool)

// withEnvFile layers the dotenv file named by ENV_FILE under lookup. A
// missing default file is not an error; a missing explicit one is.
func withEnvFile(lookup envLookup) (envLookup, error) {
	path, explicit := lookup("ENV_FILE")
	if !explicit || path == "" {
		path, explicit = defaultEnvFile, false
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		DBMaxConns:           getInt(lookup, "DB_MAX_CONNS", defaultDBMaxConns),
		DBMaxIdleTime:        getDuration(lookup, "DB_MAX_IDLE_TIME", defaultDBMaxIdleTime),
		JWTSecret:            getString(lookup, "JWT_SECRET", DefaultJWTSecret),
		LogFile:              getString(lookup, "LOG_FILE", ""),
		LogMaxSizeMB:         getInt(lookup, "LOG_MAX_SIZE_MB", defaultLogMaxSizeMB),
		LogMaxBackups:        getInt(lookup, "LOG_MAX_BACKUPS", defaultLogMaxBackups),
		LogMaxAgeDays:        getInt(lookup, "LOG_MAX_AGE_DAYS", defaultLogMaxAgeDays),
		SessionTTL:           getDuration(lookup, "SESSION_TTL", defaultSessionTTL),
		RememberTTL:          getDuration(lookup, "REMEMBER_TTL", defaultRememberTTL),
		BcryptCost:           getInt(lookup, "BCRYPT_COST", 0),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SyncInterval:         getDuration(lookup, "SYNC_INTERVAL", defaultSyncInterval),
		SyncBatchSize:        getInt(lookup, "SYNC_BATCH_SIZE", defaultSyncBatchSize),
		WorkerPoolSize:       getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ZonesFile:            getString(lookup, "ZONES_FILE", defaultZonesFile),
		DeliveryTimezone:     getString(lookup, "DELIVERY_TIMEZONE", defaultDeliveryTimezone),
		ShopifyShop:          getString(lookup, "SHOPIFY_SHOP", ""),
		ShopifyAccessToken:   getString(lookup, "SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:    getString(lookup, "SHOPIFY_API_VERSION", defaultAPIVersion),
		ShopifyAPIKey:        getString(lookup, "SHOPIFY_API_KEY", ""),
		ShopifyAPISecret:     getString(lookup, "SHOPIFY_API_SECRET", ""),
		ShopifyScopes:        getString(lookup, "SHOPIFY_SCOPES", defaultScopes),
		ShopifyAppURL:        getString(lookup, "SHOPIFY_APP_URL", ""),
		ShopifyWebhookSecret: getString(lookup, "SHOPIFY_WEBHOOK_SECRET", ""),
		WebhookInboxDir:      getString(lookup, "WEBHOOK_INBOX_DIR", defaultWebhookInboxDir),
		OrderEventsTopic:     getString(lookup, "ORDER_EVENTS_TOPIC", defaultOrderEventsTopic),
		OrderNodeID:          int64(getInt(lookup, "ORDER_NODE_ID", defaultOrderNodeID)),
		AdminEmail:           getString(lookup, "ADMIN_EMAIL", ""),
		AdminPassword:        getString(lookup, "ADMIN_PASSWORD", ""),
	}

	fs := flag.NewFlagSet("floristportal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		syncIntervalStr    = cfg.SyncInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		logLevelStr        = getString(lookup, "LOG_LEVEL", "info")
		kafkaBrokersStr    = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.IntVar(&cfg.DBMaxConns, "db-max-conns", cfg.DBMaxConns, "Maximum PostgreSQL connections")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write logs to this rotated file")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent sync workers")
	fs.StringVar(&syncIntervalStr, "sync-interval", syncIntervalStr, "Interval between Shopify order polls")
	fs.IntVar(&cfg.SyncBatchSize, "sync-batch", cfg.SyncBatchSize, "Orders fetched per poll")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.ZonesFile, "zones", cfg.ZonesFile, "Zone table file (YAML or JSON)")
	fs.StringVar(&cfg.DeliveryTimezone, "tz", cfg.DeliveryTimezone, "Timezone for delivery days")
	fs.StringVar(&cfg.ShopifyShop, "shop", cfg.ShopifyShop, "Shopify shop domain")
	fs.StringVar(&cfg.WebhookInboxDir, "inbox", cfg.WebhookInboxDir, "Webhook inbox directory")
	fs.StringVar(&kafkaBrokersStr, "kafka", kafkaBrokersStr, "Comma separated Kafka brokers for order events")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SyncInterval, err = time.ParseDuration(syncIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sync interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.SyncBatchSize <= 0 {
		cfg.SyncBatchSize = defaultSyncBatchSize
	}

	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}

	if cfg.DBMaxConns <= 0 {
		cfg.DBMaxConns = defaultDBMaxConns
	}

	if cfg.RememberTTL < cfg.SessionTTL {
		return nil, fmt.Errorf("remember ttl %s is shorter than session ttl %s", cfg.RememberTTL, cfg.SessionTTL)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.OrderNodeID < 0 || cfg.OrderNodeID > maxOrderNodeID {
		return nil, fmt.Errorf("order node id must be between 0 and %d", maxOrderNodeID)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if _, err := time.LoadLocation(cfg.DeliveryTimezone); err != nil {
		return nil, fmt.Errorf("invalid delivery timezone: %w", err)
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
