package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

// Config is the process configuration, read from the environment (and a
// .env file in development).
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Passwords PasswordConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	WebSocket WebSocketConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Tickets   TicketsConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig sizes the pgx pool.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the identity cache. An empty Addr disables it.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	IdentityTTL time.Duration
	KeyPrefix   string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
}

type PasswordConfig struct {
	BcryptCost int
}

// RateLimitConfig has three tiers: every request by client IP, the login
// endpoint by client IP, and authenticated requests by caller.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	AuthRPS           float64
	AuthBurst         int
	CallerRPS         float64
	CallerBurst       int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// TicketsConfig holds the status/priority catalog and paging bounds.
// Catalog is loaded from CatalogFile when set, otherwise the built-in one.
type TicketsConfig struct {
	CatalogFile     string
	Catalog         *domain.Catalog
	DefaultPageSize int
	MaxPageSize     int
}

type AppConfig struct {
	Name               string
	Version            string
	Environment        string
	BootstrapAdmin     string
	BootstrapAdminPass string
}

// catalogFile is the YAML shape of TICKET_CATALOG_FILE.
type catalogFile struct {
	Statuses        []string `yaml:"statuses"`
	Priorities      []string `yaml:"priorities"`
	InitialStatus   string   `yaml:"initial_status"`
	AssignedStatus  string   `yaml:"assigned_status"`
	DefaultPriority string   `yaml:"default_priority"`
}

// Load reads the configuration and validates it. Malformed numeric,
// boolean and duration values are reported rather than silently defaulted.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var e env
	cfg := &Config{
		Server: ServerConfig{
			Port:            e.str("SERVER_PORT", ":8080"),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     e.duration("SERVER_IDLE_TIMEOUT", time.Minute),
			ShutdownTimeout: e.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             e.str("DATABASE_URL", ""),
			MaxConns:        e.integer("DB_MAX_CONNS", 25),
			MinConns:        e.integer("DB_MIN_CONNS", 5),
			ConnMaxLifetime: e.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: e.duration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:     e.boolean("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:        e.str("REDIS_ADDR", ""),
			Password:    e.str("REDIS_PASSWORD", ""),
			DB:          e.integer("REDIS_DB", 0),
			IdentityTTL: e.duration("REDIS_IDENTITY_TTL", 5*time.Minute),
			KeyPrefix:   e.str("REDIS_KEY_PREFIX", "helpdesk:identity:"),
		},
		JWT: JWTConfig{
			Secret:         e.str("JWT_SECRET", ""),
			AccessTokenTTL: e.duration("JWT_ACCESS_TOKEN_TTL", time.Hour),
			Issuer:         e.str("JWT_ISSUER", "helpdesk"),
		},
		Passwords: PasswordConfig{
			BcryptCost: e.integer("BCRYPT_COST", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:           e.boolean("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: e.float("RATE_LIMIT_RPS", 10),
			BurstSize:         e.integer("RATE_LIMIT_BURST", 20),
			AuthRPS:           e.float("RATE_LIMIT_AUTH_RPS", 1),
			AuthBurst:         e.integer("RATE_LIMIT_AUTH_BURST", 5),
			CallerRPS:         e.float("RATE_LIMIT_CALLER_RPS", 5),
			CallerBurst:       e.integer("RATE_LIMIT_CALLER_BURST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins:   e.list("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:   e.list("CORS_ALLOWED_METHODS", "GET", "POST", "PUT", "DELETE", "OPTIONS"),
			AllowedHeaders:   e.list("CORS_ALLOWED_HEADERS", "Accept", "Authorization", "Content-Type", "X-Request-ID"),
			AllowCredentials: e.boolean("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           e.integer("CORS_MAX_AGE", 300),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  e.list("WS_ALLOWED_ORIGINS"),
			ReadBufferSize:  e.integer("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: e.integer("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    e.duration("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        e.duration("WS_PONG_WAIT", time.Minute),
		},
		Logging: LoggingConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: e.boolean("METRICS_ENABLED", true),
			Path:    e.str("METRICS_PATH", "/metrics"),
		},
		Tickets: TicketsConfig{
			CatalogFile:     e.str("TICKET_CATALOG_FILE", ""),
			DefaultPageSize: e.integer("TICKET_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:     e.integer("TICKET_MAX_PAGE_SIZE", 100),
		},
		App: AppConfig{
			Name:               e.str("APP_NAME", "helpdesk"),
			Version:            e.str("APP_VERSION", "dev"),
			Environment:        e.str("APP_ENV", "development"),
			BootstrapAdmin:     e.str("BOOTSTRAP_ADMIN_EMAIL", ""),
			BootstrapAdminPass: e.str("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}
	if err := e.err(); err != nil {
		return nil, err
	}

	catalog, err := LoadCatalog(cfg.Tickets.CatalogFile)
	if err != nil {
		return nil, err
	}
	cfg.Tickets.Catalog = catalog

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Database.URL == "" {
		fail("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		fail("JWT_SECRET is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		fail("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Tickets.DefaultPageSize < 1 {
		fail("TICKET_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.Tickets.MaxPageSize < c.Tickets.DefaultPageSize {
		fail("TICKET_MAX_PAGE_SIZE cannot be less than TICKET_DEFAULT_PAGE_SIZE")
	}
	if (c.App.BootstrapAdmin == "") != (c.App.BootstrapAdminPass == "") {
		fail("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		fail("METRICS_PATH must start with /")
	}

	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			fail("JWT_SECRET must be at least 32 characters in production")
		}
		if len(c.WebSocket.AllowedOrigins) == 0 {
			fail("WS_ALLOWED_ORIGINS must be set in production")
		}
		if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
			fail("CORS_ALLOWED_ORIGINS cannot be * when CORS_ALLOW_CREDENTIALS is set in production")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("configuration errors:\n  - " + strings.Join(problems, "\n  - "))
}

func (c *Config) IsDevelopment() bool { return c.App.Environment == "development" }

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

// RedisEnabled reports whether the identity cache should be used.
func (c *Config) RedisEnabled() bool { return c.Redis.Addr != "" }

// String is safe to log: credentials in the database URL and the JWT
// secret are left out.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: %s, DB: %s, Redis: %s, RateLimit: %t, Environment: %s}",
		c.Server.Port, redactURL(c.Database.URL), c.Redis.Addr, c.RateLimit.Enabled, c.App.Environment)
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[REDACTED]"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

// env reads typed variables and collects parse failures.
type env struct {
	problems []error
}

func (e *env) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	return lookup(e, key, fallback, strconv.Atoi)
}

func (e *env) float(key string, fallback float64) float64 {
	return lookup(e, key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e *env) boolean(key string, fallback bool) bool {
	return lookup(e, key, fallback, strconv.ParseBool)
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	return lookup(e, key, fallback, time.ParseDuration)
}

// list splits a comma separated variable, dropping blank entries.
func (e *env) list(key string, fallback ...string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string{}, fallback...)
	}
	return out
}

func (e *env) err() error {
	return errors.Join(e.problems...)
}

func lookup[T any](e *env, key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		e.problems = append(e.problems, fmt.Errorf("%s: invalid value %q", key, raw))
		return fallback
	}
	return v
}

// LoadCatalog reads the ticket catalog from a YAML file. An empty path
// yields the built-in catalog.
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticket catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse ticket catalog %s: %w", path, err)
	}

	defaults := domain.DefaultCatalog()
	if file.InitialStatus == "" {
		file.InitialStatus = string(defaults.InitialStatus)
	}
	if file.AssignedStatus == "" {
		file.AssignedStatus = string(defaults.AssignedStatus)
	}
	if file.DefaultPriority == "" {
		file.DefaultPriority = string(defaults.DefaultPriority)
	}

	catalog, err := domain.NewCatalog(file.Statuses, file.Priorities, file.InitialStatus, file.AssignedStatus, file.DefaultPriority)
	if err != nil {
		return nil, fmt.Errorf("ticket catalog %s: %w", path, err)
	}
	return catalog, nil
}
