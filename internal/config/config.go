// Package config reads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SNAPSHOT_TZ in minimal containers

	"github.com/joho/godotenv"

	"github.com/5w1tchy/inventory-api/internal/repository/redisconnect"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	TLSCertFile string
	TLSKeyFile  string

	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	Redis          redisconnect.Options
	RedisKeyPrefix string

	RateLimitRPS       float64
	RateLimitBurst     int
	MaxBodySize        int64
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	Snapshot Snapshot
}

// Snapshot configures the daily catalog export. Disabled when Bucket is empty.
type Snapshot struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Keep            int
	Hour, Minute    int
	Location        *time.Location
}

func (s Snapshot) Enabled() bool { return s.Bucket != "" }

func (c Config) Production() bool { return strings.EqualFold(c.AppEnv, "production") }

func (c Config) TLSEnabled() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// Load reads .env (if present) and then the process environment.
// Fail-fast on bad config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv, applying defaults.
func FromLookup(getenv func(string) string) (Config, error) {
	e := env{get: getenv}
	c := Config{
		AppEnv:      e.str("APP_ENV", "development"),
		HTTPAddr:    e.str("HTTP_ADDR", ":3000"),
		TLSCertFile: e.str("TLS_CERT_FILE", ""),
		TLSKeyFile:  e.str("TLS_KEY_FILE", ""),

		StoreDriver: strings.ToLower(e.str("STORE_DRIVER", StoreMemory)),
		DatabaseURL: e.str("DATABASE_URL", ""),
		SQLitePath:  e.str("SQLITE_PATH", "data/inventory.db"),
		Redis: redisconnect.Options{
			URL:      e.str("REDIS_URL", ""),
			Addr:     e.str("REDIS_ADDR", ""),
			User:     e.str("REDIS_USER", ""),
			Password: e.str("REDIS_PASSWORD", ""),
			TLS:      e.boolean("REDIS_TLS", false),
		},
		RedisKeyPrefix: e.str("REDIS_KEY_PREFIX", "inventory"),

		RateLimitRPS:       e.float("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     e.integer("RATE_LIMIT_BURST", 20),
		MaxBodySize:        int64(e.integer("MAX_BODY_SIZE", 1<<20)),
		CORSAllowedOrigins: splitList(e.str("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		ShutdownTimeout:    e.duration("SHUTDOWN_TIMEOUT", 20*time.Second),

		Snapshot: Snapshot{
			Bucket:          e.str("SNAPSHOT_BUCKET", ""),
			Endpoint:        e.str("SNAPSHOT_ENDPOINT", ""),
			Region:          e.str("AWS_REGION", "auto"),
			AccessKeyID:     e.str("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: e.str("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:          e.str("SNAPSHOT_PREFIX", "snapshots/books/"),
			Keep:            e.integer("SNAPSHOT_KEEP", 7),
		},
	}

	hour, minute, err := clock(e.str("SNAPSHOT_AT", "03:00"))
	if err != nil {
		e.fail("SNAPSHOT_AT", err)
	}
	c.Snapshot.Hour, c.Snapshot.Minute = hour, minute
	loc, err := time.LoadLocation(e.str("SNAPSHOT_TZ", "UTC"))
	if err != nil {
		e.fail("SNAPSHOT_TZ", err)
	}
	c.Snapshot.Location = loc

	if len(e.errs) > 0 {
		return Config{}, errors.Join(e.errs...)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for STORE_DRIVER=postgres"))
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for STORE_DRIVER=sqlite"))
		}
	case StoreRedis:
		if !c.Redis.Configured() {
			errs = append(errs, errors.New("REDIS_URL or REDIS_ADDR is required for STORE_DRIVER=redis"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q: want postgres, sqlite, redis or memory", c.StoreDriver))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be > 0"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be >= 1"))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be > 0"))
	}
	if c.Snapshot.Keep < 0 {
		errs = append(errs, errors.New("SNAPSHOT_KEEP must be >= 0"))
	}
	return errors.Join(errs...)
}

// Warnings returns non-fatal hardening warnings to log on startup.
func (c Config) Warnings() []string {
	var warns []string

	if c.Snapshot.Enabled() && c.Snapshot.Keep == 0 {
		warns = append(warns, "SNAPSHOT_KEEP=0 keeps every snapshot; the bucket grows without bound")
	}

	// Production-specific nudges
	if c.Production() {
		if c.StoreDriver == StoreMemory {
			warns = append(warns, "STORE_DRIVER=memory loses every record on restart")
		}
		if !c.TLSEnabled() {
			warns = append(warns, "TLS_CERT_FILE/TLS_KEY_FILE not set; serving plain HTTP")
		}
		if strings.HasPrefix(c.Redis.URL, "redis://") {
			warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if c.Redis.URL == "" && c.Redis.Addr != "" {
			if c.Redis.Password == "" || c.Redis.User == "" {
				warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
			}
			if !c.Redis.TLS {
				warns = append(warns, "REDIS_ADDR without REDIS_TLS=true; traffic to Redis is unencrypted")
			}
		}
		for _, o := range c.CORSAllowedOrigins {
			if o == "*" {
				warns = append(warns, "CORS_ALLOWED_ORIGINS contains *; any site may call the API")
			}
		}
	}
	return warns
}

// --- helpers ---

type env struct {
	get  func(string) string
	errs []error
}

func (e *env) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		e.fail(key, fmt.Errorf("not a number: %q", s))
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		e.fail(key, fmt.Errorf("not a number: %q", s))
		return def
	}
	return f
}

func (e *env) boolean(key string, def bool) bool {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		e.fail(key, fmt.Errorf("not a boolean: %q", s))
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	s := e.str(key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		e.fail(key, fmt.Errorf("invalid duration %q", s))
		return def
	}
	return d
}

func clock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
