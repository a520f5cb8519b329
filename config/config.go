package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 90 * time.Second
	defaultSessionMaxAge    = 24 * time.Hour
	defaultExportTimeout    = 45 * time.Second
	defaultPurchaseLatency  = "1s-3s"
	productionEnv           = "production"
	minSessionHashKeyLength = 32
)

// DefaultClientBaseURL is the backend the terminal client talks to when CHEMCART_URL is unset
const DefaultClientBaseURL = "http://localhost:8080"

// ErrInvalidConfig wraps every configuration validation failure
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the settings for the server and the terminal client
type Config struct {
	Env string

	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DatabaseURL is DATABASE_URL or a DSN built from DB_HOST, DB_PORT, DB_USER,
	// DB_PASSWORD, DB_NAME and DB_SSLMODE. Empty when neither is set.
	DatabaseURL string

	SessionHashKey  []byte
	SessionBlockKey []byte
	SessionMaxAge   time.Duration
	SecureCookies   bool

	PurchaseLatencyMin time.Duration
	PurchaseLatencyMax time.Duration

	ChromePath    string
	ExportTimeout time.Duration

	LogLevel string

	ClientBaseURL string
}

// IsProduction reports whether ENV is "production"
func (c Config) IsProduction() bool {
	return c.Env == productionEnv
}

// Addr is the listen address, on all interfaces
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// LoadDotEnv loads .env over the process environment unless ENV is
// production. A missing file is not an error.
func LoadDotEnv(path string) (bool, error) {
	if os.Getenv("ENV") == productionEnv {
		return false, nil
	}
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Overload(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Env:           get("ENV"),
		Port:          strings.TrimPrefix(get("PORT"), ":"),
		DatabaseURL:   databaseURL(get),
		ChromePath:    get("CHROME_PATH"),
		LogLevel:      strings.ToLower(get("LOG_LEVEL")),
		ClientBaseURL: get("CHEMCART_URL"),
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.ClientBaseURL == "" {
		cfg.ClientBaseURL = DefaultClientBaseURL
	}

	var err error
	if cfg.ReadTimeout, err = durationOr(get("READ_TIMEOUT"), defaultReadTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: READ_TIMEOUT: %v", ErrInvalidConfig, err)
	}
	if cfg.WriteTimeout, err = durationOr(get("WRITE_TIMEOUT"), defaultWriteTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: WRITE_TIMEOUT: %v", ErrInvalidConfig, err)
	}
	if cfg.SessionMaxAge, err = durationOr(get("SESSION_MAX_AGE"), defaultSessionMaxAge); err != nil {
		return Config{}, fmt.Errorf("%w: SESSION_MAX_AGE: %v", ErrInvalidConfig, err)
	}
	if cfg.ExportTimeout, err = durationOr(get("EXPORT_TIMEOUT"), defaultExportTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: EXPORT_TIMEOUT: %v", ErrInvalidConfig, err)
	}

	latency := get("PURCHASE_LATENCY")
	if latency == "" {
		latency = defaultPurchaseLatency
	}
	if cfg.PurchaseLatencyMin, cfg.PurchaseLatencyMax, err = ParseLatencyRange(latency); err != nil {
		return Config{}, fmt.Errorf("%w: PURCHASE_LATENCY: %v", ErrInvalidConfig, err)
	}

	if raw := get("SECURE_COOKIES"); raw != "" {
		if cfg.SecureCookies, err = strconv.ParseBool(raw); err != nil {
			return Config{}, fmt.Errorf("%w: SECURE_COOKIES: %v", ErrInvalidConfig, err)
		}
	} else {
		cfg.SecureCookies = cfg.IsProduction()
	}

	cfg.SessionHashKey = []byte(get("SESSION_HASH_KEY"))
	if block := get("SESSION_BLOCK_KEY"); block != "" {
		cfg.SessionBlockKey = []byte(block)
	}
	if err := cfg.validateSessionKeys(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validateSessionKeys() error {
	if len(c.SessionHashKey) == 0 {
		if c.IsProduction() {
			return fmt.Errorf("%w: SESSION_HASH_KEY is required in production", ErrInvalidConfig)
		}
		return nil
	}
	if len(c.SessionHashKey) < minSessionHashKeyLength {
		return fmt.Errorf("%w: SESSION_HASH_KEY must be at least %d bytes", ErrInvalidConfig, minSessionHashKeyLength)
	}
	switch len(c.SessionBlockKey) {
	case 0, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: SESSION_BLOCK_KEY must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
}

// ParseLatencyRange parses "0", "2s" or "1s-3s" into a min/max pair
func ParseLatencyRange(raw string) (time.Duration, time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, 0, nil
	}

	lo, hi, found := strings.Cut(raw, "-")
	minDur, err := time.ParseDuration(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, err
	}
	maxDur := minDur
	if found {
		if maxDur, err = time.ParseDuration(strings.TrimSpace(hi)); err != nil {
			return 0, 0, err
		}
	}
	if minDur < 0 || maxDur < minDur {
		return 0, 0, fmt.Errorf("invalid range %q", raw)
	}
	return minDur, maxDur, nil
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

func databaseURL(get func(string) string) string {
	if url := get("DATABASE_URL"); url != "" {
		return url
	}

	host := get("DB_HOST")
	user := get("DB_USER")
	dbname := get("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	port := get("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslmode := get("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, get("DB_PASSWORD"), dbname, sslmode)
}
