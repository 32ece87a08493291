package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/slotbook/internal/domain/booking"
)

type Config struct {
	ListenAddr string
	AppEnv     string
	LogLevel   string

	// booking backend
	BookingAPIURL     string
	BookingAPIToken   string
	BookingAPITimeout time.Duration
	ProgramLabel      string
	DefaultTimezone   string

	FetchRetryAttempts  int
	FetchRetryBaseDelay time.Duration

	// optional stores; empty disables them
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PIIEncKey     []byte // optional, 32 bytes; seals contact details in the booking log

	SlotCacheTTL        time.Duration
	SlotRefreshInterval time.Duration

	// web
	SessionHashKey      []byte
	SessionBlockKey     []byte
	SessionTTL          time.Duration
	AdminPasswordHash   string
	SubmitRatePerMinute int
}

// FromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:        getenv("LISTEN_ADDR", ":8080"),
		AppEnv:            getenv("APP_ENV", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		BookingAPIURL:     strings.TrimRight(getenv("BOOKING_API_URL", "http://localhost:5000/api"), "/"),
		BookingAPIToken:   strings.TrimSpace(os.Getenv("BOOKING_API_TOKEN")),
		ProgramLabel:      getenv("PROGRAM_LABEL", booking.DefaultProgram),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
	}

	cfg.DefaultTimezone = booking.DefaultTimezone(getenv("DEFAULT_TIMEZONE", booking.FallbackTimezone))

	var err error
	if cfg.BookingAPITimeout, err = durationEnv("BOOKING_API_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FetchRetryBaseDelay, err = durationEnv("FETCH_RETRY_BASE_DELAY", 200*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SlotCacheTTL, err = durationEnv("SLOT_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SlotRefreshInterval, err = durationEnv("SLOT_REFRESH_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.FetchRetryAttempts, err = intEnv("FETCH_RETRY_ATTEMPTS", 3, 1); err != nil {
		return Config{}, err
	}
	if cfg.SubmitRatePerMinute, err = intEnv("SUBMIT_RATE_PER_MINUTE", 30, 1); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0, 0); err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(os.Getenv("SESSION_HASH_KEY")); v != "" {
		if cfg.SessionHashKey, err = decodeB64(v); err != nil {
			return Config{}, fmt.Errorf("SESSION_HASH_KEY: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_BLOCK_KEY")); v != "" {
		if cfg.SessionBlockKey, err = decodeB64(v); err != nil {
			return Config{}, fmt.Errorf("SESSION_BLOCK_KEY: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("PII_ENC_KEY")); v != "" {
		if cfg.PIIEncKey, err = decodeB64(v); err != nil {
			return Config{}, fmt.Errorf("PII_ENC_KEY: %w", err)
		}
		if len(cfg.PIIEncKey) != 32 {
			return Config{}, fmt.Errorf("PII_ENC_KEY must decode to 32 bytes (got %d)", len(cfg.PIIEncKey))
		}
	}

	return cfg, nil
}

// RequireSessionKeys checks the cookie keys the web server needs.
func (c Config) RequireSessionKeys() error {
	if len(c.SessionHashKey) == 0 || len(c.SessionBlockKey) == 0 {
		return fmt.Errorf("SESSION_HASH_KEY and SESSION_BLOCK_KEY are required (base64; run `slotbook keys`)")
	}
	switch len(c.SessionBlockKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("SESSION_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(c.SessionBlockKey))
	}
	return nil
}

func decodeB64(s string) ([]byte, error) {
	if b, err := os.ReadFile(s); err == nil {
		// allow pointing to file path for k8s secret mounts
		s = strings.TrimSpace(string(b))
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return d, nil
}

func intEnv(k string, def, min int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s", k)
	}
	return n, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
