package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/joho/godotenv"
)

// Load reads the .env file specified by WUMPUS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("WUMPUS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// StoreBackend returns the session store backend.
// Defaults to "postgres" if not set.
// Valid values: postgres, badger
func StoreBackend() string {
	b := os.Getenv("STORE_BACKEND")
	if b == "" {
		return "postgres"
	}
	return b
}

// BadgerPath is the Badger data directory. Empty means in-memory.
func BadgerPath() string {
	return os.Getenv("BADGER_PATH")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// MaxGridSize is the largest board a session may use. It never exceeds
// inference.MaxGridSize.
func MaxGridSize() int {
	n, err := strconv.Atoi(os.Getenv("MAX_GRID_SIZE"))
	if err != nil || n <= 0 || n > inference.MaxGridSize {
		return inference.MaxGridSize
	}
	return n
}

// QueryTimeout bounds a single safety query. Defaults to 30s.
func QueryTimeout() time.Duration {
	return durationOr("QUERY_TIMEOUT", 30*time.Second)
}

// SATCrossCheck enables re-deriving every answer with the SAT encoding.
func SATCrossCheck() bool {
	v, err := strconv.ParseBool(os.Getenv("SAT_CROSSCHECK"))
	return err == nil && v
}

// SessionTTL is how long a session may sit idle before the expirer removes it.
// Defaults to 24h.
func SessionTTL() time.Duration {
	return durationOr("SESSION_TTL", 24*time.Hour)
}

// ExpirerInterval defaults to 1h.
func ExpirerInterval() time.Duration {
	return durationOr("EXPIRER_INTERVAL", time.Hour)
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
