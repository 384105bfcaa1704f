package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig
	Registry RegistryConfig
	Log      LogConfig
	Trace    TraceConfig
	Watch    WatchConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

// RegistryConfig selects the validator pipeline.
type RegistryConfig struct {
	AllowOverrides bool // drop the override check
	Strict         bool // add the cycle and namespace-collision checks
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

type TraceConfig struct {
	Exporter string // none | stdout | otlp
	Endpoint string
}

type WatchConfig struct {
	Debounce time.Duration
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "go-wiring"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
			Port:  env("WIRING_PORT", "8000"),
		},
		Registry: RegistryConfig{
			AllowOverrides: envBool("WIRING_ALLOW_OVERRIDES", false),
			Strict:         envBool("WIRING_STRICT", false),
		},
		Log: LogConfig{
			Level:  env("WIRING_LOG_LEVEL", "info"),
			Format: env("WIRING_LOG_FORMAT", "text"),
		},
		Trace: TraceConfig{
			Exporter: env("WIRING_TRACE_EXPORTER", "none"),
			Endpoint: env("WIRING_OTLP_ENDPOINT", "localhost:4317"),
		},
		Watch: WatchConfig{
			Debounce: time.Duration(GetInt("WIRING_WATCH_DEBOUNCE_MS", 250)) * time.Millisecond,
		},
	}
}

// Addr is the listen address of the inspection server.
func (c *Config) Addr() string { return ":" + c.App.Port }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
