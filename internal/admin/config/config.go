package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile     = ".env"
	defaultAddress     = ":8080"
	defaultBasePath    = "/admin"
	defaultEnvironment = "Development"
	defaultAuditTopic  = "admin.audit"
	defaultLogLevel    = "info"
)

// Config captures runtime configuration for the admin console, organised by concern.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Firebase FirebaseConfig
	Session  SessionConfig
	Audit    AuditConfig
	Orders   OrdersConfig
	LogLevel string
}

// ServerConfig configures the HTTP listener and routing.
type ServerConfig struct {
	Address          string
	BasePath         string
	Environment      string
	CSRFCookieSecure bool
}

// BackendConfig locates the REST backend. BaseURL is intentionally not validated; an empty
// value makes the process fall back to in-memory backends.
type BackendConfig struct {
	BaseURL string
}

// FirebaseConfig enables Firebase ID token verification when ProjectID is set.
type FirebaseConfig struct {
	ProjectID string
}

// SessionConfig holds cookie signing material. Empty keys are generated per process.
type SessionConfig struct {
	HashKey  string
	BlockKey string
}

// AuditConfig enables the Kafka audit stream when Brokers is non-empty.
type AuditConfig struct {
	Brokers []string
	Topic   string
}

// OrdersConfig tunes the order lifecycle controller.
type OrdersConfig struct {
	CoalesceDetail bool
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit key/value pairs which take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the process environment and
// explicit overrides, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotenv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if v, ok := options.envMap[key]; ok {
				return v, true
			}
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
	getEnv := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{
		Server: ServerConfig{
			Address:          getEnv("ADMIN_HTTP_ADDR", defaultAddress),
			BasePath:         getEnv("ADMIN_BASE_PATH", defaultBasePath),
			Environment:      getEnv("ADMIN_ENVIRONMENT", defaultEnvironment),
			CSRFCookieSecure: parseBool(getEnv("CSRF_COOKIE_SECURE", "")),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_URL", getEnv("VITE_URL_BACKEND", "")),
		},
		Firebase: FirebaseConfig{
			ProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Session: SessionConfig{
			HashKey:  getEnv("SESSION_HASH_KEY", ""),
			BlockKey: getEnv("SESSION_BLOCK_KEY", ""),
		},
		Audit: AuditConfig{
			Brokers: splitCSV(getEnv("AUDIT_KAFKA_BROKERS", "")),
			Topic:   getEnv("AUDIT_KAFKA_TOPIC", defaultAuditTopic),
		},
		Orders: OrdersConfig{
			CoalesceDetail: parseBool(getEnv("ORDERS_COALESCE_DETAIL", "")),
		},
		LogLevel: getEnv("LOG_LEVEL", defaultLogLevel),
	}
	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
