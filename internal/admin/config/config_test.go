package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/orders-admin/internal/admin/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(config.WithEnvFile(""), config.WithoutSystemEnv())
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "/admin", cfg.Server.BasePath)
	require.Equal(t, "Development", cfg.Server.Environment)
	require.Equal(t, "admin.audit", cfg.Audit.Topic)
	require.Empty(t, cfg.Audit.Brokers)
	require.Empty(t, cfg.Backend.BaseURL, "backend URL is not validated or defaulted")
	require.False(t, cfg.Orders.CoalesceDetail)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BACKEND_URL=http://from-dotenv\nADMIN_BASE_PATH=/console\nAUDIT_KAFKA_BROKERS=a:9092, b:9092\n"), 0o600))

	cfg, err := config.Load(
		config.WithEnvFile(envFile),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{
			"BACKEND_URL":            "http://from-map",
			"ORDERS_COALESCE_DETAIL": "true",
		}),
	)
	require.NoError(t, err)

	require.Equal(t, "http://from-map", cfg.Backend.BaseURL)
	require.Equal(t, "/console", cfg.Server.BasePath)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Audit.Brokers)
	require.True(t, cfg.Orders.CoalesceDetail)
}

func TestLoadAcceptsViteAlias(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(
		config.WithEnvFile(""),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{"VITE_URL_BACKEND": "http://localhost:8000"}),
	)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	t.Parallel()

	_, err := config.Load(config.WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), config.WithoutSystemEnv())
	require.NoError(t, err)
}
