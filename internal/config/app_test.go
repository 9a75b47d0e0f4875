package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.HTTPServer.Port)
	require.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	require.Equal(t, 5*time.Minute, cfg.Rates.CacheTTL)
	require.Equal(t, 10*time.Second, cfg.Rates.FetchTimeout)
	require.Equal(t, 4*time.Minute, cfg.Rates.WarmupInterval)
	require.Equal(t, 100, cfg.Quota.WeekdayLimit)
	require.Equal(t, 200, cfg.Quota.WeekendLimit)
	require.Equal(t, "UTC", cfg.Quota.Location)
	require.Equal(t, int32(10), cfg.DbServer.MaxConns)
	require.Equal(t, 5*time.Second, cfg.DbServer.ConnectTimeout)
	require.Equal(t, 10, cfg.HTTPClient.TimeoutSeconds)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Empty(t, cfg.KafkaBrokers())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
http_server:
  port: "9090"
db_server:
  host: localhost
  port: "5432"
  user: fx
  pass: fx
  name: fxconvert
storage:
  driver: sqlite
sqlite:
  path: /tmp/fx.db
rates:
  warmup_interval: 0s
  supported_currencies: [USD, EUR]
auth:
  jwt_secret: from-file
kafka:
  brokers: ["k1:9092"]
`)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.HTTPServer.Port)
	require.Equal(t, "db.internal", cfg.DbServer.Host)
	require.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "/tmp/fx.db", cfg.SQLite.Path)
	require.Equal(t, time.Duration(0), cfg.Rates.WarmupInterval)
	require.Equal(t, []string{"USD", "EUR"}, cfg.Rates.SupportedCurrencies)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers())
	require.Equal(t,
		"user=fx password=fx host=db.internal port=5432 dbname=fxconvert sslmode=disable pool_max_conns=10",
		cfg.DbServer.GetConnectionStr())
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing secret", content: "storage:\n  driver: postgres\n", wantErr: "auth.jwt_secret must be set"},
		{name: "unknown driver", content: "storage:\n  driver: mongo\nauth:\n  jwt_secret: s\n", wantErr: `unknown storage driver "mongo"`},
		{name: "bad limits", content: "quota:\n  weekday_limit: 0\nauth:\n  jwt_secret: s\n", wantErr: "quota limits must be positive"},
		{name: "lowercase code", content: "rates:\n  supported_currencies: [USD, eur]\nauth:\n  jwt_secret: s\n", wantErr: `invalid code "eur" in rates.supported_currencies`},
		{name: "code with digit", content: "rates:\n  supported_currencies: [EURO1]\nauth:\n  jwt_secret: s\n", wantErr: `invalid code "EURO1" in rates.supported_currencies`},
		{name: "code too short", content: "rates:\n  supported_currencies: [EU]\nauth:\n  jwt_secret: s\n", wantErr: `invalid code "EU" in rates.supported_currencies`},
		{name: "bad location", content: "quota:\n  location: Mars/Olympus\nauth:\n  jwt_secret: s\n", wantErr: "invalid quota.location"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "http_server: [unterminated"))
	require.ErrorContains(t, err, "error reading config file")
}

func TestKafkaBrokers_SplitsCommaSeparated(t *testing.T) {
	cfg := AppConfig{Kafka: Kafka{Brokers: []string{"k1:9092, k2:9092", "", "k3:9092"}}}
	require.Equal(t, []string{"k1:9092", "k2:9092", "k3:9092"}, cfg.KafkaBrokers())
}
