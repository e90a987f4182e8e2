package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
screening:
  swipe_threshold: 120
  session_idle_ttl: 5m
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, 120.0, cfg.Screening.SwipeThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Screening.SessionIdleTTL)
	assert.Equal(t, 3, cfg.Screening.StackDepth)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Auth.LoginLimit)
	assert.Equal(t, "application-decided", cfg.Camunda.MessageName)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.Camunda.RequestTimeout))
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_SNS_TOPIC", "arn:aws:sns:us-east-1:123456789012:decisions")
	t.Setenv("AUTH_LOGIN_LIMIT", "9")

	path := writeConfig(t, `
notifications:
  sns:
    enabled: true
    topic_arn: ${TEST_SNS_TOPIC}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:decisions", cfg.Notifications.SNS.TopicARN)
	assert.Equal(t, 9, cfg.Auth.LoginLimit)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"unknown driver", "store:\n  driver: mongo\n", "store.driver"},
		{"postgres without host", "store:\n  driver: postgres\n", "database.postgres.host is required"},
		{"sns without topic", "notifications:\n  sns:\n    enabled: true\n", "topic_arn"},
		{"ses without sender", "notifications:\n  ses:\n    enabled: true\n", "from_email"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad bcrypt cost", "auth:\n  bcrypt_cost: 2\n", "bcrypt_cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "screening", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=screening sslmode=disable", p.GetDSN())
}
