// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Screening     ScreeningConfig     `mapstructure:"screening"`
	Store         StoreConfig         `mapstructure:"store"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       string        `mapstructure:"body_limit"`
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScreeningConfig tunes the swipe screening sessions.
type ScreeningConfig struct {
	SwipeThreshold float64       `mapstructure:"swipe_threshold"`
	StackDepth     int           `mapstructure:"stack_depth"`
	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
	MaxSessions    int           `mapstructure:"max_sessions"`
}

// StoreConfig selects the repository backend.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // memory | postgres
	SeedPath string `mapstructure:"seed_path"`
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds login and session settings.
type AuthConfig struct {
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
}

// NotificationConfig holds settings for decision notifications.
type NotificationConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
}

// CamundaConfig controls publishing decision messages to Zeebe.
type CamundaConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BrokerAddress  string        `mapstructure:"broker_address"`
	UsePlaintext   bool          `mapstructure:"use_plaintext"`
	MessageName    string        `mapstructure:"message_name"`
	MessageTTL     time.Duration `mapstructure:"message_ttl"`
	RequestTimeout int           `mapstructure:"request_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}
