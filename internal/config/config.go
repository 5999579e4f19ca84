package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DB_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	JWT       JWTConfig       `yaml:"jwt" envPrefix:"JWT_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Matching  MatchingConfig  `yaml:"matching" envPrefix:"MATCHING_"`
	Scheduler SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
	Notifier  NotifierConfig  `yaml:"notifier" envPrefix:"NOTIFIER_"`
	SMTP      SMTPConfig      `yaml:"smtp" envPrefix:"SMTP_"`
	SendGrid  SendGridConfig  `yaml:"sendgrid" envPrefix:"SENDGRID_"`
	Kafka     KafkaConfig     `yaml:"kafka" envPrefix:"KAFKA_"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Database string `yaml:"database" env:"NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
}

// StorageConfig selects the match record store.
type StorageConfig struct {
	Type        string `yaml:"type" env:"TYPE"`           // "postgres" or "memory"
	SeedFile    string `yaml:"seed_file" env:"SEED_FILE"` // memory only
	AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"SECRET"`
	Issuer string `yaml:"issuer" env:"ISSUER"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"FORMAT"` // "json" or "text"
}

// MatchingConfig holds the lifecycle policy for match requests.
type MatchingConfig struct {
	RequestTTL  time.Duration `yaml:"request_ttl" env:"REQUEST_TTL"`
	JoinCutoff  time.Duration `yaml:"join_cutoff" env:"JOIN_CUTOFF"`
	MaxPageSize int           `yaml:"max_page_size" env:"MAX_PAGE_SIZE"`
	SyncBatch   int           `yaml:"sync_batch" env:"SYNC_BATCH"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	Embedded       bool   `yaml:"embedded" env:"EMBEDDED"`
	ExpireRequests string `yaml:"expire_requests" env:"EXPIRE_REQUESTS"`
	SyncBookings   string `yaml:"sync_bookings" env:"SYNC_BOOKINGS"`
}

// NotifierConfig controls the asynchronous event dispatcher and its sinks.
type NotifierConfig struct {
	QueueSize     int    `yaml:"queue_size" env:"QUEUE_SIZE"`
	Workers       int    `yaml:"workers" env:"WORKERS"`
	MaxRetries    int    `yaml:"max_retries" env:"MAX_RETRIES"`
	InApp         bool   `yaml:"in_app" env:"IN_APP"`
	EmailProvider string `yaml:"email_provider" env:"EMAIL_PROVIDER"` // "", "smtp" or "sendgrid"
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM"`
}

type SendGridConfig struct {
	APIKey   string `yaml:"api_key" env:"API_KEY"`
	From     string `yaml:"from" env:"FROM"`
	FromName string `yaml:"from_name" env:"FROM_NAME"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"ENABLED"`
	Brokers []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	Topic   string   `yaml:"topic" env:"TOPIC"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Unset variables leave the YAML values in place.
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "postgres"
	}
	switch c.Storage.Type {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Matching defaults
	if c.Matching.RequestTTL == 0 {
		c.Matching.RequestTTL = 72 * time.Hour
	}
	if c.Matching.RequestTTL < 0 || c.Matching.JoinCutoff < 0 {
		return fmt.Errorf("matching durations must not be negative")
	}
	if c.Matching.MaxPageSize <= 0 {
		c.Matching.MaxPageSize = 50
	}
	if c.Matching.SyncBatch <= 0 {
		c.Matching.SyncBatch = 100
	}

	// Scheduler defaults
	if c.Scheduler.ExpireRequests == "" {
		c.Scheduler.ExpireRequests = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.SyncBookings == "" {
		c.Scheduler.SyncBookings = "30 */10 * * * *" // every 10 minutes, offset by 30s
	}

	// Notifier defaults
	if c.Notifier.QueueSize <= 0 {
		c.Notifier.QueueSize = 256
	}
	if c.Notifier.Workers <= 0 {
		c.Notifier.Workers = 2
	}
	if c.Notifier.MaxRetries < 0 {
		c.Notifier.MaxRetries = 0
	}
	switch c.Notifier.EmailProvider {
	case "":
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
	case "sendgrid":
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid api key is required")
		}
	default:
		return fmt.Errorf("unsupported email provider: %s", c.Notifier.EmailProvider)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = "match-events"
		}
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
