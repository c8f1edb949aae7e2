package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/markoalleno/response-time-sub001/internal/domain/responses/entity"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Platform  Platform  `yaml:"platform"`
	Database  Database  `yaml:"database"`
	Scheduler Scheduler `yaml:"scheduler"`
	S3        S3        `yaml:"s3"`
	Analytics Analytics `yaml:"analytics"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Platform holds messaging-platform gateway configuration
type Platform struct {
	BaseURL string `yaml:"base_url" env:"PLATFORM_BASE_URL" env-default:"https://gateway.internal/v1"`
}

// Database holds database configuration
type Database struct {
	// PostgreSQL
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Scheduler holds background sync scheduler configuration
type Scheduler struct {
	Enabled   bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"false"`
	Interval  time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"10m"`
	SyncAge   time.Duration `yaml:"sync_age" env:"SCHEDULER_SYNC_AGE" env-default:"30m"`
	BatchSize int           `yaml:"batch_size" env:"SCHEDULER_BATCH_SIZE" env-default:"5"`
}

// S3 holds S3/MinIO snapshot archive configuration
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"snapshots"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
}

// Analytics holds response matching and scoring preferences
type Analytics struct {
	MatchingWindowDays  int     `yaml:"matching_window_days" env:"ANALYTICS_MATCHING_WINDOW_DAYS" env-default:"7"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"ANALYTICS_CONFIDENCE_THRESHOLD" env-default:"0.7"`
	WorkingHoursStart   int     `yaml:"working_hours_start" env:"ANALYTICS_WORKING_HOURS_START" env-default:"9"`
	WorkingHoursEnd     int     `yaml:"working_hours_end" env:"ANALYTICS_WORKING_HOURS_END" env-default:"17"`
	Timezone            string  `yaml:"timezone" env:"ANALYTICS_TIMEZONE" env-default:"UTC"`
	MinInsightSamples   int     `yaml:"min_insight_samples" env:"ANALYTICS_MIN_INSIGHT_SAMPLES" env-default:"5"`
}

// Settings converts the analytics configuration into domain settings,
// falling back to the defaults for anything left unset.
func (a Analytics) Settings() entity.Settings {
	s := entity.DefaultSettings()
	if a.MatchingWindowDays > 0 {
		s.MatchingWindowDays = a.MatchingWindowDays
	}
	if a.ConfidenceThreshold > 0 {
		s.ConfidenceThreshold = a.ConfidenceThreshold
	}
	if a.WorkingHoursEnd > a.WorkingHoursStart {
		s.WorkingHoursStart = a.WorkingHoursStart
		s.WorkingHoursEnd = a.WorkingHoursEnd
	}
	if a.Timezone != "" {
		s.Timezone = a.Timezone
	}
	if a.MinInsightSamples > 0 {
		s.MinInsightSamples = a.MinInsightSamples
	}
	return s
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
