package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Course   CourseConfig   `mapstructure:"course"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig staff login settings
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CourseConfig business constants of the bartending course.
// Per-cohort cadence/sessions override the global defaults.
type CourseConfig struct {
	SessionCount     int            `mapstructure:"session_count"`
	RequiredHours    float64        `mapstructure:"required_hours"`
	Weekdays         []string       `mapstructure:"weekdays"`
	MaxLookaheadDays int            `mapstructure:"max_lookahead_days"`
	SessionStart     string         `mapstructure:"session_start"` // HH:MM:SS
	SessionEnd       string         `mapstructure:"session_end"`   // HH:MM:SS
	SessionTitle     string         `mapstructure:"session_title"`
	Timezone         string         `mapstructure:"timezone"`
	BackfillLockTTL  time.Duration  `mapstructure:"backfill_lock_ttl"`
	Cohorts          []CohortConfig `mapstructure:"cohorts"`
}

// CohortConfig one enrollment group
type CohortConfig struct {
	Label     string `mapstructure:"label"`
	StartDate string `mapstructure:"start_date"` // YYYY-MM-DD
	Cadence   string `mapstructure:"cadence"`    // weekly | weekdays
	Sessions  int    `mapstructure:"sessions"`
}

// defaultCohorts the labels offered on the enrollment form
var defaultCohorts = []map[string]interface{}{
	{"label": "May 10 - 31", "start_date": "2025-05-10", "cadence": "weekly", "sessions": 4},
	{"label": "June 14 - July 5", "start_date": "2025-06-14", "cadence": "weekly", "sessions": 4},
	{"label": "July 12 - August 2", "start_date": "2025-07-12", "cadence": "weekly", "sessions": 4},
	{"label": "August 9 - 30", "start_date": "2025-08-09", "cadence": "weekly", "sessions": 4},
	{"label": "Weekday Intensive - June 16", "start_date": "2025-06-16", "cadence": "weekdays", "sessions": 8},
}

// Load reads configuration from file and environment.
// Precedence: env > config file > defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "ready_portal")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("course.session_count", 4)
	v.SetDefault("course.required_hours", 24.0)
	v.SetDefault("course.weekdays", []string{"monday", "tuesday", "wednesday", "thursday"})
	v.SetDefault("course.max_lookahead_days", 400)
	v.SetDefault("course.session_start", "10:00:00")
	v.SetDefault("course.session_end", "16:00:00")
	v.SetDefault("course.session_title", "Bartending Class")
	v.SetDefault("course.timezone", "America/New_York")
	v.SetDefault("course.backfill_lock_ttl", "5m")
	v.SetDefault("course.cohorts", defaultCohorts)

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("READY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be within 1-65535")
	}
	return c.Course.Validate()
}

// Validate checks the course constants
func (c *CourseConfig) Validate() error {
	if c.SessionCount <= 0 {
		return fmt.Errorf("config: course.session_count must be positive")
	}
	if c.RequiredHours <= 0 {
		return fmt.Errorf("config: course.required_hours must be positive")
	}
	if c.MaxLookaheadDays <= 0 {
		return fmt.Errorf("config: course.max_lookahead_days must be positive")
	}
	if _, err := time.Parse("15:04:05", c.SessionStart); err != nil {
		return fmt.Errorf("config: course.session_start %q: %w", c.SessionStart, err)
	}
	if _, err := time.Parse("15:04:05", c.SessionEnd); err != nil {
		return fmt.Errorf("config: course.session_end %q: %w", c.SessionEnd, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: course.timezone %q: %w", c.Timezone, err)
	}
	seen := make(map[string]bool, len(c.Cohorts))
	for _, ch := range c.Cohorts {
		if ch.Label == "" {
			return fmt.Errorf("config: course.cohorts entry without label")
		}
		if seen[ch.Label] {
			return fmt.Errorf("config: duplicate cohort label %q", ch.Label)
		}
		seen[ch.Label] = true
		if _, err := time.Parse("2006-01-02", ch.StartDate); err != nil {
			return fmt.Errorf("config: cohort %q start_date: %w", ch.Label, err)
		}
	}
	return nil
}
