package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/k-amith1610/geocity-sub000/internal/core/domain"
	"github.com/k-amith1610/geocity-sub000/internal/core/nav"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Nav       NavConfig       `mapstructure:"nav"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

// RoutingConfig points at the Valhalla routing engine.
type RoutingConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// NavConfig exposes the tracking thresholds. Zero values fall back to the
// built-in defaults so a partial config stays sane.
type NavConfig struct {
	OriginSnapMeters     float64 `mapstructure:"origin_snap_meters"`
	TerminalAnchorMeters float64 `mapstructure:"terminal_anchor_meters"`
	ArrivalRadiusMeters  float64 `mapstructure:"arrival_radius_meters"`
	UpcomingStepMeters   float64 `mapstructure:"upcoming_step_meters"`
	VoiceTriggerMeters   float64 `mapstructure:"voice_trigger_meters"`
	OffRouteMeters       float64 `mapstructure:"off_route_meters"`
	AutoStopGraceSeconds int     `mapstructure:"auto_stop_grace_seconds"`
	DrivingSpeedKmh      float64 `mapstructure:"driving_speed_kmh"`
	WalkingSpeedKmh      float64 `mapstructure:"walking_speed_kmh"`
	BicyclingSpeedKmh    float64 `mapstructure:"bicycling_speed_kmh"`
}

// Policy materialises the nav thresholds, falling back to defaults for any
// field left at zero.
func (n NavConfig) Policy() nav.Policy {
	p := nav.DefaultPolicy()
	if n.OriginSnapMeters > 0 {
		p.OriginSnapMeters = n.OriginSnapMeters
	}
	if n.TerminalAnchorMeters > 0 {
		p.TerminalAnchorMeters = n.TerminalAnchorMeters
	}
	if n.ArrivalRadiusMeters > 0 {
		p.ArrivalRadiusMeters = n.ArrivalRadiusMeters
	}
	if n.UpcomingStepMeters > 0 {
		p.UpcomingStepMeters = n.UpcomingStepMeters
	}
	if n.VoiceTriggerMeters > 0 {
		p.VoiceTriggerMeters = n.VoiceTriggerMeters
	}
	if n.OffRouteMeters > 0 {
		p.OffRouteMeters = n.OffRouteMeters
	}
	if n.AutoStopGraceSeconds > 0 {
		p.AutoStopGrace = time.Duration(n.AutoStopGraceSeconds) * time.Second
	}
	if n.DrivingSpeedKmh > 0 {
		p.SpeedsKmh[domain.ModeDriving] = n.DrivingSpeedKmh
	}
	if n.WalkingSpeedKmh > 0 {
		p.SpeedsKmh[domain.ModeWalking] = n.WalkingSpeedKmh
	}
	if n.BicyclingSpeedKmh > 0 {
		p.SpeedsKmh[domain.ModeBicycling] = n.BicyclingSpeedKmh
	}
	return p
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "geocity")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "geocity")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "geocity")
	v.SetDefault("routing.base_url", "http://localhost:8002")
	v.SetDefault("routing.timeout", 10)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOCITY_DATABASE_HOST → database.host
	v.SetEnvPrefix("GEOCITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Routing.BaseURL == "" {
		errs = append(errs, "routing.base_url is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
