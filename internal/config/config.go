package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the guard engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Notify    NotifyConfig    `yaml:"notify"`
	Collision CollisionConfig `yaml:"collision"`
	Anchor    AnchorConfig    `yaml:"anchor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP control-surface listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// TelemetryConfig configures access to the vessel data bus.
type TelemetryConfig struct {
	BaseURL       string        `yaml:"baseURL"`
	OwnVesselPath string        `yaml:"ownVesselPath"`
	TargetsPath   string        `yaml:"targetsPath"`
	Timeout       time.Duration `yaml:"timeout"`
	PollInterval  time.Duration `yaml:"pollInterval"`
	TargetsTTL    time.Duration `yaml:"targetsTTL"`
}

// NotifyConfig configures the notification hub sink. An empty BaseURL selects
// the log-only sink.
type NotifyConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// CollisionConfig holds the risk-tier thresholds for the collision engine.
// CPA thresholds must be strictly increasing.
type CollisionConfig struct {
	DangerCPA        float64       `yaml:"dangerCPA"`
	CautionCPA       float64       `yaml:"cautionCPA"`
	WatchCPA         float64       `yaml:"watchCPA"`
	MaxTCPAMinutes   float64       `yaml:"maxTCPA"`
	MaxRangeNM       float64       `yaml:"maxRange"`
	AnnounceCooldown time.Duration `yaml:"announceCooldown"`
	ScanInterval     time.Duration `yaml:"scanInterval"`
}

// AnchorConfig controls the anchor watch.
type AnchorConfig struct {
	StatePath     string  `yaml:"statePath"`
	DefaultRadius float64 `yaml:"defaultRadius"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MARINER_GUARD_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Collision.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Anchor.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects anchor settings that cannot seed a usable watch.
func (c AnchorConfig) Validate() error {
	if c.DefaultRadius <= 0 {
		return fmt.Errorf("anchor defaultRadius must be positive, got %.2f", c.DefaultRadius)
	}
	if c.StatePath == "" {
		return fmt.Errorf("anchor statePath must be set")
	}
	return nil
}

// Validate rejects threshold bundles that cannot produce a total tier order.
func (c CollisionConfig) Validate() error {
	if c.DangerCPA <= 0 || c.CautionCPA <= c.DangerCPA || c.WatchCPA <= c.CautionCPA {
		return fmt.Errorf("collision CPA thresholds must be strictly increasing: danger=%.2f caution=%.2f watch=%.2f",
			c.DangerCPA, c.CautionCPA, c.WatchCPA)
	}
	if c.MaxRangeNM <= 0 {
		return fmt.Errorf("collision maxRange must be positive")
	}
	if c.AnnounceCooldown <= 0 {
		return fmt.Errorf("collision announceCooldown must be positive")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			OwnVesselPath: "/api/v1/vessel/self",
			TargetsPath:   "/api/v1/vessel/targets",
			Timeout:       5 * time.Second,
			PollInterval:  2 * time.Second,
			TargetsTTL:    5 * time.Second,
		},
		Notify: NotifyConfig{
			Path:    "/api/v1/notifications",
			Timeout: 5 * time.Second,
		},
		Collision: CollisionConfig{
			DangerCPA:        0.5,
			CautionCPA:       1.0,
			WatchCPA:         2.0,
			MaxTCPAMinutes:   60,
			MaxRangeNM:       10,
			AnnounceCooldown: 5 * time.Minute,
			ScanInterval:     30 * time.Second,
		},
		Anchor: AnchorConfig{
			StatePath:     "data/anchor.json",
			DefaultRadius: 30,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARINER_GUARD_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MARINER_GUARD_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MARINER_GUARD_TELEMETRY_URL"); v != "" {
		cfg.Telemetry.BaseURL = v
	}
	if v := os.Getenv("MARINER_GUARD_TELEMETRY_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Telemetry.PollInterval = d
		}
	}
	if v := os.Getenv("MARINER_GUARD_NOTIFY_URL"); v != "" {
		cfg.Notify.BaseURL = v
	}
	if v := os.Getenv("MARINER_GUARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MARINER_GUARD_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MARINER_GUARD_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("MARINER_GUARD_ANCHOR_STATE_PATH"); v != "" {
		cfg.Anchor.StatePath = v
	}
	if v := os.Getenv("MARINER_GUARD_ANCHOR_DEFAULT_RADIUS"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			cfg.Anchor.DefaultRadius = r
		}
	}
	if v := os.Getenv("MARINER_GUARD_COLLISION_MAX_RANGE"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			cfg.Collision.MaxRangeNM = r
		}
	}
	if v := os.Getenv("MARINER_GUARD_COLLISION_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collision.AnnounceCooldown = d
		}
	}
	if v := os.Getenv("MARINER_GUARD_COLLISION_SCAN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collision.ScanInterval = d
		}
	}
	if v := os.Getenv("MARINER_GUARD_NOTIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Notify.Timeout = d
		}
	}
	if v := os.Getenv("MARINER_GUARD_TELEMETRY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Telemetry.Timeout = d
		}
	}
	if v := os.Getenv("MARINER_GUARD_LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Logging.MaxSizeMB = n
		}
	}
}
