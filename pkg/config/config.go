package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the simulator's configuration.
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Engine    EngineConfig    `yaml:"engine"`
	Workload  WorkloadConfig  `yaml:"workload"`
	Reporting ReportingConfig `yaml:"reporting"`
	Safety    SafetyConfig    `yaml:"safety"`
}

// FrameworkConfig contains general framework settings.
type FrameworkConfig struct {
	Version   string `yaml:"version"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// EngineConfig selects and configures the simulated engine adapter.
type EngineConfig struct {
	// Kind is "fake" (default, fault-injectable) or "sqlite" (real-engine cross-check).
	Kind     string `yaml:"kind"`
	DBDir    string `yaml:"db_dir"`
	PageSize int    `yaml:"page_size"`
}

// WorkloadConfig holds workload bounds in the config file. cmd/simulator
// does not read this section: its workload comes from pkg/workload's
// built-in default or --profile file.
type WorkloadConfig struct {
	ProfilePath string `yaml:"profile_path"`
	MinTicks    int    `yaml:"min_ticks"`
	MaxTicks    int    `yaml:"max_ticks"`
	MinTables   int    `yaml:"min_tables"`
	MaxTables   int    `yaml:"max_tables"`
}

// ReportingConfig contains reporting and output settings.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	KeepLastN int      `yaml:"keep_last_n"`
	Formats   []string `yaml:"formats"`
}

// SafetyConfig contains safety limits.
type SafetyConfig struct {
	MaxDuration         time.Duration `yaml:"max_duration"`
	RequireConfirmation bool          `yaml:"require_confirmation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			Version:   "v1",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Engine: EngineConfig{
			Kind:     "fake",
			DBDir:    "./simdb",
			PageSize: 4096,
		},
		Workload: WorkloadConfig{
			MinTicks:  0,
			MaxTicks:  4096,
			MinTables: 0,
			MaxTables: 128,
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			KeepLastN: 50,
			Formats:   []string{"json"},
		},
		Safety: SafetyConfig{
			MaxDuration:         1 * time.Hour,
			RequireConfirmation: false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// In both cases a non-empty LOG_LEVEL environment variable overrides the
// log level.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			cfg.Framework.LogLevel = v
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Framework.LogLevel = v
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.Kind != "fake" && c.Engine.Kind != "sqlite" {
		return fmt.Errorf("engine.kind must be \"fake\" or \"sqlite\", got %q", c.Engine.Kind)
	}

	if c.Engine.PageSize <= 0 {
		return fmt.Errorf("engine.page_size must be positive")
	}

	if c.Workload.MaxTicks < c.Workload.MinTicks {
		return fmt.Errorf("workload.max_ticks must be >= workload.min_ticks")
	}

	if c.Workload.MaxTables < c.Workload.MinTables {
		return fmt.Errorf("workload.max_tables must be >= workload.min_tables")
	}

	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}

	return nil
}
