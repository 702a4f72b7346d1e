// Package config loads application configuration from YAML and environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	OpenAI    OpenAIConfig     `mapstructure:"openai"`
	Logger    LoggerConfig     `mapstructure:"logger"`
	Blackouts []BlackoutConfig `mapstructure:"blackouts"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// OpenAIConfig holds the optional email-drafting model configuration.
// An empty api_key means the template drafter is used instead.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// BlackoutConfig is one statically configured blackout window.
type BlackoutConfig struct {
	Name  string `mapstructure:"name"`
	Start string `mapstructure:"start"` // YYYY-MM-DD
	End   string `mapstructure:"end"`
}

// Load loads configuration from file and environment variables. When
// configPath is empty only defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/leave.db")

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.3)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("database.path", "LEAVE_DB_PATH")
	v.BindEnv("server.port", "LEAVE_PORT")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	for _, b := range c.Blackouts {
		if _, err := time.Parse("2006-01-02", b.Start); err != nil {
			return fmt.Errorf("blackout %q: invalid start date: %w", b.Name, err)
		}
		if _, err := time.Parse("2006-01-02", b.End); err != nil {
			return fmt.Errorf("blackout %q: invalid end date: %w", b.Name, err)
		}
	}
	return nil
}

// BlackoutPeriods converts the configured windows to domain values.
// Config validation already checked the date format. IDs are derived from
// name and start date so re-persisting on every startup upserts the same
// rows instead of accumulating duplicates.
func (c *Config) BlackoutPeriods() []leave.BlackoutPeriod {
	out := make([]leave.BlackoutPeriod, 0, len(c.Blackouts))
	for _, b := range c.Blackouts {
		start, _ := time.Parse("2006-01-02", b.Start)
		end, _ := time.Parse("2006-01-02", b.End)
		out = append(out, leave.BlackoutPeriod{
			ID:    policy.BlackoutID(b.Name, start),
			Name:  b.Name,
			Start: start,
			End:   end,
		})
	}
	return out
}
