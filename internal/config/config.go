package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for all environment variables, e.g.
// FPULSE_SERVER_PORT.
const envPrefix = "FPULSE"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	TMS     TMSConfig     `yaml:"tms" envconfig:"TMS"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// TMSConfig configures the transportation-management API client.
type TMSConfig struct {
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL" validate:"url"`
	PageSize        int           `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"gt=0,lte=50"`
	PageDelay       time.Duration `yaml:"page_delay" envconfig:"PAGE_DELAY"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	CredentialsFile string        `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// ExportConfig configures report export output.
type ExportConfig struct {
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// Load builds configuration in three layers: built-in defaults, an
// optional YAML file, then environment variables on top (env wins). A
// missing file is not an error; env-only configuration is the common
// deployment mode.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if data, err := os.ReadFile(configFile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Default returns the built-in defaults without consulting the
// environment or any file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		TMS: TMSConfig{
			BaseURL:         "https://api1.app.portpro.io/v1",
			PageSize:        50,
			PageDelay:       300 * time.Millisecond,
			RequestTimeout:  30 * time.Second,
			CredentialsFile: ".env.json",
		},
		Export: ExportConfig{
			ReportsDir: "reports",
		},
	}
}
