package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Sources SourcesConfig `yaml:"sources" envconfig:"SOURCES"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourcesConfig identifies the two remote APIs and the filters applied
// to them. Station IDs and the city/ICD filter are deliberately
// configuration rather than constants so the cleaning and aggregation
// core stays independent of any deployment.
type SourcesConfig struct {
	AirQualityURL  string        `yaml:"air_quality_url" envconfig:"AIR_QUALITY_URL" validate:"required,url"`
	DatasusURL     string        `yaml:"datasus_url" envconfig:"DATASUS_URL" validate:"required,url"`
	Stations       []int         `yaml:"stations" envconfig:"STATIONS" validate:"min=1"`
	FilterCity     string        `yaml:"filter_city" envconfig:"FILTER_CITY" validate:"required"`
	FilterICDFrom  string        `yaml:"filter_icd_from" envconfig:"FILTER_ICD_FROM" validate:"required"`
	FilterICDTo    string        `yaml:"filter_icd_to" envconfig:"FILTER_ICD_TO" validate:"required"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC"`
}

// DefaultConfig returns the built-in configuration. YAML file and
// environment values are layered on top of it, in that order.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Sources: SourcesConfig{
			AirQualityURL:  "https://api.municipal.gov.br/qualidade_ar",
			DatasusURL:     "https://datasus.saude.gov.br/api/internacoes",
			Stations:       []int{101, 102, 103, 104},
			FilterCity:     "João Pessoa",
			FilterICDFrom:  "J00",
			FilterICDTo:    "J99",
			Timeout:        30 * time.Second,
			RequestsPerSec: 2,
		},
		Paths: PathsConfig{
			BaseDir: "data",
			LogsDir: "logs",
		},
	}
}

// Load loads configuration from the defaults, an optional YAML config
// file and environment variables. Environment wins over file values.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom is Load with an explicit config file path, for tests.
func LoadFrom(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables override file values. No default tags here;
	// fields without a matching env var keep their current value.
	if err := envconfig.Process("AIRHEALTH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Paths.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks structural constraints on the loaded configuration.
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// configFilePath returns the default config file location, overridable
// via AIRHEALTH_CONFIG.
func configFilePath() string {
	if path := os.Getenv("AIRHEALTH_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
