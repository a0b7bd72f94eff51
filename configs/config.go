package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix is prepended to every environment variable, e.g. JIRA_BASE_URL.
const envPrefix = "jira"

// FileConfig defines the structure loaded from the YAML configuration file.
// Secrets are deliberately absent; the API token only comes from the environment.
type FileConfig struct {
	BaseURL string            `yaml:"base_url"`
	Email   string            `yaml:"email"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Config holds the final application configuration, merged from file and environment variables.
// Fields are loaded from environment variables with the prefix "JIRA_", overriding file settings.
type Config struct {
	// Config File Path (Loaded first from env)
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// File-loaded fields, overridable from env. They carry no defaults so a
	// second Process pass keeps the file values when the variable is unset.
	BaseURL string            `envconfig:"BASE_URL"`
	Email   string            `envconfig:"EMAIL"`
	Headers map[string]string `envconfig:"HEADERS"`

	// Environment-only fields
	APIToken                 string        `envconfig:"API_TOKEN"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr                string        `envconfig:"ADMIN_ADDR" default:":8081"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"35s"`
	ServerIdleTimeout        time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile                  string        `envconfig:"LOG_FILE"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("JIRA_BASE_URL is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("JIRA_BASE_URL is not a valid URL: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("JIRA_BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL))
	}

	if c.Email != "" && c.APIToken == "" {
		errs = append(errs, errors.New("JIRA_API_TOKEN is required when JIRA_EMAIL is set"))
	}
	if c.HTTPClientTimeout <= 0 {
		errs = append(errs, fmt.Errorf("JIRA_HTTP_CLIENT_TIMEOUT must be positive, got %s", c.HTTPClientTimeout))
	}

	return errors.Join(errs...)
}

// Load loads configuration first from environment variables (to get file path),
// then from the specified YAML file, and finally merges/overrides with environment variables again.
func Load() (*Config, error) {
	// 1. Load initial config from Env (primarily to get ConfigFilePath)
	var initialCfg Config
	if err := envconfig.Process(envPrefix, &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. Load config from YAML file if path is specified
	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		slog.Debug("Loaded configuration from file", "path", initialCfg.ConfigFilePath)
	}

	// 3. Start from file values, then process Env vars again for overrides.
	finalCfg := initialCfg
	finalCfg.BaseURL = fileCfg.BaseURL
	finalCfg.Email = fileCfg.Email
	finalCfg.Headers = fileCfg.Headers

	if err := envconfig.Process(envPrefix, &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
