// Package config loads process configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"notion-mcp/internal/notion"
	"notion-mcp/internal/tools"
)

// Config contains server configuration values such as port, API key and
// tool naming.
type Config struct {
	NotionAPIKey   string        `yaml:"notion_api_key"`
	NotionBaseURL  string        `yaml:"notion_base_url"`
	NotionVersion  string        `yaml:"notion_version"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Port           string        `yaml:"port"`
	ToolPrefix     *string       `yaml:"tool_prefix"`
	CORSOrigin     string        `yaml:"cors_origin"`
	LogLevel       string        `yaml:"log_level"`
	TLSCertFile    string        `yaml:"tls_cert_file"`
	TLSKeyFile     string        `yaml:"tls_key_file"`
	OTLPEndpoint   string        `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	prefix := tools.DefaultPrefix
	return Config{
		NotionBaseURL:  notion.DefaultBaseURL,
		NotionVersion:  notion.DefaultVersion,
		RequestTimeout: notion.DefaultTimeout,
		Port:           "3000",
		ToolPrefix:     &prefix,
		CORSOrigin:     "*",
		LogLevel:       "info",
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then environment variables. The API key also falls
// back to a NOTION_API_KEY line in ./.env.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if cfg.NotionAPIKey == "" {
		cfg.NotionAPIKey = loadFromEnvFile(".env", "NOTION_API_KEY")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.NotionAPIKey, "NOTION_API_KEY")
	setString(&c.NotionBaseURL, "NOTION_API_BASE_URL")
	setString(&c.NotionVersion, "NOTION_VERSION")
	setString(&c.Port, "PORT")
	setString(&c.CORSOrigin, "CORS_ORIGIN")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.TLSCertFile, "TLS_CERT_FILE")
	setString(&c.TLSKeyFile, "TLS_KEY_FILE")
	setString(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	// An explicitly empty TOOL_PREFIX selects bare tool names.
	if v, ok := os.LookupEnv("TOOL_PREFIX"); ok {
		c.ToolPrefix = &v
	}
	if v := os.Getenv("NOTION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOTION_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

// Prefix returns the tool name prefix, defaulting when unset.
func (c Config) Prefix() string {
	if c.ToolPrefix == nil {
		return tools.DefaultPrefix
	}
	return *c.ToolPrefix
}

// Validate reports configuration that cannot be served.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	return nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadFromEnvFile reads a key from a dotenv file.
func loadFromEnvFile(path, key string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	prefix := key + "="
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			val := strings.TrimPrefix(line, prefix)
			return strings.Trim(val, `"'`)
		}
	}
	return ""
}
