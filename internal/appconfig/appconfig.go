// internal/appconfig/appconfig.go
// Package appconfig defines the configuration shared by the function server and the dispatch client.
package appconfig

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for outbound HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultLogFile is where the server log goes when no path is configured.
	defaultLogFile = "server.log"
	// defaultClientLogFile keeps client diagnostics out of the server log.
	defaultClientLogFile = "client.log"
)

// Config is the merged configuration (flags > environment > file > defaults).
// It is built once at startup and passed by pointer to every component.
type Config struct {
	WeatherAPIKey  string `mapstructure:"weatherApiKey" json:"weatherApiKey" yaml:"weatherApiKey"`
	WeatherAPIURL  string `mapstructure:"weatherApiUrl" json:"weatherApiUrl" yaml:"weatherApiUrl"`
	LogFile        string `mapstructure:"logFile" json:"logFile,omitempty" yaml:"logFile,omitempty"`
	ClientLogFile  string `mapstructure:"clientLogFile" json:"clientLogFile,omitempty" yaml:"clientLogFile,omitempty"`
	Host           string `mapstructure:"host" json:"host" yaml:"host"`
	Port           int    `mapstructure:"port" json:"port" yaml:"port"`
	FunctionURL    string `mapstructure:"functionUrl" json:"functionUrl" yaml:"functionUrl"`
	OllamaURL      string `mapstructure:"ollamaUrl" json:"ollamaUrl" yaml:"ollamaUrl"`
	Model          string `mapstructure:"model" json:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout" json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Debug          bool   `mapstructure:"debug" json:"debug" yaml:"debug"`
	Metrics        bool   `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	ConfigPath     string `mapstructure:"-" json:"-" yaml:"-"`
}

// EnvBindings maps configuration keys to the environment variables that override them.
var EnvBindings = map[string]string{
	"weatherApiKey": "WEATHER_API_KEY",
	"weatherApiUrl": "WEATHER_API_URL",
	"logFile":       "LOG_FILE",
	"clientLogFile": "FNCALL_CLIENT_LOG_FILE",
	"port":          "PORT",
	"host":          "FNCALL_HOST",
	"functionUrl":   "FNCALL_FUNCTION_URL",
	"ollamaUrl":     "OLLAMA_URL",
	"model":         "OLLAMA_MODEL",
	"timeout":       "FNCALL_TIMEOUT",
	"debug":         "FNCALL_DEBUG",
	"metrics":       "FNCALL_METRICS",
}

// Defaults returns the configuration used when nothing overrides a key.
func Defaults() Config {
	return Config{
		WeatherAPIKey:  "your_default_api_key",
		WeatherAPIURL:  "http://api.weatherapi.com/v1/current.json",
		LogFile:        defaultLogFile,
		ClientLogFile:  defaultClientLogFile,
		Host:           "127.0.0.1",
		Port:           9999,
		FunctionURL:    "http://localhost:9999/function",
		OllamaURL:      "http://localhost:11434",
		Model:          "llama3.2",
		TimeoutSeconds: int(defaultRequestTimeout.Seconds()),
	}
}

// Bind registers the defaults and environment bindings on v.
func Bind(v *viper.Viper) error {
	d := Defaults()
	v.SetDefault("weatherApiKey", d.WeatherAPIKey)
	v.SetDefault("weatherApiUrl", d.WeatherAPIURL)
	v.SetDefault("logFile", d.LogFile)
	v.SetDefault("clientLogFile", d.ClientLogFile)
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("functionUrl", d.FunctionURL)
	v.SetDefault("ollamaUrl", d.OllamaURL)
	v.SetDefault("model", d.Model)
	v.SetDefault("timeout", d.TimeoutSeconds)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("metrics", d.Metrics)

	for key, env := range EnvBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

// FromViper materializes the merged state of v into a Config.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d (expected 1-65535)", c.Port)
	}
	for name, raw := range map[string]string{
		"weatherApiUrl": c.WeatherAPIURL,
		"functionUrl":   c.FunctionURL,
		"ollamaUrl":     c.OllamaURL,
	} {
		if err := checkURL(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// RequestTimeout returns the timeout for outbound HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// ClientLogFilePath returns the dispatch client's log file, applying a default if not set.
func (c Config) ClientLogFilePath() string {
	if path := c.ClientLogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultClientLogFile
}

// ListenAddr is the host:port the function server binds to.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GenerateURL is the inference backend's generate endpoint.
func (c Config) GenerateURL() string {
	return strings.TrimRight(c.OllamaURL, "/") + "/api/generate"
}

// MaskedAPIKey hides all but the last four characters of the weather API key.
func (c Config) MaskedAPIKey() string {
	key := c.WeatherAPIKey
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
