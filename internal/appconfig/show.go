package appconfig

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, cfg *Config) {
	if cfg == nil {
		d := Defaults()
		cfg = &d
	}
	if cfg.ConfigPath == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults, environment and flags).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Listen Address:  %s\n", cfg.ListenAddr())
	fmt.Fprintf(out, "  Weather API URL: %s\n", cfg.WeatherAPIURL)
	fmt.Fprintf(out, "  Weather API Key: %s\n", cfg.MaskedAPIKey())
	fmt.Fprintf(out, "  Function URL:    %s\n", cfg.FunctionURL)
	fmt.Fprintf(out, "  Generate URL:    %s\n", cfg.GenerateURL())
	fmt.Fprintf(out, "  Model:           %s\n", cfg.Model)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Client Log File: %s\n", cfg.ClientLogFilePath())
	fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Metrics:         %v\n", cfg.Metrics)
}

// ShowConfigYAML writes cfg as YAML with the API key masked.
func ShowConfigYAML(out io.Writer, cfg *Config) error {
	if cfg == nil {
		d := Defaults()
		cfg = &d
	}
	masked := *cfg
	masked.WeatherAPIKey = cfg.MaskedAPIKey()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(masked); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
