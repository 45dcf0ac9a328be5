// internal/commands/root.go
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mwiater/fncall/internal/appconfig"
	"github.com/mwiater/fncall/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fncall",
	Short: "fncall: function-calling demo server and dispatch client",
	Long: `fncall runs a small function server (square, get_weather) and a client that
either dispatches recognised questions to it or forwards free-text prompts to Ollama.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := appconfig.Bind(viper.GetViper()); err != nil {
			return err
		}
		loaded, err := ensureConfigLoaded()
		if err != nil {
			return err
		}

		cfg, err := appconfig.FromViper(viper.GetViper())
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if !loaded {
			cfg.ConfigPath = ""
		}
		currentConfig = &cfg
		logging.SetDebug(cfg.Debug)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = versionString()

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Version = versionString()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (JSON or YAML)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the server log file")
	rootCmd.PersistentFlags().String("clientLogFile", "", "path to the chat client log file")
	rootCmd.PersistentFlags().Int("timeout", 0, "outbound HTTP timeout in seconds (0 = default)")

	for _, name := range []string{"debug", "logFile", "clientLogFile", "timeout"} {
		bindFlag(rootCmd, name, true)
	}
}

// bindFlag ties a cobra flag to the viper key of the same name. A flag only
// wins over env and file values when it was set on the command line.
func bindFlag(cmd *cobra.Command, name string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	_ = viper.BindPFlag(name, flags.Lookup(name))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file is not an error;
// the defaults, environment and flags still apply.
func ensureConfigLoaded() (bool, error) {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load config: %w", err)
	}
	return true, nil
}

// initLogging points the shared logger at path, echoing to stdout when console is set.
func initLogging(path string, console bool) error {
	if err := logging.Init(path, console); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
	rootCmd.Version = versionString()
}
