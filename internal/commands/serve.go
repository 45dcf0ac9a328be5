// internal/commands/serve.go
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mwiater/fncall/internal/functions"
	"github.com/mwiater/fncall/internal/logging"
	"github.com/mwiater/fncall/internal/server"
	"github.com/mwiater/fncall/internal/weather"
	"github.com/spf13/cobra"
)

// serveCmd runs the function server until SIGINT or SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the function server",
	Long: `Run the HTTP function server. POST /function dispatches {"name","args"} to
square or get_weather; GET /functions lists the declarations and GET /metrics
is mounted when metrics are enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := initLogging(cfg.LogFilePath(), true); err != nil {
			return err
		}
		logging.LogEvent("function server starting on %s", cfg.ListenAddr())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dispatcher := functions.NewDispatcher(weather.New(cfg))
		return runServer(ctx, server.New(cfg, dispatcher))
	},
}

func runServer(ctx context.Context, srv *server.Server) error {
	if err := srv.Run(ctx); err != nil {
		logging.LogEvent("function server stopped: %v", err)
		return err
	}
	logging.LogEvent("function server stopped")
	return nil
}

func init() {
	serveCmd.Flags().String("host", "", "interface to listen on")
	serveCmd.Flags().Int("port", 0, "port to listen on")
	serveCmd.Flags().String("weatherApiUrl", "", "weather provider endpoint")
	serveCmd.Flags().String("weatherApiKey", "", "weather provider API key")
	serveCmd.Flags().Bool("metrics", false, "expose Prometheus metrics on /metrics")
	for _, name := range []string{"host", "port", "weatherApiUrl", "weatherApiKey", "metrics"} {
		bindFlag(serveCmd, name, false)
	}

	rootCmd.AddCommand(serveCmd)
}
