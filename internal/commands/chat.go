// internal/commands/chat.go
package commands

import (
	"os"
	"os/signal"

	"github.com/mwiater/fncall/internal/dispatch"
	"github.com/mwiater/fncall/internal/providers/ollama"
	"github.com/mwiater/fncall/internal/tui"
	"github.com/spf13/cobra"
)

// chatCmd runs the dispatch client against the function server and Ollama.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the dispatch client",
	Long: `Read questions from stdin. "What is the square of N" and "What is the weather
for PLACE" are sent to the function server; anything else goes to the Ollama
generate endpoint. Type exit or quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := initLogging(cfg.ClientLogFilePath(), false); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		session := dispatch.NewSession(cfg, dispatch.NewFunctionClient(cfg), ollama.New(cfg))

		useTUI, _ := cmd.Flags().GetBool("tui")
		var err error
		if useTUI {
			err = tui.Start(ctx, session)
		} else {
			err = session.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		if err != nil && ctx.Err() != nil {
			// Interrupted by the user.
			return nil
		}
		return err
	},
}

func init() {
	chatCmd.Flags().String("functionUrl", "", "function server endpoint")
	chatCmd.Flags().String("ollamaUrl", "", "Ollama base URL")
	chatCmd.Flags().String("model", "", "Ollama model name")
	chatCmd.Flags().Bool("tui", false, "use the full-screen terminal UI")
	for _, name := range []string{"functionUrl", "ollamaUrl", "model"} {
		bindFlag(chatCmd, name, false)
	}

	rootCmd.AddCommand(chatCmd)
}
