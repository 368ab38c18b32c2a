package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rumdood/Moneo-sub002/internal/config"
)

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the adapter configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration, then print it with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			r := cfg.Redacted()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "configuration is valid")
			fmt.Fprintf(out, "  %-28s %s\n", "chat_adapter", r.ChatAdapter)
			fmt.Fprintf(out, "  %-28s %s\n", "bot_token", r.BotToken)
			fmt.Fprintf(out, "  %-28s %d\n", "master_conversation_id", r.MasterConversationID)
			fmt.Fprintf(out, "  %-28s %s\n", "function_key", r.FunctionKey)
			fmt.Fprintf(out, "  %-28s %s\n", "moneo_api_key", r.MoneoAPIKey)
			fmt.Fprintf(out, "  %-28s %s\n", "callback_token", r.CallbackToken)
			fmt.Fprintf(out, "  %-28s %s\n", "task_api_base", r.TaskAPIBase)
			fmt.Fprintf(out, "  %-28s %t\n", "is_detailed_errors_enabled", r.IsDetailedErrorsEnabled)
			fmt.Fprintf(out, "  %-28s %s\n", "http.address", r.HTTP.Address)
			fmt.Fprintf(out, "  %-28s %s\n", "database.path", r.Database.Path)
			return nil
		},
	})
	return cmd
}
