package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wabridge",
	Short: "wabridge gateway and operations commands",
	Long: `wabridge bridges WhatsApp conversations to Gmail and Google Calendar.

The gateway serves the OAuth flows and the dashboard API; the remaining
commands cover day-to-day operations.`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
}
