package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wise-investing",
	Short: "Watchlists, live quotes and purchase price alerts over Telegram",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(alertsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
