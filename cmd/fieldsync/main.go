package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldsync",
	Short: "fieldsync - PPF field-service task synchronization client",
	Long: `fieldsync keeps a local view of paint-protection-film installation
jobs in sync with the atelier backend: task lists, workflow progress,
change history, and offline caching.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	configPath string
	tokenFlag  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "",
		"backend API token (overrides the keyring)")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
