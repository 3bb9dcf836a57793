// Package main provides the entry point for the career portal API server and
// its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "career_portal",
	Short: "Career services interview scheduling API",
	Long: `Career portal serves the student and employer workflow for job applications and interview scheduling,
and provides maintenance commands for the document store and the cascade log.`,
	SilenceUsage: true,
}

var (
	rootConfigPath  string
	rootStore       string
	rootDatabaseURL string
	rootLogLevel    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVar(&rootStore, "store", "", "Document store: postgres or memory")
	rootCmd.PersistentFlags().StringVar(&rootDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn or error (defaults to LOG_LEVEL env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
