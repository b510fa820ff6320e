package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hubexport",
	Short: "Resumable bulk export of HubSpot CRM records to SQLite and CSV",
	Long: `hubexport pulls companies, contacts, notes, tasks and calls out of a
HubSpot portal into a local SQLite database, then writes one CSV per table.

Every page of records is checkpointed to disk, so an interrupted run picks up
exactly where it stopped instead of refetching everything. Association edges
between objects are exported after the objects themselves.

Authentication uses a private app access token, stored with:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - HUBSPOT_ACCESS_TOKEN environment variable`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .hubexport.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	// Version template
	rootCmd.SetVersionTemplate(`hubexport {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
