package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hubexport/pkg/auth"
	"hubexport/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage hubexport configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.hubexport.yaml' in the current directory unless a
different path is given with the --config flag.`,
	RunE: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging all sources. The access token is
masked.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".hubexport.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	exampleConfig := `# hubexport configuration file
#
# Environment variables override this file. The access token can also come
# from HUBSPOT_ACCESS_TOKEN or from 'hubexport auth login'.

hubspot:
  # Private app access token (starts with pat-)
  access_token: ""

  # API endpoint, only change for testing against a stub
  base_url: "https://api.hubapi.com"

retry:
  # Attempts per request before the run aborts
  max_retries: 5

  # Fixed delay between attempts
  retry_delay: 5s

  # Per-request timeout
  request_timeout: 10s

rate_limit:
  # Client-side pacing in requests per minute, 0 disables it
  requests_per_minute: 0

export:
  # SQLite database file
  database_path: "hubspot_data.db"

  # Where checkpoint and completion marker files live
  checkpoint_dir: "checkpoints"

  # Where CSV snapshots are written
  snapshot_dir: "snapshots"

  # Cap records per resource, 0 means export everything.
  # Limited runs never mark a resource complete.
  limit: 0

  # Restrict the run to a subset of resource types, empty means all.
  # resources: [companies, contacts]

logging:
  # debug, info, warn or error
  level: "info"

  # Optional log file, empty logs to the console only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your access token with 'hubexport auth login'")
	fmt.Println("2. Run 'hubexport export'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return err
	}
	_ = cfg.LoadFromEnv()

	displayCfg := *cfg
	if displayCfg.HubSpot.AccessToken != "" {
		displayCfg.HubSpot.AccessToken = auth.MaskToken(displayCfg.HubSpot.AccessToken)
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (HUBSPOT_ACCESS_TOKEN, HUBEXPORT_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (default locations)")
	}
	fmt.Println("4. Default values")
	return nil
}
