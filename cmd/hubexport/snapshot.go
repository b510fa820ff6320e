package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hubexport/pkg/config"
	"hubexport/pkg/logger"
	"hubexport/pkg/store"
)

var (
	snapshotDatabase string
	snapshotOutDir   string
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write CSV snapshots from an existing database",
	Long: `Write one CSV file per table from a previously exported database,
without touching the HubSpot API. Useful for regenerating snapshots after
deleting them, or for snapshotting a partially exported database.`,
	Example: `  # Snapshot the default database
  hubexport snapshot

  # Snapshot a specific database to a specific directory
  hubexport snapshot --database crm.db --snapshot-dir ./csv`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotDatabase, "database", "d", "", "SQLite database path (default: hubspot_data.db)")
	snapshotCmd.Flags().StringVar(&snapshotOutDir, "snapshot-dir", "", "directory for CSV snapshots (default: snapshots)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return err
	}
	_ = cfg.LoadFromEnv()
	if snapshotDatabase != "" {
		cfg.Export.DatabasePath = snapshotDatabase
	}
	if snapshotOutDir != "" {
		cfg.Export.SnapshotDir = snapshotOutDir
	}
	cfg.Logging.Level = logLevel

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	recordStore, err := store.Open(cfg.Export.DatabasePath)
	if err != nil {
		return err
	}
	defer recordStore.Close()

	if err := recordStore.SnapshotAll(context.Background(), cfg.Export.SnapshotDir); err != nil {
		return err
	}

	fmt.Printf("Snapshots written to %s\n", cfg.Export.SnapshotDir)
	return nil
}
