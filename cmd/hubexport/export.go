package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hubexport/pkg/auth"
	"hubexport/pkg/checkpoint"
	"hubexport/pkg/config"
	errs "hubexport/pkg/errors"
	"hubexport/pkg/exporter"
	"hubexport/pkg/hubspot"
	"hubexport/pkg/logger"
	"hubexport/pkg/store"
)

var (
	// Export command flags
	databasePath  string
	checkpointDir string
	snapshotDir   string
	recordLimit   int
	maxRetries    int
	rateLimit     int
	profileName   string
	forceRestart  bool
	resourceNames []string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all CRM records to the local database",
	Long: `Export companies, contacts, notes, tasks and calls from HubSpot into a
local SQLite database, then write CSV snapshots of every table.

The export runs in two passes per resource: the data pass pulls every record
page by page, then the association pass pulls each record's links to other
objects. Both passes checkpoint their position after every unit of work, so
an interrupted run resumes without repeating completed work.

A record limit caps how much each pass pulls; limited runs keep their
checkpoints so a later full run can continue from them.`,
	Example: `  # Full export with defaults
  hubexport export

  # Sample run: at most 100 records per resource
  hubexport export --limit 100

  # Only companies and contacts
  hubexport export --resources companies,contacts

  # Custom locations and client-side pacing
  hubexport export --database crm.db --snapshot-dir ./csv --rate-limit 100

  # Discard all resume state and start over
  hubexport export --force-restart`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&databasePath, "database", "d", "", "SQLite database path (default: hubspot_data.db)")
	exportCmd.Flags().StringVar(&checkpointDir, "checkpoint-dir", "", "directory for checkpoint files (default: checkpoints)")
	exportCmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "directory for CSV snapshots (default: snapshots)")
	exportCmd.Flags().IntVarP(&recordLimit, "limit", "n", 0, "maximum records per resource (0 = no limit)")
	exportCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "maximum retry attempts per request")
	exportCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (0 = unpaced)")
	exportCmd.Flags().StringVarP(&profileName, "profile", "a", "", "use a specific stored token profile")
	exportCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard all checkpoints and completion markers first")
	exportCmd.Flags().StringSliceVar(&resourceNames, "resources", nil, "restrict the run to these resource types (default: all)")
}

func runExport(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if databasePath != "" {
		flags["database"] = databasePath
	}
	if checkpointDir != "" {
		flags["checkpoint-dir"] = checkpointDir
	}
	if snapshotDir != "" {
		flags["snapshot-dir"] = snapshotDir
	}
	if recordLimit > 0 {
		flags["limit"] = recordLimit
	}
	if maxRetries > 0 {
		flags["max-retries"] = maxRetries
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	if len(resourceNames) > 0 {
		for _, name := range resourceNames {
			if _, err := hubspot.ParseResourceType(name); err != nil {
				return err
			}
		}
		flags["resources"] = resourceNames
	}

	// Stored tokens feed the config layer before validation; explicit env
	// and flag values still win.
	if os.Getenv("HUBSPOT_ACCESS_TOKEN") == "" {
		if token := storedToken(profileName); token != "" {
			flags["access-token"] = token
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("hubexport starting")

	checkpoints, err := checkpoint.NewStore(cfg.Export.CheckpointDir)
	if err != nil {
		return err
	}

	if forceRestart {
		names := make([]string, 0, len(hubspot.AllResources()))
		for _, resource := range hubspot.AllResources() {
			names = append(names, resource.String())
		}
		if err := checkpoints.ClearAll(names); err != nil {
			return fmt.Errorf("failed to clear resume state: %w", err)
		}
		log.Info("resume state cleared, starting fresh")
	}

	recordStore, err := store.Open(cfg.Export.DatabasePath)
	if err != nil {
		return err
	}
	defer recordStore.Close()

	client := hubspot.NewClient(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp := exporter.New(client, recordStore, checkpoints, cfg.Export)
	if err := exp.Run(ctx); err != nil {
		return reportExportFailure(log, err)
	}

	log.Info("export finished")
	fmt.Printf("Export complete. Database: %s  Snapshots: %s\n",
		cfg.Export.DatabasePath, cfg.Export.SnapshotDir)
	return nil
}

// reportExportFailure logs the failure and adds a resume hint when the
// transport retry budget was exhausted. The error is returned rather than
// exiting here so deferred cleanup (database close, signal teardown) runs
// before cobra sets the exit code.
func reportExportFailure(log logger.Logger, err error) error {
	var transportErr *errs.TransportError
	if errors.As(err, &transportErr) {
		log.WithError(err).Error("transport retries exhausted, export aborted")
		fmt.Fprintln(os.Stderr, "Export aborted: the API kept failing after repeated retries.")
		fmt.Fprintln(os.Stderr, "Progress is checkpointed; run 'hubexport export' again to resume.")
	}
	return err
}

// storedToken fetches an access token from the credential manager, returning
// empty when none is stored.
func storedToken(profile string) string {
	manager, err := auth.NewManager()
	if err != nil {
		return ""
	}

	var token *auth.Token
	if profile != "" {
		token, err = manager.Retrieve(profile)
	} else {
		token, err = manager.RetrieveDefault()
	}
	if err != nil || token == nil {
		return ""
	}
	return token.AccessToken
}
