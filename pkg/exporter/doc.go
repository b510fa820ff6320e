// Package exporter provides the core functionality for exporting HubSpot CRM
// records into a local SQLite database.
//
// The exporter package orchestrates the entire export run, coordinating
// between the HubSpot API client, the record store, and the checkpoint store.
//
// Architecture:
//
// The Exporter struct is the main component that:
//   - Discovers the property schema for every resource type
//   - Pages through each resource's records and upserts them locally
//   - Walks stored object ids to collect association edges
//   - Checkpoints progress after every persisted page or processed id
//   - Writes CSV snapshots of every table at the end of a run
//
// Usage:
//
//	client := hubspot.NewClient(cfg)
//	db, err := store.Open(cfg.Export.DatabasePath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	checkpoints := checkpoint.NewStore(cfg.Export.CheckpointDir)
//
//	exp := exporter.New(client, db, checkpoints, cfg.Export)
//	if err := exp.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Resumability:
//
// Every phase saves a checkpoint after each unit of durable progress. When a
// run is interrupted and restarted, completed phases are skipped via their
// completion markers and in-flight phases resume from the saved cursor or
// index. A phase whose pagination cursor stops advancing is abandoned with
// its checkpoint intact so the next run can try again.
package exporter
