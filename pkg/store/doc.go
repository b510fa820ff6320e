// Package store provides the local SQLite database for exported CRM records.
//
// The store package handles:
//   - Creating one table per resource type from its discovered properties
//   - Idempotent upserts keyed on the HubSpot object id
//   - An append-only associations table for edges between objects
//   - CSV snapshots of every table
//
// The Store type is the primary interface. Schema creation is idempotent, so
// reopening an existing database and replaying pages that were already
// persisted is safe; replayed records overwrite themselves in place.
//
// Usage:
//
//	db, err := store.Open("hubspot_data.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.EnsureSchema(ctx, map[hubspot.ResourceType][]string{
//	    hubspot.ResourceCompanies: {"name", "domain"},
//	})
//	err = db.UpsertObjects(ctx, hubspot.ResourceCompanies, props, objects)
//	err = db.SnapshotAll(ctx, "snapshots")
package store
