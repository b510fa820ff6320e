package integration

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"hubexport/pkg/checkpoint"
	"hubexport/pkg/config"
	"hubexport/pkg/exporter"
	"hubexport/pkg/hubspot"
	"hubexport/pkg/store"
)

// TestHelper wires a full pipeline (real client, real SQLite store, real
// checkpoint store) against a mock API server under a per-test temp directory.
type TestHelper struct {
	t *testing.T

	Mock        *MockHubSpot
	Config      *config.Config
	Store       *store.Store
	Checkpoints *checkpoint.Store
}

// NewTestHelper creates a helper with a running mock server and an empty
// database. Cleanup happens automatically via t.Cleanup.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	mock := NewMockHubSpot()
	t.Cleanup(mock.Close)

	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.HubSpot.AccessToken = "pat-na1-integration-test"
	cfg.HubSpot.BaseURL = mock.URL()
	cfg.Retry.MaxRetries = 3
	cfg.Retry.RetryDelay = time.Millisecond
	cfg.Export.DatabasePath = filepath.Join(dir, "export.db")
	cfg.Export.CheckpointDir = filepath.Join(dir, "checkpoints")
	cfg.Export.SnapshotDir = filepath.Join(dir, "snapshots")

	db, err := store.Open(cfg.Export.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	checkpoints, err := checkpoint.NewStore(cfg.Export.CheckpointDir)
	if err != nil {
		t.Fatalf("Failed to create checkpoint store: %v", err)
	}

	return &TestHelper{
		t:           t,
		Mock:        mock,
		Config:      cfg,
		Store:       db,
		Checkpoints: checkpoints,
	}
}

// NewExporter builds an exporter over the helper's collaborators
func (h *TestHelper) NewExporter() *exporter.Exporter {
	client := hubspot.NewClient(h.Config, nil)
	return exporter.New(client, h.Store, h.Checkpoints, h.Config.Export)
}

// SeedAllProperties registers a minimal property schema for every resource so
// schema discovery succeeds.
func (h *TestHelper) SeedAllProperties() {
	for _, resource := range hubspot.AllResources() {
		h.Mock.SetProperties(resource.String(), []string{"name"})
	}
}

// MakeObjects builds n sequential objects with zero-padded ids so that
// lexicographic and numeric order agree.
func MakeObjects(n int) []hubspot.Object {
	objects := make([]hubspot.Object, 0, n)
	for i := 1; i <= n; i++ {
		objects = append(objects, hubspot.Object{
			ID:         fmt.Sprintf("%06d", i),
			Properties: map[string]string{"name": fmt.Sprintf("record %d", i)},
		})
	}
	return objects
}
