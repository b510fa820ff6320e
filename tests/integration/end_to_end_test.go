package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"hubexport/pkg/checkpoint"
	errs "hubexport/pkg/errors"
	"hubexport/pkg/hubspot"
)

// TestMockServerFunctionality tests that the mock server pages correctly
func TestMockServerFunctionality(t *testing.T) {
	mock := NewMockHubSpot()
	defer mock.Close()

	mock.SetObjects("companies", MakeObjects(130))

	resp, err := http.Get(mock.URL() + "/crm/v3/objects/companies?limit=100")
	if err != nil {
		t.Fatalf("Failed to fetch first page: %v", err)
	}
	defer resp.Body.Close()

	var page struct {
		Results []hubspot.Object `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if len(page.Results) != 100 {
		t.Errorf("Expected 100 results, got %d", len(page.Results))
	}

	resp2, err := http.Get(mock.URL() + "/crm/v3/objects/companies?limit=100&after=" + page.Results[99].ID)
	if err != nil {
		t.Fatalf("Failed to fetch second page: %v", err)
	}
	defer resp2.Body.Close()

	if err := json.NewDecoder(resp2.Body).Decode(&page); err != nil {
		t.Fatalf("Failed to decode page: %v", err)
	}
	if len(page.Results) != 30 {
		t.Errorf("Expected 30 results on the last page, got %d", len(page.Results))
	}
}

// TestFullExportRun drives the whole pipeline against the mock API and checks
// the database, the snapshots and the cleaned-up resume state.
func TestFullExportRun(t *testing.T) {
	helper := NewTestHelper(t)
	helper.SeedAllProperties()
	helper.Mock.SetObjects("companies", MakeObjects(130))
	helper.Mock.SetObjects("contacts", MakeObjects(3))
	helper.Mock.AddAssociation("companies", "000001", "contacts", "000002")

	exp := helper.NewExporter()
	if err := exp.Run(context.Background()); err != nil {
		t.Fatalf("Export run failed: %v", err)
	}

	ctx := context.Background()

	companies, err := helper.Store.CountObjects(ctx, hubspot.ResourceCompanies)
	if err != nil {
		t.Fatalf("Failed to count companies: %v", err)
	}
	if companies != 130 {
		t.Errorf("Expected 130 companies, got %d", companies)
	}

	contacts, err := helper.Store.CountObjects(ctx, hubspot.ResourceContacts)
	if err != nil {
		t.Fatalf("Failed to count contacts: %v", err)
	}
	if contacts != 3 {
		t.Errorf("Expected 3 contacts, got %d", contacts)
	}

	for _, name := range []string{"companies.csv", "contacts.csv", "notes.csv", "tasks.csv", "calls.csv", "associations.csv"} {
		if _, err := os.Stat(filepath.Join(helper.Config.Export.SnapshotDir, name)); err != nil {
			t.Errorf("Expected snapshot file %s: %v", name, err)
		}
	}

	// A clean unlimited run wipes every checkpoint and completion marker
	entries, err := os.ReadDir(helper.Config.Export.CheckpointDir)
	if err != nil {
		t.Fatalf("Failed to read checkpoint dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty checkpoint dir after clean run, found %d files", len(entries))
	}
}

// TestResumeAfterTransportFailure aborts a run on a persistent server error
// and verifies the next run skips the already completed phase.
func TestResumeAfterTransportFailure(t *testing.T) {
	helper := NewTestHelper(t)
	helper.SeedAllProperties()
	helper.Mock.SetObjects("companies", MakeObjects(150))
	helper.Mock.SetObjects("contacts", MakeObjects(3))

	helper.Mock.FailPath("/crm/v3/objects/contacts", http.StatusInternalServerError, -1)

	exp := helper.NewExporter()
	err := exp.Run(context.Background())
	if err == nil {
		t.Fatal("Expected run to fail on persistent server error")
	}

	var transportErr *errs.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if transportErr.Attempts != helper.Config.Retry.MaxRetries {
		t.Errorf("Expected %d attempts, got %d", helper.Config.Retry.MaxRetries, transportErr.Attempts)
	}

	// The companies phase drained before the failure and is marked complete
	if !helper.Checkpoints.IsComplete("companies", checkpoint.PhaseData) {
		t.Error("Expected companies data phase to be marked complete")
	}

	companyFetches := helper.Mock.Requests("/crm/v3/objects/companies")
	if companyFetches != 3 {
		t.Errorf("Expected 3 company page fetches, got %d", companyFetches)
	}

	helper.Mock.ClearFailure("/crm/v3/objects/contacts")

	if err := helper.NewExporter().Run(context.Background()); err != nil {
		t.Fatalf("Resumed run failed: %v", err)
	}

	// The completed companies phase was skipped, not refetched
	if got := helper.Mock.Requests("/crm/v3/objects/companies"); got != companyFetches {
		t.Errorf("Expected no further company fetches, got %d total", got)
	}

	contacts, err := helper.Store.CountObjects(context.Background(), hubspot.ResourceContacts)
	if err != nil {
		t.Fatalf("Failed to count contacts: %v", err)
	}
	if contacts != 3 {
		t.Errorf("Expected 3 contacts, got %d", contacts)
	}

	entries, err := os.ReadDir(helper.Config.Export.CheckpointDir)
	if err != nil {
		t.Fatalf("Failed to read checkpoint dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty checkpoint dir after resumed run, found %d files", len(entries))
	}
}
