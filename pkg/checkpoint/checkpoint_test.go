package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestCursorRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveCursor("companies", PhaseData, "after-123"); err != nil {
		t.Fatalf("Failed to save cursor: %v", err)
	}

	cp, err := store.Load("companies", PhaseData)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp == nil {
		t.Fatal("Expected checkpoint, got nil")
	}
	if cp.Kind != KindCursor {
		t.Errorf("Expected kind %q, got %q", KindCursor, cp.Kind)
	}
	if cp.Cursor != "after-123" {
		t.Errorf("Expected cursor after-123, got %q", cp.Cursor)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveIndex("notes", PhaseAssociations, 42); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	cp, err := store.Load("notes", PhaseAssociations)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp == nil {
		t.Fatal("Expected checkpoint, got nil")
	}
	if cp.Kind != KindIndex {
		t.Errorf("Expected kind %q, got %q", KindIndex, cp.Kind)
	}
	if cp.Index != 42 {
		t.Errorf("Expected index 42, got %d", cp.Index)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveCursor("contacts", PhaseData, "first"); err != nil {
		t.Fatalf("Failed to save cursor: %v", err)
	}
	if err := store.SaveCursor("contacts", PhaseData, "second"); err != nil {
		t.Fatalf("Failed to save cursor: %v", err)
	}

	cp, err := store.Load("contacts", PhaseData)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if cp.Cursor != "second" {
		t.Errorf("Expected latest cursor, got %q", cp.Cursor)
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	cp, err := store.Load("companies", PhaseData)
	if err != nil {
		t.Fatalf("Expected no error for missing checkpoint, got %v", err)
	}
	if cp != nil {
		t.Errorf("Expected nil checkpoint, got %+v", cp)
	}
}

func TestLoadCorruptFailsClosed(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	corruptions := map[string]string{
		"garbage":       "not a checkpoint at all",
		"bad header":    "some-other-format/v9\ncursor\nabc\n",
		"bad kind":      "hubexport-checkpoint/v1\noffset\nabc\n",
		"empty cursor":  "hubexport-checkpoint/v1\ncursor\n\n",
		"bad index":     "hubexport-checkpoint/v1\nindex\nnot-a-number\n",
		"negative":      "hubexport-checkpoint/v1\nindex\n-5\n",
		"missing lines": "hubexport-checkpoint/v1\n",
	}

	for name, content := range corruptions {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "companies_data.checkpoint")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("Failed to write corrupt file: %v", err)
			}

			cp, err := store.Load("companies", PhaseData)
			if err != nil {
				t.Errorf("Expected corrupt checkpoint to fail closed, got error: %v", err)
			}
			if cp != nil {
				t.Errorf("Expected nil checkpoint for corrupt file, got %+v", cp)
			}
		})
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveCursor("calls", PhaseData, "cursor"); err != nil {
		t.Fatalf("Failed to save cursor: %v", err)
	}
	if err := store.Clear("calls", PhaseData); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	cp, err := store.Load("calls", PhaseData)
	if err != nil || cp != nil {
		t.Errorf("Expected no checkpoint after clear, got cp=%v err=%v", cp, err)
	}

	// Clearing a missing checkpoint is not an error
	if err := store.Clear("calls", PhaseData); err != nil {
		t.Errorf("Expected clear of missing checkpoint to succeed, got %v", err)
	}
}

func TestCompletionMarker(t *testing.T) {
	store := newTestStore(t)

	if store.IsComplete("tasks", PhaseData) {
		t.Error("Expected phase to start incomplete")
	}

	if err := store.MarkComplete("tasks", PhaseData); err != nil {
		t.Fatalf("Failed to mark complete: %v", err)
	}

	if !store.IsComplete("tasks", PhaseData) {
		t.Error("Expected phase to be complete after marking")
	}

	// The marker is scoped to one (resource, phase)
	if store.IsComplete("tasks", PhaseAssociations) {
		t.Error("Expected association phase to remain incomplete")
	}
	if store.IsComplete("calls", PhaseData) {
		t.Error("Expected other resource to remain incomplete")
	}
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t)

	resources := []string{"companies", "contacts"}
	for _, res := range resources {
		if err := store.SaveCursor(res, PhaseData, "cursor"); err != nil {
			t.Fatalf("Failed to save cursor: %v", err)
		}
		if err := store.MarkComplete(res, PhaseAssociations); err != nil {
			t.Fatalf("Failed to mark complete: %v", err)
		}
	}

	if err := store.ClearAll(resources); err != nil {
		t.Fatalf("Failed to clear all: %v", err)
	}

	for _, res := range resources {
		if cp, _ := store.Load(res, PhaseData); cp != nil {
			t.Errorf("Expected no checkpoint for %s after ClearAll", res)
		}
		if store.IsComplete(res, PhaseAssociations) {
			t.Errorf("Expected no completion marker for %s after ClearAll", res)
		}
	}
}
