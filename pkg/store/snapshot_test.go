package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubexport/pkg/hubspot"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSnapshotAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	batch := []hubspot.Object{
		{ID: "1", Properties: map[string]string{"name": "Acme", "domain": "acme.test"}},
		{ID: "2", Properties: map[string]string{"name": "Globex"}},
	}
	require.NoError(t, store.UpsertObjects(ctx, hubspot.ResourceCompanies, []string{"name", "domain"}, batch))
	require.NoError(t, store.InsertAssociations(ctx, []Association{
		{FromObjectType: "companies", FromObjectID: "1", ToObjectType: "contacts", ToObjectID: "9"},
	}))

	dir := t.TempDir()
	require.NoError(t, store.SnapshotAll(ctx, dir))

	// One CSV per table, including the empty contacts table
	for _, name := range []string{"companies.csv", "contacts.csv", "associations.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected snapshot file %s", name)
	}

	records := readCSV(t, filepath.Join(dir, "companies.csv"))
	require.Len(t, records, 3)

	header := records[0]
	assert.Contains(t, header, "id")
	assert.Contains(t, header, "name")
	assert.Contains(t, header, "domain")

	assocRecords := readCSV(t, filepath.Join(dir, "associations.csv"))
	require.Len(t, assocRecords, 2)
	assert.Equal(t, []string{"from_object_type", "from_object_id", "to_object_type", "to_object_id"}, assocRecords[0])
	assert.Equal(t, []string{"companies", "1", "contacts", "9"}, assocRecords[1])
}

func TestSnapshotEmptyTableWritesHeaderOnly(t *testing.T) {
	store := newTestStore(t)

	dir := t.TempDir()
	require.NoError(t, store.SnapshotAll(context.Background(), dir))

	records := readCSV(t, filepath.Join(dir, "contacts.csv"))
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "id")
	assert.Contains(t, records[0], "email")
}
