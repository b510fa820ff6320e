package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doug-martin/goqu/v9"

	// NOTE: required to register the dialect for goqu. Without this import
	// goqu.Dialect("sqlite3") falls back to the default dialect.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/glebarez/go-sqlite"

	"hubexport/pkg/hubspot"
	"hubexport/pkg/logger"
)

// AssociationsTable is the table holding directed association edges
const AssociationsTable = "associations"

// Association is a directed edge between two stored objects. The table has
// no uniqueness constraint; re-running a partially completed association
// phase may duplicate edges already committed before a crash.
type Association struct {
	FromObjectType string
	FromObjectID   string
	ToObjectType   string
	ToObjectID     string
}

// Store is the relational record sink backed by a local SQLite file. A
// single pipeline instance owns the file exclusively; no locking discipline
// is applied.
type Store struct {
	rawDB  *sql.DB
	db     *goqu.Database
	path   string
	logger logger.Logger
}

// Open opens (or creates) the SQLite database at path
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	rawDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		rawDB:  rawDB,
		db:     goqu.New("sqlite3", rawDB),
		path:   path,
		logger: logger.GetLogger(),
	}, nil
}

// Close flushes and closes the underlying database
func (s *Store) Close() error {
	if s.rawDB == nil {
		return nil
	}
	err := s.rawDB.Close()
	s.rawDB = nil
	s.db = nil
	return err
}

// quoteIdent quotes a SQL identifier. Property names come from the remote
// schema and are used as column names, so they are always quoted.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// EnsureSchema creates one table per resource type with an id primary key
// plus one TEXT column per discovered property, and the associations table
// (no primary key). Existing tables are left untouched.
func (s *Store) EnsureSchema(ctx context.Context, properties map[hubspot.ResourceType][]string) error {
	for resource, props := range properties {
		cols := make([]string, 0, len(props)+1)
		cols = append(cols, `"id" TEXT PRIMARY KEY`)
		for _, prop := range props {
			if prop == "id" {
				continue
			}
			cols = append(cols, quoteIdent(prop)+" TEXT")
		}

		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
			quoteIdent(resource.String()), strings.Join(cols, ", "))
		if _, err := s.rawDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table for %s: %w", resource, err)
		}

		s.logger.DebugWithFields("ensured table", map[string]interface{}{
			"resource": resource.String(),
			"columns":  len(cols),
		})
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s
		(from_object_type TEXT, from_object_id TEXT,
		 to_object_type TEXT, to_object_id TEXT)`, AssociationsTable)
	if _, err := s.rawDB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create associations table: %w", err)
	}

	return nil
}

// UpsertObjects inserts or replaces a batch of records keyed on id. Calling
// it repeatedly with overlapping batches is idempotent: the stored row for
// an id always reflects the latest batch it appeared in.
func (s *Store) UpsertObjects(ctx context.Context, resource hubspot.ResourceType, properties []string, batch []hubspot.Object) error {
	if len(batch) == 0 {
		return nil
	}

	update := goqu.Record{}
	for _, prop := range properties {
		if prop == "id" {
			continue
		}
		update[prop] = goqu.I("EXCLUDED." + prop)
	}

	rows := make([]interface{}, 0, len(batch))
	for _, obj := range batch {
		rec := goqu.Record{"id": obj.ID}
		for _, prop := range properties {
			if prop == "id" {
				continue
			}
			rec[prop] = obj.Property(prop)
		}
		rows = append(rows, rec)
	}

	q := s.db.Insert(resource.String()).Prepared(true).Rows(rows...)
	if len(update) > 0 {
		q = q.OnConflict(goqu.DoUpdate("id", update))
	} else {
		q = q.OnConflict(goqu.DoNothing())
	}

	query, params, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build upsert for %s: %w", resource, err)
	}

	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to upsert %s batch: %w", resource, err)
	}

	return nil
}

// InsertAssociations appends association edges. Inserts are deliberately not
// deduplicated; recovery simplicity is favored over exact duplication.
func (s *Store) InsertAssociations(ctx context.Context, edges []Association) error {
	if len(edges) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, goqu.Record{
			"from_object_type": edge.FromObjectType,
			"from_object_id":   edge.FromObjectID,
			"to_object_type":   edge.ToObjectType,
			"to_object_id":     edge.ToObjectID,
		})
	}

	query, params, err := s.db.Insert(AssociationsTable).Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build association insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to insert associations: %w", err)
	}

	return nil
}

// ObjectIDs returns every stored id for a resource type, sorted ascending.
// The sorted order is a guaranteed invariant: the associations phase resumes
// by index into this list, so iteration order must be stable across runs.
func (s *Store) ObjectIDs(ctx context.Context, resource hubspot.ResourceType) ([]string, error) {
	query, params, err := s.db.From(resource.String()).Select("id").Order(goqu.C("id").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build id query for %s: %w", resource, err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids for %s: %w", resource, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ids for %s: %w", resource, err)
	}

	return ids, nil
}

// CountObjects returns the number of stored rows for a resource type
func (s *Store) CountObjects(ctx context.Context, resource hubspot.ResourceType) (int64, error) {
	count, err := s.db.From(resource.String()).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return count, nil
}

// Tables returns the names of all user tables in the database
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.rawDB.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table names: %w", err)
	}

	return tables, nil
}
