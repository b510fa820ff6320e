package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotAll dumps every table, including associations, to one CSV file per
// table under dir. This is a read-only projection of the store.
func (s *Store) SnapshotAll(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tables, err := s.Tables(ctx)
	if err != nil {
		return err
	}

	for _, table := range tables {
		path := filepath.Join(dir, table+".csv")
		if err := s.SnapshotTable(ctx, table, path); err != nil {
			return err
		}

		s.logger.InfoWithFields("table exported", map[string]interface{}{
			"table": table,
			"path":  path,
		})
	}

	return nil
}

// SnapshotTable writes one table to a CSV file with a header row matching
// the table's column order.
func (s *Store) SnapshotTable(ctx context.Context, table, path string) error {
	query, _, err := s.db.From(table).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build snapshot query for %s: %w", table, err)
	}

	rows, err := s.rawDB.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", table, err)
	}

	values := make([]sql.NullString, len(columns))
	scanTargets := make([]interface{}, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}

		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = v.String
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", table, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot of %s: %w", table, err)
	}

	return file.Sync()
}
