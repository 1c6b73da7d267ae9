package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
)

// SQLSource lists the rows of one query as records. Column aliases containing dots
// ("class.name") are grouped into nested records; a group whose columns are all NULL
// becomes nil, which is how a LEFT JOIN without a match reads.
type SQLSource struct {
	DB    *sql.DB
	Query string
	Args  []any
}

func (s *SQLSource) List(ctx context.Context) ([]listing.Record, error) {
	rows, err := s.DB.QueryContext(ctx, s.Query, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()
	return ScanRecords(rows)
}

// ScanRecords reads every remaining row into a record keyed by column name.
func ScanRecords(rows *sql.Rows) ([]listing.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	paths := make([][]string, len(cols))
	for i, col := range cols {
		paths[i] = strings.Split(col, ".")
	}

	records := []listing.Record{}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r := make(listing.Record, len(cols))
		for i, path := range paths {
			setPath(r, path, normalize(values[i]))
		}
		collapse(r)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func setPath(r listing.Record, path []string, v any) {
	for _, seg := range path[:len(path)-1] {
		next, ok := r[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			r[seg] = next
		}
		r = next
	}
	r[path[len(path)-1]] = v
}

// collapse replaces nested records whose values are all nil with nil and reports
// whether r itself is all nil.
func collapse(r map[string]any) bool {
	empty := true
	for k, v := range r {
		if nested, ok := v.(map[string]any); ok {
			if collapse(nested) {
				r[k] = nil
				continue
			}
		}
		if r[k] != nil {
			empty = false
		}
	}
	return empty
}
