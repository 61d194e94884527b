package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	hiveerrors "github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// Embedded is a SQLite-backed metastore catalog. It implements Client
// for local development and tests, standing in for a remote Hive
// metastore service.
type Embedded struct {
	mu sync.Mutex
	db *sql.DB
}

const embeddedSchema = `
CREATE TABLE IF NOT EXISTS tables (
	db_name        TEXT NOT NULL,
	table_name     TEXT NOT NULL,
	location       TEXT NOT NULL,
	input_format   TEXT NOT NULL,
	columns        TEXT NOT NULL,
	partition_keys TEXT NOT NULL,
	PRIMARY KEY (db_name, table_name)
);
CREATE TABLE IF NOT EXISTS partitions (
	db_name          TEXT NOT NULL,
	table_name       TEXT NOT NULL,
	part_values      TEXT NOT NULL,
	location         TEXT NOT NULL,
	last_access_time INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (db_name, table_name, part_values)
);
CREATE TABLE IF NOT EXISTS table_stats (
	db_name      TEXT NOT NULL,
	table_name   TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	column_sizes TEXT NOT NULL,
	PRIMARY KEY (db_name, table_name)
);
`

// NewEmbedded opens (or creates) an embedded catalog at path.
func NewEmbedded(path string) (*Embedded, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("metastore: open embedded catalog: %w", err)
	}
	if _, err := db.Exec(embeddedSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("metastore: initialize embedded schema: %w", err)
	}
	return &Embedded{db: db}, nil
}

// Close releases the underlying database handle.
func (e *Embedded) Close() error {
	return e.db.Close()
}

// CreateTable registers a table definition.
func (e *Embedded) CreateTable(ctx context.Context, table *Table) error {
	cols, err := json.Marshal(table.Columns)
	if err != nil {
		return fmt.Errorf("metastore: marshal columns: %w", err)
	}
	keys, err := json.Marshal(table.PartitionKeys)
	if err != nil {
		return fmt.Errorf("metastore: marshal partition keys: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tables
			(db_name, table_name, location, input_format, columns, partition_keys)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		table.DbName, table.TableName, table.SD.Location, table.SD.InputFormat, cols, keys)
	if err != nil {
		return fmt.Errorf("metastore: create table: %w", err)
	}
	return nil
}

// AddPartition registers a partition for an existing table.
func (e *Embedded) AddPartition(ctx context.Context, db, table string, partition RawPartition) error {
	values, err := json.Marshal(partition.Values)
	if err != nil {
		return fmt.Errorf("metastore: marshal partition values: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO partitions
			(db_name, table_name, part_values, location, last_access_time)
		 VALUES (?, ?, ?, ?, ?)`,
		db, table, values, partition.SD.Location, partition.LastAccessTime)
	if err != nil {
		return fmt.Errorf("metastore: add partition: %w", err)
	}
	return nil
}

// SetTableStats stores table statistics.
func (e *Embedded) SetTableStats(ctx context.Context, db, table string, stats *types.TableStatistics) error {
	sizes, err := json.Marshal(stats.ColumnSizes)
	if err != nil {
		return fmt.Errorf("metastore: marshal column sizes: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO table_stats (db_name, table_name, row_count, column_sizes)
		 VALUES (?, ?, ?, ?)`,
		db, table, stats.RowCount, sizes)
	if err != nil {
		return fmt.Errorf("metastore: set table stats: %w", err)
	}
	return nil
}

// GetTable implements Client.
func (e *Embedded) GetTable(ctx context.Context, db, table string) (*Table, error) {
	var location, inputFormat, colsJSON, keysJSON string
	err := e.db.QueryRowContext(ctx,
		`SELECT location, input_format, columns, partition_keys
		 FROM tables WHERE db_name = ? AND table_name = ?`,
		db, table,
	).Scan(&location, &inputFormat, &colsJSON, &keysJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, hiveerrors.New(hiveerrors.ErrCategoryMetastore, hiveerrors.CodeTableNotFound,
			fmt.Sprintf("table %s.%s not found", db, table))
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: get table: %w", err)
	}

	result := &Table{
		DbName:    db,
		TableName: table,
		SD:        types.StorageDescriptor{Location: location, InputFormat: inputFormat},
	}
	if err := json.Unmarshal([]byte(colsJSON), &result.Columns); err != nil {
		return nil, fmt.Errorf("metastore: decode columns: %w", err)
	}
	if err := json.Unmarshal([]byte(keysJSON), &result.PartitionKeys); err != nil {
		return nil, fmt.Errorf("metastore: decode partition keys: %w", err)
	}
	return result, nil
}

// GetPartitionsByFilter implements Client. The embedded catalog supports
// conjunctions of string/integer equality in the filter; anything it
// cannot parse falls back to returning every partition, which is the
// documented advisory behavior.
func (e *Embedded) GetPartitionsByFilter(ctx context.Context, db, table, filter string) ([]RawPartition, error) {
	tbl, err := e.GetTable(ctx, db, table)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx,
		`SELECT part_values, location, last_access_time
		 FROM partitions WHERE db_name = ? AND table_name = ?`,
		db, table)
	if err != nil {
		return nil, fmt.Errorf("metastore: query partitions: %w", err)
	}
	defer rows.Close()

	equalities, filterOK := parseEqualityFilter(filter)

	var partitions []RawPartition
	for rows.Next() {
		var valuesJSON, location string
		var lastAccess int64
		if err := rows.Scan(&valuesJSON, &location, &lastAccess); err != nil {
			return nil, fmt.Errorf("metastore: scan partition: %w", err)
		}
		var values []string
		if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
			return nil, fmt.Errorf("metastore: decode partition values: %w", err)
		}
		if filterOK && !matchesEqualities(tbl.PartitionKeys, values, equalities) {
			continue
		}
		partitions = append(partitions, RawPartition{
			Values:         values,
			SD:             types.StorageDescriptor{Location: location, InputFormat: tbl.SD.InputFormat},
			LastAccessTime: lastAccess,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metastore: iterate partitions: %w", err)
	}
	return partitions, nil
}

// GetTableStats implements Client. Returns (nil, nil) when no statistics
// were recorded for the table.
func (e *Embedded) GetTableStats(ctx context.Context, db, table string, columns []string, mergePartitionStats bool) (*types.TableStatistics, error) {
	var rowCount int64
	var sizesJSON string
	err := e.db.QueryRowContext(ctx,
		`SELECT row_count, column_sizes FROM table_stats
		 WHERE db_name = ? AND table_name = ?`,
		db, table,
	).Scan(&rowCount, &sizesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metastore: get table stats: %w", err)
	}

	var sizes map[string]uint64
	if err := json.Unmarshal([]byte(sizesJSON), &sizes); err != nil {
		return nil, fmt.Errorf("metastore: decode column sizes: %w", err)
	}

	if len(columns) > 0 {
		filtered := make(map[string]uint64, len(columns))
		for _, c := range columns {
			if size, ok := sizes[c]; ok {
				filtered[c] = size
			}
		}
		sizes = filtered
	}
	return &types.TableStatistics{RowCount: rowCount, ColumnSizes: sizes}, nil
}

// parseEqualityFilter parses a conjunction of `col = "value"` or
// `col = 123` terms. Returns ok=false for anything else, including an
// empty filter.
func parseEqualityFilter(filter string) (map[string]string, bool) {
	if strings.TrimSpace(filter) == "" {
		return nil, false
	}
	equalities := make(map[string]string)
	for _, term := range strings.Split(filter, " and ") {
		parts := strings.SplitN(term, "=", 2)
		if len(parts) != 2 {
			return nil, false
		}
		col := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if col == "" || val == "" {
			return nil, false
		}
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) && len(val) >= 2 {
			equalities[col] = val[1 : len(val)-1]
			continue
		}
		if _, err := strconv.ParseInt(val, 10, 64); err == nil {
			equalities[col] = val
			continue
		}
		return nil, false
	}
	return equalities, true
}

func matchesEqualities(keys types.TableSchema, values []string, equalities map[string]string) bool {
	for col, want := range equalities {
		for i, key := range keys {
			if key.Name != col {
				continue
			}
			if i >= len(values) || values[i] != want {
				return false
			}
		}
	}
	return true
}
