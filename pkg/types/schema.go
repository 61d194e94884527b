// Package types defines the shared data model for the hiveconnect
// read-planning layer: column schemas, storage descriptors, file formats
// and table statistics as reported by the metastore.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the Hive type name of a column, lower-cased.
type ColumnType string

const (
	TypeString    ColumnType = "string"
	TypeTinyInt   ColumnType = "tinyint"
	TypeSmallInt  ColumnType = "smallint"
	TypeInt       ColumnType = "int"
	TypeBigInt    ColumnType = "bigint"
	TypeFloat     ColumnType = "float"
	TypeDouble    ColumnType = "double"
	TypeBoolean   ColumnType = "boolean"
	TypeDate      ColumnType = "date"
	TypeTimestamp ColumnType = "timestamp"
)

// Column describes a single table column.
type Column struct {
	Name string
	Type ColumnType
}

// TableSchema is an ordered list of columns.
type TableSchema []Column

// Column returns the column with the given name, or false if absent.
func (s TableSchema) Column(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in schema order.
func (s TableSchema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// StorageDescriptor holds the physical layout of a table or partition
// as reported by the metastore.
type StorageDescriptor struct {
	Location    string
	InputFormat string
}

// TableStatistics holds optional table-level statistics. ColumnSizes maps
// column name to compressed byte size; consumers must tolerate missing
// columns and a nil map.
type TableStatistics struct {
	RowCount    int64
	ColumnSizes map[string]uint64
}

// HiveDefaultPartition is the sentinel the metastore uses for a NULL
// partition value.
const HiveDefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// ParseValue parses the raw string form of a partition value into the Go
// value for the column type. The metastore NULL sentinel parses to nil for
// every type.
func ParseValue(t ColumnType, raw string) (interface{}, error) {
	if raw == HiveDefaultPartition {
		return nil, nil
	}
	switch t {
	case TypeString, TypeDate:
		return raw, nil
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s value %q: %w", t, raw, err)
		}
		return v, nil
	case TypeFloat, TypeDouble:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s value %q: %w", t, raw, err)
		}
		return v, nil
	case TypeBoolean:
		v, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("parse boolean value %q: %w", raw, err)
		}
		return v, nil
	case TypeTimestamp:
		ts, err := time.Parse("2006-01-02 15:04:05", raw)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp value %q: %w", raw, err)
		}
		return ts.Unix(), nil
	default:
		// Unrecognized types keep their raw form; pruning on them is
		// best-effort string comparison.
		return raw, nil
	}
}
