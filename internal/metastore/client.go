// Package metastore defines the Hive metastore client boundary consumed
// by the read planner, an explicit registry owning per-URL client
// lifecycle, and an embedded SQLite-backed catalog used for local
// development and tests.
package metastore

import (
	"context"

	"github.com/arkilian/hiveconnect/pkg/types"
)

// Table is the table definition as reported by the metastore.
type Table struct {
	DbName    string
	TableName string

	// Columns are the data columns, excluding partition keys.
	Columns types.TableSchema

	// PartitionKeys are the partition columns in declaration order;
	// empty for unpartitioned tables.
	PartitionKeys types.TableSchema

	// SD is the table-level storage descriptor.
	SD types.StorageDescriptor
}

// RawPartition is a single partition as reported by the metastore.
// Values align positionally with the table's PartitionKeys.
type RawPartition struct {
	Values         []string
	SD             types.StorageDescriptor
	LastAccessTime int64
}

// Client is the metastore wire client boundary. Implementations own
// connection lifecycle and caching; the planner treats the client as an
// injected collaborator.
type Client interface {
	// GetTable fetches a table definition.
	GetTable(ctx context.Context, db, table string) (*Table, error)

	// GetPartitionsByFilter returns the partitions of a table, optionally
	// narrowed by a metastore filter string. The filter is advisory:
	// implementations may apply it partially or ignore it entirely, and
	// unsupported filter syntax is a fallback, never an error.
	GetPartitionsByFilter(ctx context.Context, db, table, filter string) ([]RawPartition, error)

	// GetTableStats returns table statistics for the given columns, or
	// (nil, nil) when no statistics are available.
	GetTableStats(ctx context.Context, db, table string, columns []string, mergePartitionStats bool) (*types.TableStatistics, error)
}
