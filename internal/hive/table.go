package hive

import (
	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/metastore"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// TableOptions are the three registration arguments every hive table
// takes: metastore URL, database and table name.
type TableOptions struct {
	MetastoreURL string
	Database     string
	Table        string
}

// Validate checks the registration arguments.
func (o TableOptions) Validate() error {
	if o.MetastoreURL == "" || o.Database == "" || o.Table == "" {
		return errors.NewValidationError(errors.CodeInvalidArgument,
			"hive tables require 3 arguments: metastore url, database and table name")
	}
	return nil
}

// TableMeta is the in-memory table definition the planner operates on:
// the metastore-reported schema plus connector-side declarations.
type TableMeta struct {
	Database  string
	Name      string
	Columns   types.TableSchema
	Partition types.TableSchema // partition keys; empty for unpartitioned tables
	SD        types.StorageDescriptor

	// ClusterBy is the declared cluster-by (bucket) key; nil for
	// non-bucket tables.
	ClusterBy *ClusterKey

	// StorageID is the persistent storage identifier the execution
	// resource context keys data parts by.
	StorageID string
}

// NewTableMeta combines a metastore table definition with connector-side
// declarations.
func NewTableMeta(table *metastore.Table, clusterBy *ClusterKey, storageID string) *TableMeta {
	return &TableMeta{
		Database:  table.DbName,
		Name:      table.TableName,
		Columns:   table.Columns,
		Partition: table.PartitionKeys,
		SD:        table.SD,
		ClusterBy: clusterBy,
		StorageID: storageID,
	}
}

// HasPartitionKey reports whether the table declares partition columns.
func (t *TableMeta) HasPartitionKey() bool {
	return len(t.Partition) > 0
}

// IsBucketTable reports whether the table declares a cluster-by key.
func (t *TableMeta) IsBucketTable() bool {
	return t.ClusterBy != nil
}

// IsPartitionColumn reports whether name is one of the partition keys.
func (t *TableMeta) IsPartitionColumn(name string) bool {
	_, ok := t.Partition.Column(name)
	return ok
}

// CheckColumns verifies that every requested column exists in the table
// schema or its partition keys.
func (t *TableMeta) CheckColumns(names []string) error {
	for _, name := range names {
		if _, ok := t.Columns.Column(name); ok {
			continue
		}
		if _, ok := t.Partition.Column(name); ok {
			continue
		}
		return errors.NewValidationError(errors.CodeUnknownColumn,
			"unknown column "+name+" in table "+t.Database+"."+t.Name)
	}
	return nil
}
