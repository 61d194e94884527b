// Package hive holds the connector's view of Hive tables, partitions and
// data files, plus the cluster-key (bucket) machinery used for file
// pruning.
package hive

import (
	"fmt"
	"strings"
	"time"

	"github.com/arkilian/hiveconnect/internal/metastore"
	"github.com/arkilian/hiveconnect/pkg/types"
)

// Partition is a single partition selected for a read. Immutable once
// constructed; planning never mutates partitions after selection.
type Partition struct {
	// ID is the Hive path form of the partition key, e.g.
	// "dt=2024-02-29/region=us". The whole-table partition of an
	// unpartitioned table has an empty ID.
	ID string

	// Values are the typed partition-column values, aligned with the
	// table's partition keys. Nil entries are Hive NULL partitions.
	Values []interface{}

	// RawValues are the metastore string forms of Values.
	RawValues []string

	// Location is the partition's storage directory.
	Location string

	// LastModified is the partition's last access time per the metastore.
	LastModified time.Time
}

// NewPartition builds a Partition from a metastore partition and the
// table's partition-key schema, parsing each value to its column type.
func NewPartition(raw metastore.RawPartition, keys types.TableSchema) (*Partition, error) {
	if len(raw.Values) != len(keys) {
		return nil, fmt.Errorf("hive: partition has %d values for %d partition keys", len(raw.Values), len(keys))
	}

	values := make([]interface{}, len(raw.Values))
	idParts := make([]string, len(raw.Values))
	for i, rawValue := range raw.Values {
		v, err := types.ParseValue(keys[i].Type, rawValue)
		if err != nil {
			return nil, fmt.Errorf("hive: partition key %s: %w", keys[i].Name, err)
		}
		values[i] = v
		idParts[i] = keys[i].Name + "=" + rawValue
	}

	return &Partition{
		ID:           strings.Join(idParts, "/"),
		Values:       values,
		RawValues:    raw.Values,
		Location:     raw.SD.Location,
		LastModified: time.Unix(raw.LastAccessTime, 0).UTC(),
	}, nil
}

// WholeTablePartition builds the synthetic partition representing an
// unpartitioned table's entire location. No metastore round-trip is
// needed; the table-level storage descriptor carries everything.
func WholeTablePartition(sd types.StorageDescriptor) *Partition {
	return &Partition{Location: sd.Location}
}

// ValueMap returns the partition values keyed by partition column name.
func (p *Partition) ValueMap(keys types.TableSchema) map[string]interface{} {
	m := make(map[string]interface{}, len(p.Values))
	for i := range p.Values {
		if i < len(keys) {
			m[keys[i].Name] = p.Values[i]
		}
	}
	return m
}

// File is a single data file belonging to one selected partition. A File
// is exclusively owned by the file set of one read-planning invocation.
type File struct {
	// Path is the file's full storage path.
	Path string

	// Size is the file size in bytes when the lister reports it.
	Size int64

	// Format is the file's on-disk format.
	Format types.FileFormat

	// Partition is the owning partition; never nil for listed files.
	Partition *Partition

	hashIndex    uint64
	hashResolved bool
	hashKnown    bool
}

// NewFile constructs a data file entry for a partition.
func NewFile(path string, size int64, format types.FileFormat, partition *Partition) *File {
	return &File{Path: path, Size: size, Format: format, Partition: partition}
}

// HashIndex returns the file's path-derived hash index, computing and
// caching it on first use. The second return is false when no index can
// be derived from the path.
func (f *File) HashIndex() (uint64, bool) {
	if !f.hashResolved {
		f.hashIndex, f.hashKnown = FileHashIndex(f.Path)
		f.hashResolved = true
	}
	return f.hashIndex, f.hashKnown
}
