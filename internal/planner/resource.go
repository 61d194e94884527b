package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/snappy"

	"github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/internal/hive"
)

// ResourceContext receives the packaged plan for a transaction. The
// server-side implementation forwards both calls to the workers that
// will execute the read.
type ResourceContext interface {
	// AddCreateQuery registers the worker-local table definition under
	// its per-transaction alias.
	AddCreateQuery(ctx context.Context, storageID, createQuery, aliasName string) error

	// AddDataParts attaches the encoded file set to the storage.
	AddDataParts(ctx context.Context, storageID string, payload []byte) error
}

// CloudTableBuilder renders the worker-local table definition for one
// planning transaction.
type CloudTableBuilder struct {
	table *hive.TableMeta
	txnID string
}

// NewCloudTableBuilder scopes a builder to a table and transaction.
func NewCloudTableBuilder(table *hive.TableMeta, txnID string) *CloudTableBuilder {
	return &CloudTableBuilder{table: table, txnID: txnID}
}

// AliasName is the per-transaction worker table name.
func (b *CloudTableBuilder) AliasName() string {
	return b.table.Name + "_" + b.txnID
}

// CreateQuery renders the CREATE TABLE statement workers run to
// materialize the transaction-scoped table.
func (b *CloudTableBuilder) CreateQuery() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s.%s (", b.table.Database, b.AliasName())
	for i, col := range b.table.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "`%s` %s", col.Name, col.Type)
	}
	fmt.Fprintf(&sb, ") ENGINE = CloudHive('%s', '%s', '%s')",
		b.table.SD.Location, b.table.Database, b.table.Name)
	if len(b.table.Partition) > 0 {
		fmt.Fprintf(&sb, " PARTITION BY (%s)", strings.Join(b.table.Partition.Names(), ", "))
	}
	return sb.String()
}

// FilePayload is the wire form of one planned file.
type FilePayload struct {
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Format      string `json:"format"`
	PartitionID string `json:"partition_id"`
	Location    string `json:"location"`
}

// FileSetPayload is the encoded plan attached to the storage as data
// parts.
type FileSetPayload struct {
	SDLocation string        `json:"sd_location"`
	Files      []FilePayload `json:"files"`
}

// EncodeFileSet serializes the planned files as snappy-compressed JSON.
func EncodeFileSet(sdLocation string, files []*hive.File) ([]byte, error) {
	payload := FileSetPayload{
		SDLocation: sdLocation,
		Files:      make([]FilePayload, 0, len(files)),
	}
	for _, f := range files {
		payload.Files = append(payload.Files, FilePayload{
			Path:        f.Path,
			Size:        f.Size,
			Format:      f.Format.String(),
			PartitionID: f.Partition.ID,
			Location:    f.Partition.Location,
		})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewResourceError("encode file set", err)
	}
	return snappy.Encode(nil, raw), nil
}

// DecodeFileSet reverses EncodeFileSet.
func DecodeFileSet(data []byte) (string, []FilePayload, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return "", nil, errors.NewResourceError("decompress file set", err)
	}
	var payload FileSetPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, errors.NewResourceError("decode file set", err)
	}
	return payload.SDLocation, payload.Files, nil
}

// collectResource packages the plan into the resource context and sets
// the plan's worker-local table name.
func (p *Planner) collectResource(ctx context.Context, plan *ReadPlan, txnID string) error {
	builder := NewCloudTableBuilder(p.table, txnID)

	if err := p.resources.AddCreateQuery(ctx, p.table.StorageID, builder.CreateQuery(), builder.AliasName()); err != nil {
		return errors.NewResourceError("register create query for "+builder.AliasName(), err)
	}

	payload, err := EncodeFileSet(p.table.SD.Location, plan.Files)
	if err != nil {
		return err
	}
	if err := p.resources.AddDataParts(ctx, p.table.StorageID, payload); err != nil {
		return errors.NewResourceError("register data parts for "+builder.AliasName(), err)
	}

	plan.LocalTableName = builder.AliasName()
	return nil
}
