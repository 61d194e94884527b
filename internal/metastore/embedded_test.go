package metastore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	hiveerrors "github.com/arkilian/hiveconnect/internal/errors"
	"github.com/arkilian/hiveconnect/pkg/types"
)

func newTestCatalog(t *testing.T) *Embedded {
	t.Helper()
	catalog, err := NewEmbedded(filepath.Join(t.TempDir(), "metastore.db"))
	if err != nil {
		t.Fatalf("failed to open embedded catalog: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func registerEventsTable(t *testing.T, catalog *Embedded) {
	t.Helper()
	ctx := context.Background()

	table := &Table{
		DbName:    "analytics",
		TableName: "events",
		Columns: types.TableSchema{
			{Name: "user_id", Type: types.TypeBigInt},
			{Name: "payload", Type: types.TypeString},
		},
		PartitionKeys: types.TableSchema{
			{Name: "dt", Type: types.TypeString},
			{Name: "region", Type: types.TypeString},
		},
		SD: types.StorageDescriptor{
			Location:    "s3://warehouse/analytics.db/events",
			InputFormat: types.InputFormatParquet,
		},
	}
	if err := catalog.CreateTable(ctx, table); err != nil {
		t.Fatalf("create table: %v", err)
	}

	partitions := []RawPartition{
		{Values: []string{"2024-02-28", "us"}, SD: types.StorageDescriptor{Location: "s3://warehouse/analytics.db/events/dt=2024-02-28/region=us"}, LastAccessTime: 100},
		{Values: []string{"2024-02-29", "us"}, SD: types.StorageDescriptor{Location: "s3://warehouse/analytics.db/events/dt=2024-02-29/region=us"}, LastAccessTime: 200},
		{Values: []string{"2024-02-29", "eu"}, SD: types.StorageDescriptor{Location: "s3://warehouse/analytics.db/events/dt=2024-02-29/region=eu"}, LastAccessTime: 300},
	}
	for _, p := range partitions {
		if err := catalog.AddPartition(ctx, "analytics", "events", p); err != nil {
			t.Fatalf("add partition %v: %v", p.Values, err)
		}
	}
}

func TestEmbedded_GetTable(t *testing.T) {
	catalog := newTestCatalog(t)
	registerEventsTable(t, catalog)
	ctx := context.Background()

	table, err := catalog.GetTable(ctx, "analytics", "events")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if table.SD.InputFormat != types.InputFormatParquet {
		t.Errorf("input format: got %q", table.SD.InputFormat)
	}
	if len(table.PartitionKeys) != 2 || table.PartitionKeys[0].Name != "dt" {
		t.Errorf("partition keys: got %v", table.PartitionKeys)
	}

	_, err = catalog.GetTable(ctx, "analytics", "missing")
	wantErr := hiveerrors.New(hiveerrors.ErrCategoryMetastore, hiveerrors.CodeTableNotFound, "")
	if !errors.Is(err, wantErr) {
		t.Errorf("missing table: got %v, want TABLE_NOT_FOUND", err)
	}
}

func TestEmbedded_GetPartitionsByFilter(t *testing.T) {
	catalog := newTestCatalog(t)
	registerEventsTable(t, catalog)
	ctx := context.Background()

	// Empty filter returns everything.
	all, err := catalog.GetPartitionsByFilter(ctx, "analytics", "events", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 partitions, got %d", len(all))
	}

	// Supported equality filter narrows the result.
	filtered, err := catalog.GetPartitionsByFilter(ctx, "analytics", "events", `dt = "2024-02-29"`)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("expected 2 partitions for dt filter, got %d", len(filtered))
	}

	conj, err := catalog.GetPartitionsByFilter(ctx, "analytics", "events", `dt = "2024-02-29" and region = "eu"`)
	if err != nil {
		t.Fatalf("conjunctive list: %v", err)
	}
	if len(conj) != 1 || conj[0].Values[1] != "eu" {
		t.Errorf("expected single eu partition, got %v", conj)
	}

	// Unsupported syntax falls back to returning everything, not erroring.
	fallback, err := catalog.GetPartitionsByFilter(ctx, "analytics", "events", `dt like "2024%"`)
	if err != nil {
		t.Fatalf("fallback list: %v", err)
	}
	if len(fallback) != 3 {
		t.Errorf("unsupported filter should return all partitions, got %d", len(fallback))
	}
}

func TestEmbedded_GetTableStats(t *testing.T) {
	catalog := newTestCatalog(t)
	registerEventsTable(t, catalog)
	ctx := context.Background()

	// No stats recorded yet: (nil, nil), not an error.
	stats, err := catalog.GetTableStats(ctx, "analytics", "events", nil, true)
	if err != nil {
		t.Fatalf("stats before recording: %v", err)
	}
	if stats != nil {
		t.Fatalf("expected nil stats, got %+v", stats)
	}

	err = catalog.SetTableStats(ctx, "analytics", "events", &types.TableStatistics{
		RowCount:    12345,
		ColumnSizes: map[string]uint64{"user_id": 800, "payload": 90000},
	})
	if err != nil {
		t.Fatalf("set stats: %v", err)
	}

	stats, err = catalog.GetTableStats(ctx, "analytics", "events", []string{"payload"}, true)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.RowCount != 12345 {
		t.Errorf("row count: got %d", stats.RowCount)
	}
	if len(stats.ColumnSizes) != 1 || stats.ColumnSizes["payload"] != 90000 {
		t.Errorf("column sizes should be restricted to requested columns, got %v", stats.ColumnSizes)
	}
}

func TestRegistry_ConstructOncePerURL(t *testing.T) {
	var built int
	registry := NewRegistry(func(url string) (Client, error) {
		built++
		return newTestCatalog(t), nil
	})

	a, err := registry.GetOrCreate("sqlite://a")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	b, err := registry.GetOrCreate("sqlite://a")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if a != b {
		t.Error("same URL must return the shared client instance")
	}
	if built != 1 {
		t.Errorf("factory should run once per URL, ran %d times", built)
	}

	if _, err := registry.GetOrCreate("sqlite://b"); err != nil {
		t.Fatalf("second URL: %v", err)
	}
	if built != 2 || registry.Len() != 2 {
		t.Errorf("expected 2 constructed clients, got built=%d len=%d", built, registry.Len())
	}

	if _, err := registry.GetOrCreate(""); err == nil {
		t.Error("empty URL should error")
	}
}
