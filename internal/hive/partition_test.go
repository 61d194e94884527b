package hive

import (
	"testing"
	"time"

	"github.com/arkilian/hiveconnect/internal/metastore"
	"github.com/arkilian/hiveconnect/pkg/types"
)

var eventKeys = types.TableSchema{
	{Name: "dt", Type: types.TypeString},
	{Name: "hour", Type: types.TypeInt},
}

func TestNewPartition(t *testing.T) {
	raw := metastore.RawPartition{
		Values:         []string{"2024-02-29", "7"},
		SD:             types.StorageDescriptor{Location: "s3://warehouse/events/dt=2024-02-29/hour=7"},
		LastAccessTime: 1709164800,
	}

	p, err := NewPartition(raw, eventKeys)
	if err != nil {
		t.Fatalf("new partition: %v", err)
	}
	if p.ID != "dt=2024-02-29/hour=7" {
		t.Errorf("partition id: got %q", p.ID)
	}
	if p.Values[0] != "2024-02-29" {
		t.Errorf("string value: got %v", p.Values[0])
	}
	if p.Values[1] != int64(7) {
		t.Errorf("int value should parse to int64, got %T %v", p.Values[1], p.Values[1])
	}
	if !p.LastModified.Equal(time.Unix(1709164800, 0)) {
		t.Errorf("last modified: got %v", p.LastModified)
	}

	vm := p.ValueMap(eventKeys)
	if vm["dt"] != "2024-02-29" || vm["hour"] != int64(7) {
		t.Errorf("value map: got %v", vm)
	}
}

func TestNewPartition_NullSentinel(t *testing.T) {
	raw := metastore.RawPartition{
		Values: []string{types.HiveDefaultPartition, "3"},
		SD:     types.StorageDescriptor{Location: "s3://warehouse/events/dt=__HIVE_DEFAULT_PARTITION__/hour=3"},
	}
	p, err := NewPartition(raw, eventKeys)
	if err != nil {
		t.Fatalf("new partition: %v", err)
	}
	if p.Values[0] != nil {
		t.Errorf("NULL sentinel should parse to nil, got %v", p.Values[0])
	}
}

func TestNewPartition_ValueCountMismatch(t *testing.T) {
	raw := metastore.RawPartition{Values: []string{"2024-02-29"}}
	if _, err := NewPartition(raw, eventKeys); err == nil {
		t.Error("expected error for value/key count mismatch")
	}
}

func TestNewPartition_BadTypedValue(t *testing.T) {
	raw := metastore.RawPartition{Values: []string{"2024-02-29", "noon"}}
	if _, err := NewPartition(raw, eventKeys); err == nil {
		t.Error("expected error for unparseable int partition value")
	}
}

func TestWholeTablePartition(t *testing.T) {
	p := WholeTablePartition(types.StorageDescriptor{Location: "s3://warehouse/plain"})
	if p.ID != "" {
		t.Errorf("synthetic partition should have empty id, got %q", p.ID)
	}
	if p.Location != "s3://warehouse/plain" {
		t.Errorf("location: got %q", p.Location)
	}
}

func TestTableMeta(t *testing.T) {
	table := &metastore.Table{
		DbName:        "analytics",
		TableName:     "events",
		Columns:       types.TableSchema{{Name: "user_id", Type: types.TypeBigInt}},
		PartitionKeys: eventKeys,
		SD:            types.StorageDescriptor{Location: "s3://warehouse/events", InputFormat: types.InputFormatORC},
	}
	meta := NewTableMeta(table, nil, "11111111-2222-3333-4444-555555555555")

	if !meta.HasPartitionKey() {
		t.Error("table with partition keys should report HasPartitionKey")
	}
	if meta.IsBucketTable() {
		t.Error("table without cluster key should not be a bucket table")
	}
	if !meta.IsPartitionColumn("dt") || meta.IsPartitionColumn("user_id") {
		t.Error("partition column classification is wrong")
	}

	if err := meta.CheckColumns([]string{"user_id", "dt"}); err != nil {
		t.Errorf("existing columns should pass: %v", err)
	}
	if err := meta.CheckColumns([]string{"missing"}); err == nil {
		t.Error("unknown column should fail")
	}
}

func TestTableOptions_Validate(t *testing.T) {
	ok := TableOptions{MetastoreURL: "thrift://ms:9083", Database: "analytics", Table: "events"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid options should pass: %v", err)
	}
	for _, bad := range []TableOptions{
		{Database: "analytics", Table: "events"},
		{MetastoreURL: "thrift://ms:9083", Table: "events"},
		{MetastoreURL: "thrift://ms:9083", Database: "analytics"},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("options %+v should fail validation", bad)
		}
	}
}
