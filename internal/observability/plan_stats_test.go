package observability

import (
	"sync"
	"testing"
)

func TestPlanStatsAccumulates(t *testing.T) {
	stats := NewPlanStats()
	stats.RecordPlan("sales.events", 10, 3, 30, 12)
	stats.RecordPlan("sales.events", 8, 2, 20, 20)
	stats.RecordPlan("sales.orders", 1, 1, 5, 5)

	events, ok := stats.Table("sales.events")
	if !ok {
		t.Fatal("sales.events not recorded")
	}
	if events.Plans != 2 || events.PartitionsTotal != 18 || events.PartitionsSelected != 5 {
		t.Errorf("events = %+v", events)
	}
	if events.FilesListed != 50 || events.FilesSelected != 32 {
		t.Errorf("events file counters = %+v", events)
	}
	if events.LastPlanAt.IsZero() {
		t.Error("LastPlanAt not set")
	}

	snapshot := stats.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d tables, want 2", len(snapshot))
	}
	if snapshot["sales.orders"].Plans != 1 {
		t.Errorf("orders = %+v", snapshot["sales.orders"])
	}

	if _, ok := stats.Table("sales.unknown"); ok {
		t.Error("unknown table reported as seen")
	}

	stats.Reset()
	if len(stats.Snapshot()) != 0 {
		t.Error("Reset left counters behind")
	}
}

func TestPlanStatsConcurrent(t *testing.T) {
	stats := NewPlanStats()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				stats.RecordPlan("sales.events", 1, 1, 2, 1)
			}
		}()
	}
	wg.Wait()

	got, _ := stats.Table("sales.events")
	if got.Plans != 1000 || got.FilesListed != 2000 {
		t.Errorf("concurrent counters = %+v", got)
	}
}
