// Package observability provides in-process counters for read planning.
package observability

import (
	"sync"
	"time"
)

// TableStats aggregates planning outcomes for one table.
type TableStats struct {
	Plans              int64
	PartitionsTotal    int64
	PartitionsSelected int64
	FilesListed        int64
	FilesSelected      int64
	LastPlanAt         time.Time
}

// PlanStats records per-table planning counters. Safe for concurrent use.
type PlanStats struct {
	mu     sync.Mutex
	tables map[string]*TableStats
}

// NewPlanStats creates an empty recorder.
func NewPlanStats() *PlanStats {
	return &PlanStats{tables: make(map[string]*TableStats)}
}

// RecordPlan accumulates the outcome of one planning call for a table,
// keyed by its qualified name.
func (s *PlanStats) RecordPlan(table string, partitionsTotal, partitionsSelected, filesListed, filesSelected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tables[table]
	if !ok {
		st = &TableStats{}
		s.tables[table] = st
	}
	st.Plans++
	st.PartitionsTotal += int64(partitionsTotal)
	st.PartitionsSelected += int64(partitionsSelected)
	st.FilesListed += int64(filesListed)
	st.FilesSelected += int64(filesSelected)
	st.LastPlanAt = time.Now()
}

// Snapshot copies the current counters for all tables.
func (s *PlanStats) Snapshot() map[string]TableStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]TableStats, len(s.tables))
	for name, st := range s.tables {
		out[name] = *st
	}
	return out
}

// Reset drops all recorded counters.
func (s *PlanStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*TableStats)
}

// Table returns the counters for one table and whether it was seen.
func (s *PlanStats) Table(name string) (TableStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.tables[name]
	if !ok {
		return TableStats{}, false
	}
	return *st, true
}
