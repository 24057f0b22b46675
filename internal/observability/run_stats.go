// Package observability tracks per-stage statistics for pipeline runs:
// durations and row counts per stage, reported as a single summary line at
// the end of a run.
package observability

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// StageStats holds statistics for one pipeline stage.
type StageStats struct {
	Stage    string
	Duration time.Duration
	RowsIn   int64
	RowsOut  int64
}

// RunStats accumulates stage statistics across one pipeline invocation.
type RunStats struct {
	mu     sync.Mutex
	order  []string
	stages map[string]*StageStats
}

// NewRunStats creates an empty stats tracker.
func NewRunStats() *RunStats {
	return &RunStats{stages: make(map[string]*StageStats)}
}

// Record adds one stage's outcome. Recording the same stage again
// accumulates duration and row counts.
func (r *RunStats) Record(stage string, d time.Duration, rowsIn, rowsOut int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stages[stage]
	if !ok {
		s = &StageStats{Stage: stage}
		r.stages[stage] = s
		r.order = append(r.order, stage)
	}
	s.Duration += d
	s.RowsIn += rowsIn
	s.RowsOut += rowsOut
}

// Time runs fn and records its duration under stage. Row counts are the
// caller's to report via Record when they matter.
func (r *RunStats) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Record(stage, time.Since(start), 0, 0)
	return err
}

// Stage returns a copy of one stage's statistics.
func (r *RunStats) Stage(stage string) (StageStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stages[stage]
	if !ok {
		return StageStats{}, false
	}
	return *s, true
}

// Summary formats all stages in recording order for a single log line.
func (r *RunStats) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	parts := make([]string, 0, len(r.order))
	for _, name := range r.order {
		s := r.stages[name]
		parts = append(parts, fmt.Sprintf("%s=%s(in=%d,out=%d)",
			s.Stage, s.Duration.Round(time.Millisecond), s.RowsIn, s.RowsOut))
	}
	return strings.Join(parts, " ")
}
