package observability

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunStats_RecordAccumulates(t *testing.T) {
	stats := NewRunStats()
	stats.Record("query", 100*time.Millisecond, 0, 500)
	stats.Record("query", 50*time.Millisecond, 0, 250)

	s, ok := stats.Stage("query")
	if !ok {
		t.Fatal("stage should exist")
	}
	if s.Duration != 150*time.Millisecond {
		t.Errorf("duration: got %v, want 150ms", s.Duration)
	}
	if s.RowsOut != 750 {
		t.Errorf("rows out: got %d, want 750", s.RowsOut)
	}
}

func TestRunStats_Time(t *testing.T) {
	stats := NewRunStats()

	wantErr := errors.New("boom")
	err := stats.Time("reshape", func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Time should pass the error through, got %v", err)
	}

	if _, ok := stats.Stage("reshape"); !ok {
		t.Error("stage should be recorded even on error")
	}
}

func TestRunStats_SummaryOrder(t *testing.T) {
	stats := NewRunStats()
	stats.Record("query", time.Millisecond, 0, 10)
	stats.Record("reshape", time.Millisecond, 10, 4)
	stats.Record("write", time.Millisecond, 4, 4)

	sum := stats.Summary()
	qi := strings.Index(sum, "query=")
	ri := strings.Index(sum, "reshape=")
	wi := strings.Index(sum, "write=")
	if qi < 0 || ri < 0 || wi < 0 || !(qi < ri && ri < wi) {
		t.Errorf("summary should list stages in recording order: %q", sum)
	}
}
