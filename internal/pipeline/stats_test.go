package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/doctree"
)

func TestCompileStatsSnapshotPercentiles(t *testing.T) {
	stats := NewCompileStats(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(us)*time.Microsecond, false)
	}
	stats.Record(time.Second, true)

	snap := stats.Snapshot()
	if snap.Count != 5 || snap.CacheHits != 1 {
		t.Fatalf("expected count=5 hits=1, got %d %d", snap.Count, snap.CacheHits)
	}
	if snap.MinUs != 100 || snap.MaxUs != 500 {
		t.Fatalf("expected min=100 max=500, got %d %d", snap.MinUs, snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if math.Abs(snap.P95Us-480) > 1e-9 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if math.Abs(snap.P99Us-496) > 1e-9 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
}

func TestCompileStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewCompileStats(10 * time.Millisecond)
	stats.Record(100*time.Microsecond, false)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Microsecond, false)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected one sample of 200, got %+v", snap)
	}
}

func TestCompileStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewCompileStats(time.Hour)
	stats.Record(-10*time.Microsecond, false)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinUs != 0 || snap.MaxUs != 0 {
		t.Fatalf("expected one clamped sample, got %+v", snap)
	}
}

func TestRenderCache_RecordsStats(t *testing.T) {
	cache := NewRenderCache(time.Hour)
	doc := &doctree.Document{ID: "a", RawText: "text"}
	comp := compiler.New()
	for range 3 {
		if _, _, err := cache.Compile(comp, doc); err != nil {
			t.Fatal(err)
		}
	}
	snap := cache.Stats()
	if snap.Count != 1 || snap.CacheHits != 2 {
		t.Errorf("expected 1 compile and 2 hits, got %+v", snap)
	}
}
