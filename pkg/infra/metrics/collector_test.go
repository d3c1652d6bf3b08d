package metrics

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	if collector == nil {
		t.Error("NewCollector() returned nil")
	}

	_, ok := collector.(*systemCollector)
	if !ok {
		t.Error("NewCollector() did not return *systemCollector")
	}
}

func TestCollector_Collect(t *testing.T) {
	collector := NewCollector()

	stats, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}

	if stats.Memory.Total == 0 {
		t.Error("Memory total should not be zero")
	}

	if stats.Memory.Used > stats.Memory.Total {
		t.Errorf("Memory used (%d) should not exceed total (%d)", stats.Memory.Used, stats.Memory.Total)
	}

	if stats.Memory.Percent < 0 || stats.Memory.Percent > 100 {
		t.Errorf("Memory percent out of range: %v", stats.Memory.Percent)
	}

	if stats.Disk.Total == 0 {
		t.Error("Disk total should not be zero")
	}

	if stats.Disk.Used > stats.Disk.Total {
		t.Errorf("Disk used (%d) should not exceed total (%d)", stats.Disk.Used, stats.Disk.Total)
	}

	if stats.Disk.Percent < 0 || stats.Disk.Percent > 100 {
		t.Errorf("Disk percent out of range: %v", stats.Disk.Percent)
	}

	if stats.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

type fixedCollector struct {
	stats Stats
	err   error
	calls int
}

func (f *fixedCollector) Collect(ctx context.Context) (Stats, error) {
	f.calls++
	return f.stats, f.err
}

func TestHostStats_Percentages(t *testing.T) {
	inner := &fixedCollector{
		stats: Stats{
			Memory:    MemoryStats{Used: 1000, Total: 2000, Available: 1000, Percent: 50.0},
			Disk:      DiskStats{Used: 900, Total: 1000, Free: 100, Percent: 90.0},
			Timestamp: time.Now(),
		},
	}
	host := NewHostStats(inner)

	mem, err := host.MemoryUsedPercent(context.Background())
	if err != nil {
		t.Fatalf("MemoryUsedPercent() returned error: %v", err)
	}
	if mem != 50.0 {
		t.Errorf("Expected memory percent 50.0, got %v", mem)
	}

	disk, err := host.DiskUsedPercent(context.Background())
	if err != nil {
		t.Fatalf("DiskUsedPercent() returned error: %v", err)
	}
	if disk != 90.0 {
		t.Errorf("Expected disk percent 90.0, got %v", disk)
	}
}

func TestHostStats_CollectError(t *testing.T) {
	inner := &fixedCollector{err: errors.New("proc unavailable")}
	host := NewHostStats(inner)

	if _, err := host.MemoryUsedPercent(context.Background()); err == nil {
		t.Error("Expected error from MemoryUsedPercent()")
	}
	if _, err := host.DiskUsedPercent(context.Background()); err == nil {
		t.Error("Expected error from DiskUsedPercent()")
	}
}

func TestCachedCollector_ReturnsCachedValue(t *testing.T) {
	inner := &fixedCollector{
		stats: Stats{
			Memory:    MemoryStats{Percent: 42.0},
			Disk:      DiskStats{Percent: 73.0},
			Timestamp: time.Now(),
		},
	}

	cached := NewCachedCollector(inner, time.Hour)
	cached.Start(context.Background())
	defer cached.Stop()

	for i := 0; i < 5; i++ {
		stats, err := cached.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() returned error: %v", err)
		}
		if stats.Memory.Percent != 42.0 {
			t.Errorf("Expected cached memory percent 42.0, got %v", stats.Memory.Percent)
		}
	}

	if inner.calls != 1 {
		t.Errorf("Expected 1 inner collection, got %d", inner.calls)
	}
}

func TestCachedCollector_PropagatesError(t *testing.T) {
	inner := &fixedCollector{err: errors.New("collect failed")}

	cached := NewCachedCollector(inner, time.Hour)
	cached.Start(context.Background())
	defer cached.Stop()

	if _, err := cached.Collect(context.Background()); err == nil {
		t.Error("Expected cached error from Collect()")
	}
}
