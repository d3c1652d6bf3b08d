package metrics

import (
	"context"
	"time"
)

// Collector samples host-level usage. The health metric source reads the
// memory and disk percentages through HostStats.
type Collector interface {
	Collect(ctx context.Context) (Stats, error)
}

type Stats struct {
	Memory    MemoryStats
	Disk      DiskStats
	Timestamp time.Time
}

type MemoryStats struct {
	Used      uint64
	Total     uint64
	Available uint64
	Percent   float64
}

type DiskStats struct {
	Used    uint64
	Total   uint64
	Free    uint64
	Percent float64
}

// HostStats exposes a Collector as per-metric accessors.
type HostStats struct {
	collector Collector
}

func NewHostStats(c Collector) *HostStats {
	return &HostStats{collector: c}
}

func (h *HostStats) MemoryUsedPercent(ctx context.Context) (float64, error) {
	stats, err := h.collector.Collect(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Memory.Percent, nil
}

func (h *HostStats) DiskUsedPercent(ctx context.Context) (float64, error) {
	stats, err := h.collector.Collect(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Disk.Percent, nil
}
