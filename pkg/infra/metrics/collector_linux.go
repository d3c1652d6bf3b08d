package metrics

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

type systemCollector struct{}

func NewCollector() Collector {
	return &systemCollector{}
}

func (c *systemCollector) Collect(ctx context.Context) (Stats, error) {
	var stats Stats

	mem, err := c.collectMemory()
	if err != nil {
		return Stats{}, err
	}
	stats.Memory = mem

	disk, err := c.collectDisk()
	if err != nil {
		return Stats{}, err
	}
	stats.Disk = disk

	stats.Timestamp = time.Now()

	return stats, nil
}

func (c *systemCollector) collectMemory() (MemoryStats, error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return MemoryStats{}, err
	}
	defer file.Close()

	var memTotal, memAvailable uint64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		value, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			continue
		}

		switch parts[0] {
		case "MemTotal:":
			memTotal = value * 1024
		case "MemAvailable:":
			memAvailable = value * 1024
		}
	}

	if memTotal == 0 {
		return MemoryStats{}, scanner.Err()
	}

	used := memTotal - memAvailable
	percent := float64(used) / float64(memTotal) * 100

	return MemoryStats{
		Used:      used,
		Total:     memTotal,
		Available: memAvailable,
		Percent:   percent,
	}, nil
}

func (c *systemCollector) collectDisk() (DiskStats, error) {
	var stat unix.Statfs_t
	wd, err := os.Getwd()
	if err != nil {
		return DiskStats{}, err
	}

	if err := unix.Statfs(wd, &stat); err != nil {
		return DiskStats{}, err
	}

	total := uint64(stat.Blocks) * uint64(stat.Bsize)
	free := uint64(stat.Bfree) * uint64(stat.Bsize)
	used := total - free
	var percent float64
	if total > 0 {
		percent = float64(used) / float64(total) * 100
	}

	return DiskStats{
		Used:    used,
		Total:   total,
		Free:    free,
		Percent: percent,
	}, nil
}
