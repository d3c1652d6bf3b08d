package metrics

import (
	"context"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// memoryStatusEx matches the MEMORYSTATUSEX Windows structure.
type memoryStatusEx struct {
	dwLength                uint32
	dwMemoryLoad            uint32
	ullTotalPhys            uint64
	ullAvailPhys            uint64
	ullTotalPageFile        uint64
	ullAvailPageFile        uint64
	ullTotalVirtual         uint64
	ullAvailVirtual         uint64
	ullAvailExtendedVirtual uint64
}

var (
	modkernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGlobalMemoryStatusEx = modkernel32.NewProc("GlobalMemoryStatusEx")
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
	var memStatus memoryStatusEx
	memStatus.dwLength = uint32(unsafe.Sizeof(memStatus))
	r1, _, err := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&memStatus)))
	if r1 == 0 {
		return MemoryStats{}, err
	}

	total := memStatus.ullTotalPhys
	available := memStatus.ullAvailPhys
	used := total - available
	var percent float64
	if total > 0 {
		percent = float64(used) / float64(total) * 100
	}

	return MemoryStats{
		Used:      used,
		Total:     total,
		Available: available,
		Percent:   percent,
	}, nil
}

func (c *systemCollector) collectDisk() (DiskStats, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return DiskStats{}, err
	}
	// Use the volume root of the current working directory (e.g., "C:\").
	volRoot := filepath.VolumeName(cwd) + `\`

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	wd, err := windows.UTF16PtrFromString(volRoot)
	if err != nil {
		return DiskStats{}, err
	}
	err = windows.GetDiskFreeSpaceEx(wd, &freeBytesAvailable, &totalBytes, &totalFreeBytes)
	if err != nil {
		return DiskStats{}, err
	}

	used := totalBytes - totalFreeBytes
	var percent float64
	if totalBytes > 0 {
		percent = float64(used) / float64(totalBytes) * 100
	}

	return DiskStats{
		Used:    used,
		Total:   totalBytes,
		Free:    totalFreeBytes,
		Percent: percent,
	}, nil
}
