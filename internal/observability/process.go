package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessMetrics собирает сведения о текущем процессе
type ProcessMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// ProcessSnapshot - срез ресурсов процесса
type ProcessSnapshot struct {
	Uptime     time.Duration
	RSS        uint64 // 0, если ОС не отдала значение
	HeapAlloc  uint64
	Goroutines int
	CPUPercent float64
}

// NewProcessMetrics создает сборщик для текущего процесса
func NewProcessMetrics() (*ProcessMetrics, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process: %w", err)
	}
	return &ProcessMetrics{StartTime: time.Now(), proc: proc}, nil
}

// Snapshot возвращает текущие значения. Ошибки gopsutil не фатальны:
// соответствующие поля остаются нулевыми.
func (pm *ProcessMetrics) Snapshot() ProcessSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := ProcessSnapshot{
		Uptime:     time.Since(pm.StartTime),
		HeapAlloc:  m.HeapAlloc,
		Goroutines: runtime.NumGoroutine(),
	}
	if mem, err := pm.proc.MemoryInfo(); err == nil && mem != nil {
		s.RSS = mem.RSS
	}
	if cpu, err := pm.proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	return s
}

func (s ProcessSnapshot) String() string {
	rss := "n/a"
	if s.RSS > 0 {
		rss = humanize.Bytes(s.RSS)
	}
	return fmt.Sprintf("uptime=%s rss=%s heap=%s goroutines=%d cpu=%.1f%%",
		s.Uptime.Round(time.Millisecond), rss, humanize.Bytes(s.HeapAlloc), s.Goroutines, s.CPUPercent)
}
