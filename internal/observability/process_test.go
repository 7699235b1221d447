package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSnapshot(t *testing.T) {
	pm, err := NewProcessMetrics()
	require.NoError(t, err)

	s := pm.Snapshot()
	assert.Greater(t, s.HeapAlloc, uint64(0))
	assert.GreaterOrEqual(t, s.Goroutines, 1)
	assert.GreaterOrEqual(t, s.Uptime, time.Duration(0))
	assert.Contains(t, s.String(), "goroutines=")
}

func TestSnapshotStringWithoutRSS(t *testing.T) {
	s := ProcessSnapshot{HeapAlloc: 2048, Goroutines: 3}
	assert.Equal(t, "uptime=0s rss=n/a heap=2.0 kB goroutines=3 cpu=0.0%", s.String())
}
