package world

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики генерации и видимости.
// Нулевой указатель допустим: все методы на nil ничего не делают.
type Metrics struct {
	chunksLoaded   prometheus.Counter
	voxelsPlaced   prometheus.Counter
	failures       *prometheus.CounterVec
	exposedVoxels  prometheus.Gauge
	enclosedVoxels prometheus.Gauge
	visibilityPass prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Для глобального регистра передайте prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "chunks_loaded_total",
			Help:      "Чанки, прошедшие генерацию и проход видимости.",
		}),
		voxelsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "voxels_placed_total",
			Help:      "Воксели, размещённые генераторами.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "generation_failures_total",
			Help:      "Прерванные загрузки чанков по причине.",
		}, []string{"reason"}),
		exposedVoxels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "exposed_voxels",
			Help:      "Видимые воксели во всех загруженных чанках.",
		}),
		enclosedVoxels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "enclosed_voxels",
			Help:      "Полностью закрытые воксели во всех загруженных чанках.",
		}),
		visibilityPass: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "visibility_pass_seconds",
			Help:      "Длительность полного прохода видимости по чанку.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.chunksLoaded, m.voxelsPlaced, m.failures,
			m.exposedVoxels, m.enclosedVoxels, m.visibilityPass)
	}
	return m
}

func (m *Metrics) chunkLoaded(c *Chunk) {
	if m == nil {
		return
	}
	m.chunksLoaded.Inc()
	m.voxelsPlaced.Add(float64(c.Len()))
}

func (m *Metrics) failure(err error) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(failureReason(err)).Inc()
}

// visibilityDelta сдвигает счётчики видимых/закрытых при пересчёте
func (m *Metrics) visibilityDelta(prev, next *Visibility) {
	if m == nil {
		return
	}
	if prev != nil {
		m.exposedVoxels.Sub(float64(prev.Exposed()))
		m.enclosedVoxels.Sub(float64(prev.Enclosed()))
	}
	if next != nil {
		m.exposedVoxels.Add(float64(next.Exposed()))
		m.enclosedVoxels.Add(float64(next.Enclosed()))
	}
}

func (m *Metrics) observePass(d time.Duration) {
	if m == nil {
		return
	}
	m.visibilityPass.Observe(d.Seconds())
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrChunkAlreadyExists):
		return "chunk_exists"
	case errors.Is(err, ErrDuplicateVoxel):
		return "duplicate_voxel"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrChunkNotLoaded):
		return "not_loaded"
	default:
		return "other"
	}
}
