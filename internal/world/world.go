package world

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/annel0/voxelcore/internal/world"

// WorldManager владеет чанками мира и проводит их через генерацию.
//
// AddChunk не реентерабелен по смыслу: генерация идёт под блокировкой записи,
// поэтому читатели видят либо полностью загруженный чанк, либо никакого.
type WorldManager struct {
	chunks    map[vec.Vec2]*Chunk // Загруженные чанки
	generator Generator           // Генератор содержимого
	renderer  Renderer            // Внешний слой отрисовки
	metrics   *Metrics            // Метрики (может быть nil)
	logger    *logging.Logger     // Логгер компонента world
	tracer    trace.Tracer
	mu        sync.RWMutex
}

// WorldStats - сводка по загруженному миру
type WorldStats struct {
	Chunks   int
	Voxels   int
	Exposed  int
	Enclosed int
}

// NewWorldManager создаёт пустой мир с указанным генератором
func NewWorldManager(generator Generator) *WorldManager {
	if generator == nil {
		generator = NewFlatGenerator(FlatWorldThickness, block.Grass)
	}
	return &WorldManager{
		chunks:    make(map[vec.Vec2]*Chunk),
		generator: generator,
		renderer:  NopRenderer{},
		logger:    logging.GetWorldLogger(),
		tracer:    otel.Tracer(tracerName),
	}
}

// SetRenderer устанавливает получателя событий отрисовки
func (wm *WorldManager) SetRenderer(r Renderer) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if r == nil {
		r = NopRenderer{}
	}
	wm.renderer = r
}

// SetMetrics подключает Prometheus-метрики
func (wm *WorldManager) SetMetrics(m *Metrics) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.metrics = m
}

// SetLogger заменяет логгер компонента
func (wm *WorldManager) SetLogger(l *logging.Logger) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.logger = l
}

// AddChunk генерирует и вставляет чанк.
// Занятые координаты - ErrChunkAlreadyExists, существующий чанк не трогается.
func (wm *WorldManager) AddChunk(ctx context.Context, coords vec.Vec2) error {
	ctx, span := wm.tracer.Start(ctx, "world.AddChunk", trace.WithAttributes(
		attribute.Int("chunk.x", coords.X),
		attribute.Int("chunk.z", coords.Z),
	))
	defer span.End()

	wm.mu.Lock()
	defer wm.mu.Unlock()

	err := wm.addChunkLocked(ctx, coords)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (wm *WorldManager) addChunkLocked(_ context.Context, coords vec.Vec2) error {
	if _, exists := wm.chunks[coords]; exists {
		err := errors.WithStack(&ChunkExistsError{Coords: coords})
		wm.metrics.failure(err)
		wm.logger.Error("Попытка добавить существующий чанк %v", coords)
		return err
	}

	chunk, err := generateChunk(coords, wm.generator, wm.renderer, wm.metrics.observePass)
	if err != nil {
		wm.metrics.failure(err)
		wm.logger.Error("Ошибка генерации чанка %v: %v", coords, err)
		return fmt.Errorf("generate chunk %v: %w", coords, err)
	}

	wm.chunks[coords] = chunk
	wm.metrics.chunkLoaded(chunk)
	wm.metrics.visibilityDelta(nil, chunk.Visibility())

	wm.logger.Debug("Чанк %v загружен: %d вокселей, видимых %d",
		coords, chunk.Len(), chunk.ExposedCount())
	return nil
}

// LoadArea загружает прямоугольник xWidth x zWidth чанков начиная с origin.
// Останавливается на первой ошибке; уже загруженные чанки остаются.
func (wm *WorldManager) LoadArea(ctx context.Context, origin vec.Vec2, xWidth, zWidth int) error {
	if xWidth < 0 || zWidth < 0 {
		return fmt.Errorf("area %dx%d: %w", xWidth, zWidth, ErrOutOfBounds)
	}

	ctx, span := wm.tracer.Start(ctx, "world.LoadArea", trace.WithAttributes(
		attribute.Int("area.x_width", xWidth),
		attribute.Int("area.z_width", zWidth),
	))
	defer span.End()

	start := time.Now()
	for x := 0; x < xWidth; x++ {
		for z := 0; z < zWidth; z++ {
			if err := wm.AddChunk(ctx, origin.Add(vec.Vec2{X: x, Z: z})); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
		}
	}

	wm.logger.Info("Загружено %d чанков (%dx%d от %v) за %v",
		xWidth*zWidth, xWidth, zWidth, origin, time.Since(start))
	return nil
}

// RefreshVisibility пересчитывает видимость загруженного чанка
// и сообщает результат рендереру
func (wm *WorldManager) RefreshVisibility(ctx context.Context, coords vec.Vec2) (*Visibility, error) {
	_, span := wm.tracer.Start(ctx, "world.RefreshVisibility", trace.WithAttributes(
		attribute.Int("chunk.x", coords.X),
		attribute.Int("chunk.z", coords.Z),
	))
	defer span.End()

	wm.mu.Lock()
	defer wm.mu.Unlock()

	chunk, ok := wm.chunks[coords]
	if !ok {
		err := fmt.Errorf("refresh %v: %w", coords, ErrChunkNotLoaded)
		wm.metrics.failure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	prev := chunk.Visibility()
	start := time.Now()
	vis, err := chunk.ComputeVisibility()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	wm.metrics.observePass(time.Since(start))
	wm.metrics.visibilityDelta(prev, vis)
	ReportVisibility(chunk, vis, wm.renderer)

	span.SetAttributes(attribute.Int("voxels.exposed", vis.Exposed()))
	return vis, nil
}

// Chunk возвращает загруженный чанк
func (wm *WorldManager) Chunk(coords vec.Vec2) (*Chunk, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	c, ok := wm.chunks[coords]
	return c, ok
}

// ChunkCount - количество загруженных чанков
func (wm *WorldManager) ChunkCount() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.chunks)
}

// ChunkCoords возвращает координаты загруженных чанков, отсортированные по X, затем Z
func (wm *WorldManager) ChunkCoords() []vec.Vec2 {
	wm.mu.RLock()
	out := make([]vec.Vec2, 0, len(wm.chunks))
	for c := range wm.chunks {
		out = append(out, c)
	}
	wm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// VoxelAt возвращает воксель по мировой позиции
func (wm *WorldManager) VoxelAt(w vec.Vec3) (Voxel, bool) {
	coords, rel, ok := vec.RelativeOf(w)
	if !ok {
		return Voxel{}, false
	}

	wm.mu.RLock()
	defer wm.mu.RUnlock()

	chunk, ok := wm.chunks[coords]
	if !ok {
		return Voxel{}, false
	}
	return chunk.Voxel(rel)
}

// IsExposedAt возвращает видимость вокселя по мировой позиции.
// ok == false, если вокселя нет или чанк не загружен.
func (wm *WorldManager) IsExposedAt(w vec.Vec3) (exposed bool, ok bool) {
	coords, rel, inHeight := vec.RelativeOf(w)
	if !inHeight {
		return false, false
	}

	wm.mu.RLock()
	defer wm.mu.RUnlock()

	chunk, loaded := wm.chunks[coords]
	if !loaded {
		return false, false
	}
	if _, has := chunk.Voxel(rel); !has {
		return false, false
	}
	return chunk.IsExposed(rel), true
}

// Stats возвращает сводку по всем загруженным чанкам
func (wm *WorldManager) Stats() WorldStats {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	s := WorldStats{Chunks: len(wm.chunks)}
	for _, c := range wm.chunks {
		s.Voxels += c.Len()
		if vis := c.Visibility(); vis != nil {
			s.Exposed += vis.Exposed()
			s.Enclosed += vis.Enclosed()
		}
	}
	return s
}
