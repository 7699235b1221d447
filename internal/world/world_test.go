package world

import (
	"context"
	"io"
	"testing"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, gen Generator) *WorldManager {
	t.Helper()
	wm := NewWorldManager(gen)
	wm.SetLogger(logging.NewWriterLogger("world", io.Discard, logging.ERROR))
	return wm
}

func TestWorldManager_Creation(t *testing.T) {
	wm := NewWorldManager(nil)

	assert.NotNil(t, wm, "WorldManager должен быть создан")
	assert.NotNil(t, wm.chunks, "Карта чанков должна быть инициализирована")
	assert.Equal(t, 0, wm.ChunkCount())

	flat, ok := wm.generator.(*FlatGenerator)
	require.True(t, ok, "по умолчанию используется плоский генератор")
	assert.Equal(t, FlatWorldThickness, flat.Thickness)
}

func TestWorldManager_AddChunk(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(2, block.Grass))
	r := newRecordingRenderer()
	wm.SetRenderer(r)

	coords := vec.Vec2{X: 0, Z: 0}
	require.NoError(t, wm.AddChunk(context.Background(), coords))

	chunk, ok := wm.Chunk(coords)
	require.True(t, ok)
	assert.Equal(t, StateLoaded, chunk.State())
	assert.Equal(t, 512, chunk.Len())
	assert.Len(t, r.added, 512)
	assert.Equal(t, 512, r.calls)
}

func TestWorldManager_DuplicateChunk(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(3, block.Stone))
	ctx := context.Background()
	coords := vec.Vec2{X: 4, Z: -2}

	require.NoError(t, wm.AddChunk(ctx, coords))
	first, _ := wm.Chunk(coords)
	before := first.Voxels().Positions()

	// второй генератор дал бы другое содержимое
	wm.generator = NewFlatGenerator(1, block.Sand)
	err := wm.AddChunk(ctx, coords)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChunkAlreadyExists)
	assert.True(t, IsFatal(err))

	var exists *ChunkExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, coords, exists.Coords)

	again, _ := wm.Chunk(coords)
	assert.Same(t, first, again, "первый чанк не должен заменяться")
	assert.Equal(t, before, again.Voxels().Positions())
	v, _ := again.Voxel(vec.RelPos{X: 0, Y: 2, Z: 0})
	assert.Equal(t, block.Stone, v.Type)
	assert.Equal(t, 1, wm.ChunkCount())
}

func TestWorldManager_GenerationFailureLeavesNoChunk(t *testing.T) {
	wm := newTestManager(t, doublePlacer{})
	err := wm.AddChunk(context.Background(), vec.Vec2{X: 1, Z: 1})
	assert.ErrorIs(t, err, ErrDuplicateVoxel)

	_, ok := wm.Chunk(vec.Vec2{X: 1, Z: 1})
	assert.False(t, ok, "частично заполненный чанк не должен попасть в мир")
}

func TestWorldManager_LoadArea(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(1, block.Grass))
	ctx := context.Background()

	require.NoError(t, wm.LoadArea(ctx, vec.Vec2{X: -2, Z: -2}, 4, 3))
	assert.Equal(t, 12, wm.ChunkCount())

	coords := wm.ChunkCoords()
	require.Len(t, coords, 12)
	assert.Equal(t, vec.Vec2{X: -2, Z: -2}, coords[0])
	assert.Equal(t, vec.Vec2{X: 1, Z: 0}, coords[len(coords)-1])

	// перекрывающаяся область упирается в существующий чанк
	err := wm.LoadArea(ctx, vec.Vec2{X: 1, Z: 0}, 2, 2)
	assert.ErrorIs(t, err, ErrChunkAlreadyExists)

	assert.ErrorIs(t, wm.LoadArea(ctx, vec.Vec2{}, -1, 2), ErrOutOfBounds)
}

func TestWorldManager_VoxelAtNegativeCoords(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(3, block.Dirt))
	ctx := context.Background()
	require.NoError(t, wm.LoadArea(ctx, vec.Vec2{X: -1, Z: -1}, 2, 2))

	v, ok := wm.VoxelAt(vec.Vec3{X: -1, Y: 0, Z: -1})
	require.True(t, ok)
	assert.Equal(t, block.Dirt, v.Type)

	_, ok = wm.VoxelAt(vec.Vec3{X: -1, Y: 3, Z: -1})
	assert.False(t, ok, "выше заполнения пусто")
	_, ok = wm.VoxelAt(vec.Vec3{X: 40, Y: 0, Z: 0})
	assert.False(t, ok, "чанк не загружен")
	_, ok = wm.VoxelAt(vec.Vec3{X: 0, Y: -5, Z: 0})
	assert.False(t, ok)

	// середина слоя y=1 внутри чанка закрыта
	exposed, ok := wm.IsExposedAt(vec.Vec3{X: -8, Y: 1, Z: -8})
	require.True(t, ok)
	assert.False(t, exposed)

	// грань чанка видима, даже если сосед загружен
	exposed, ok = wm.IsExposedAt(vec.Vec3{X: -1, Y: 1, Z: -8})
	require.True(t, ok)
	assert.True(t, exposed)

	_, ok = wm.IsExposedAt(vec.Vec3{X: -1, Y: 10, Z: -8})
	assert.False(t, ok)
}

func TestWorldManager_RefreshVisibility(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(2, block.Grass))
	ctx := context.Background()
	coords := vec.Vec2{X: 3, Z: 3}
	require.NoError(t, wm.AddChunk(ctx, coords))

	r := newRecordingRenderer()
	wm.SetRenderer(r)

	vis, err := wm.RefreshVisibility(ctx, coords)
	require.NoError(t, err)
	assert.Equal(t, 512, vis.Exposed())
	assert.Equal(t, 512, r.calls)
	assert.Empty(t, r.added, "пересчёт не создаёт новых представлений")

	_, err = wm.RefreshVisibility(ctx, vec.Vec2{X: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChunkNotLoaded)
	assert.False(t, IsFatal(err))
}

func TestWorldManager_Stats(t *testing.T) {
	wm := newTestManager(t, NewFlatGenerator(4, block.Stone))
	require.NoError(t, wm.LoadArea(context.Background(), vec.Vec2{}, 2, 1))

	s := wm.Stats()
	assert.Equal(t, 2, s.Chunks)
	assert.Equal(t, 2*16*16*4, s.Voxels)
	assert.Equal(t, 2*14*14*2, s.Enclosed)
	assert.Equal(t, s.Voxels-s.Enclosed, s.Exposed)
}

func TestWorldManager_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	wm := newTestManager(t, NewFlatGenerator(4, block.Stone))
	wm.SetMetrics(m)
	ctx := context.Background()

	require.NoError(t, wm.LoadArea(ctx, vec.Vec2{}, 1, 2))
	assert.Error(t, wm.AddChunk(ctx, vec.Vec2{}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.chunksLoaded))
	assert.Equal(t, float64(2*16*16*4), testutil.ToFloat64(m.voxelsPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("chunk_exists")))
	assert.Equal(t, float64(2*14*14*2), testutil.ToFloat64(m.enclosedVoxels))

	_, err := wm.RefreshVisibility(ctx, vec.Vec2{})
	require.NoError(t, err)
	// пересчёт без изменений не сдвигает gauge
	assert.Equal(t, float64(2*(16*16*4-14*14*2)), testutil.ToFloat64(m.exposedVoxels))

	families, err := reg.Gather()
	require.NoError(t, err)
	var passes uint64
	for _, mf := range families {
		if mf.GetName() == "voxel_world_visibility_pass_seconds" {
			passes = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(3), passes)

	_, err = wm.RefreshVisibility(ctx, vec.Vec2{X: 9})
	require.ErrorIs(t, err, ErrChunkNotLoaded)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("not_loaded")))
}
