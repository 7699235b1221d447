package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world"
)

func TestWorldSpansExported(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	exp := tracetest.NewInMemoryExporter()
	ctx := context.Background()
	tp, err := InstallExporter(ctx, "voxel-test", exp)
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(ctx) }()

	// менеджер берёт tracer у глобального провайдера при создании
	wm := world.NewWorldManager(nil)
	wm.SetLogger(logging.NewWriterLogger("world", &bytes.Buffer{}, logging.ERROR))

	require.NoError(t, wm.AddChunk(ctx, vec.Vec2{X: 1, Z: -2}))
	require.Error(t, wm.AddChunk(ctx, vec.Vec2{X: 1, Z: -2}))

	// Shutdown очищает InMemoryExporter, поэтому спаны читаются после ForceFlush
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	ok, failed := spans[0], spans[1]
	assert.Equal(t, "world.AddChunk", ok.Name)
	assert.Equal(t, codes.Unset, ok.Status.Code)
	assert.Equal(t, codes.Error, failed.Status.Code)

	attrs := map[string]int64{}
	for _, kv := range ok.Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	assert.Equal(t, int64(1), attrs["chunk.x"])
	assert.Equal(t, int64(-2), attrs["chunk.z"])

	name, found := ok.Resource.Set().Value(semconv.ServiceNameKey)
	require.True(t, found)
	assert.Equal(t, "voxel-test", name.AsString())
}
