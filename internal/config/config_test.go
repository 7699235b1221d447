package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxelcore/internal/world/block"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
world:
  chunks_x: 3
  chunks_z: 2
  origin_x: -1
  origin_z: 5
  thickness: 4
  generator: noise
  fill_type: Stone
  seed: 42
log:
  level: debug
metrics:
  addr: ":9100"
telemetry:
  enabled: true
  service_name: voxel-test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.World.GetChunksX())
	assert.Equal(t, 2, cfg.World.GetChunksZ())
	assert.Equal(t, -1, cfg.World.OriginX)
	assert.Equal(t, 5, cfg.World.OriginZ)
	assert.Equal(t, 4, cfg.World.GetThickness())
	assert.Equal(t, "noise", cfg.World.GetGenerator())
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Metrics.GetAddr())
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "voxel-test", cfg.Telemetry.GetServiceName())

	fill, err := cfg.World.FillBlock()
	require.NoError(t, err)
	assert.Equal(t, block.Stone, fill)
}

func TestDefaults(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")
	t.Setenv("VOXEL_CHUNKS_X", "")
	t.Setenv("VOXEL_CHUNKS_Z", "")
	t.Setenv("VOXEL_THICKNESS", "")
	t.Setenv("VOXEL_METRICS_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultChunksX, cfg.World.GetChunksX())
	assert.Equal(t, DefaultChunksZ, cfg.World.GetChunksZ())
	assert.Equal(t, DefaultThickness, cfg.World.GetThickness())
	assert.Equal(t, DefaultGenerator, cfg.World.GetGenerator())
	assert.Empty(t, cfg.Metrics.GetAddr())
	assert.Equal(t, DefaultService, cfg.Telemetry.GetServiceName())

	fill, err := cfg.World.FillBlock()
	require.NoError(t, err)
	assert.Equal(t, block.Grass, fill)
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("VOXEL_CHUNKS_X", "7")
	t.Setenv("VOXEL_CHUNKS_Z", "not-a-number")
	t.Setenv("VOXEL_THICKNESS", "3")
	t.Setenv("VOXEL_METRICS_ADDR", "127.0.0.1:9200")

	cfg := Default()
	assert.Equal(t, 7, cfg.World.GetChunksX())
	assert.Equal(t, DefaultChunksZ, cfg.World.GetChunksZ())
	assert.Equal(t, 3, cfg.World.GetThickness())
	assert.Equal(t, "127.0.0.1:9200", cfg.Metrics.GetAddr())

	// значение из файла приоритетнее env
	cfg.World.ChunksX = 2
	assert.Equal(t, 2, cfg.World.GetChunksX())
}

func TestLoadFromEnvPath(t *testing.T) {
	path := writeConfig(t, "world:\n  chunks_x: 9\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.World.GetChunksX())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "world:\n  chunkz: 3\n",
		"negative width":    "world:\n  chunks_x: -1\n",
		"thickness too big": "world:\n  thickness: 300\n",
		"bad generator":     "world:\n  generator: caves\n",
		"wrong type":        "telemetry:\n  enabled: maybe\n",
		"top level":         "server:\n  port: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerator, cfg.World.GetGenerator())
}

func TestUnknownFillType(t *testing.T) {
	w := WorldConfig{FillType: "lava"}
	_, err := w.FillBlock()
	assert.Error(t, err)
}
