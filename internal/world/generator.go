package world

import (
	"fmt"
	"time"

	"github.com/annel0/voxelcore/internal/util"
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
)

// FlatWorldThickness - толщина плоского мира по умолчанию
const FlatWorldThickness = 1

// Пороги нормализованной высоты для выбора поверхности
const (
	ShoreMax      = 0.30 // Ниже - песчаный берег
	MountainStart = 0.75 // Выше - голый камень
	dirtDepth     = 3    // Слой земли под травой
)

// Generator заполняет чанк в состоянии Generating
type Generator interface {
	Generate(chunk *Chunk) error
}

// FlatGenerator заполняет слой y в [0, Thickness) одним типом
type FlatGenerator struct {
	Thickness int
	Type      block.Type
}

// NewFlatGenerator создаёт плоский генератор
func NewFlatGenerator(thickness int, t block.Type) *FlatGenerator {
	return &FlatGenerator{Thickness: thickness, Type: t}
}

// Generate заполняет чанк
func (g *FlatGenerator) Generate(chunk *Chunk) error {
	if g.Thickness < 0 || g.Thickness > vec.WorldHeight {
		return fmt.Errorf("flat thickness %d: %w", g.Thickness, ErrOutOfBounds)
	}
	v := NewVoxel(g.Type)

	for x := 0; x < vec.ChunkDim; x++ {
		for y := 0; y < g.Thickness; y++ {
			for z := 0; z < vec.ChunkDim; z++ {
				pos := vec.RelPos{X: uint8(x), Y: uint8(y), Z: uint8(z)}
				if err := chunk.Place(pos, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// NoiseGenerator строит колонны по карте высот из шума Перлина.
// Высота колонны лежит в [MinHeight, MaxHeight].
type NoiseGenerator struct {
	Seed       int64
	NoiseScale float64 // Масштаб шума (сглаженность ландшафта)
	MinHeight  int
	MaxHeight  int

	noise *util.Noise
}

// NewNoiseGenerator создаёт генератор с настройками по умолчанию
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		Seed:       seed,
		NoiseScale: 0.05,
		MinHeight:  1,
		MaxHeight:  48,
		noise:      util.NewNoise(seed),
	}
}

// HeightAt возвращает высоту колонны (количество вокселей) в мировых X, Z
func (g *NoiseGenerator) HeightAt(worldX, worldZ int) int {
	n := g.sample(worldX, worldZ)
	h := g.MinHeight + int(n*float64(g.MaxHeight-g.MinHeight))
	if h < 1 {
		h = 1
	}
	if h > vec.WorldHeight {
		h = vec.WorldHeight
	}
	return h
}

func (g *NoiseGenerator) sample(worldX, worldZ int) float64 {
	if g.noise == nil || g.noise.Seed() != g.Seed {
		g.noise = util.NewNoise(g.Seed)
	}
	return g.noise.At(float64(worldX)*g.NoiseScale, float64(worldZ)*g.NoiseScale)
}

// Generate заполняет чанк колоннами
func (g *NoiseGenerator) Generate(chunk *Chunk) error {
	if g.MinHeight < 0 || g.MaxHeight < g.MinHeight {
		return fmt.Errorf("noise heights [%d, %d]: %w", g.MinHeight, g.MaxHeight, ErrOutOfBounds)
	}
	origin := chunk.Coords.Origin()

	for x := 0; x < vec.ChunkDim; x++ {
		for z := 0; z < vec.ChunkDim; z++ {
			wx, wz := origin.X+x, origin.Z+z
			height := g.HeightAt(wx, wz)
			surface := surfaceFor(g.sample(wx, wz))

			for y := 0; y < height; y++ {
				pos := vec.RelPos{X: uint8(x), Y: uint8(y), Z: uint8(z)}
				if err := chunk.Place(pos, NewVoxel(columnType(y, height, surface))); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// surfaceFor выбирает верхний блок по нормализованной высоте
func surfaceFor(n float64) block.Type {
	switch {
	case n < ShoreMax:
		return block.Sand
	case n < MountainStart:
		return block.Grass
	default:
		return block.Stone
	}
}

// columnType возвращает тип вокселя на высоте y в колонне высотой height
func columnType(y, height int, surface block.Type) block.Type {
	switch {
	case y == 0:
		return block.Bedrock
	case y == height-1:
		return surface
	case surface == block.Grass && y >= height-1-dirtDepth:
		return block.Dirt
	default:
		return block.Stone
	}
}

// GenerateChunk проводит чанк через весь цикл:
// заполнение, регистрация вокселей, один проход видимости, Loaded.
func GenerateChunk(coords vec.Vec2, gen Generator, r Renderer) (*Chunk, error) {
	return generateChunk(coords, gen, r, nil)
}

// generateChunk - GenerateChunk с замером прохода видимости
func generateChunk(coords vec.Vec2, gen Generator, r Renderer, observe func(time.Duration)) (*Chunk, error) {
	if r == nil {
		r = NopRenderer{}
	}

	chunk := NewChunk(coords)
	if err := chunk.BeginGeneration(); err != nil {
		return nil, err
	}
	if err := gen.Generate(chunk); err != nil {
		return nil, err
	}

	RegisterVoxels(chunk, r)

	start := time.Now()
	vis, err := chunk.ComputeVisibility()
	if err != nil {
		return nil, err
	}
	if observe != nil {
		observe(time.Since(start))
	}
	ReportVisibility(chunk, vis, r)

	if err := chunk.MarkLoaded(); err != nil {
		return nil, err
	}
	return chunk, nil
}

// GenerateFlatChunk создаёт плоский чанк толщиной thickness из травы
func GenerateFlatChunk(coords vec.Vec2, thickness int, r Renderer) (*Chunk, error) {
	return GenerateChunk(coords, NewFlatGenerator(thickness, block.Grass), r)
}

// RefreshVisibility пересчитывает видимость чанка и сообщает результат рендереру
func RefreshVisibility(chunk *Chunk, r Renderer) (*Visibility, error) {
	vis, err := chunk.ComputeVisibility()
	if err != nil {
		return nil, err
	}
	if r != nil {
		ReportVisibility(chunk, vis, r)
	}
	return vis, nil
}
