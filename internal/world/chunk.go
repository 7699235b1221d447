package world

import (
	"fmt"

	"github.com/annel0/voxelcore/internal/vec"
	"github.com/pkg/errors"
)

// ChunkState - этап жизненного цикла чанка.
// Переходы только вперёд: Unloaded -> Generating -> VisibilityComputed -> Loaded.
type ChunkState uint8

const (
	StateUnloaded ChunkState = iota
	StateGenerating
	StateVisibilityComputed
	StateLoaded
)

func (s ChunkState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateGenerating:
		return "generating"
	case StateVisibilityComputed:
		return "visibility_computed"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Chunk - вертикальная колонна ChunkDim x WorldHeight x ChunkDim.
// Чанк единолично владеет своим хранилищем вокселей.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	voxels     *VoxelStore
	visibility *Visibility
	state      ChunkState
}

// NewChunk создаёт пустой чанк в состоянии Unloaded
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords: coords,
		voxels: NewVoxelStore(),
		state:  StateUnloaded,
	}
}

// State возвращает текущее состояние
func (c *Chunk) State() ChunkState {
	return c.state
}

func (c *Chunk) transition(from, to ChunkState) error {
	if c.state != from {
		return fmt.Errorf("chunk %v: %s -> %s: %w", c.Coords, c.state, to, ErrInvalidState)
	}
	c.state = to
	return nil
}

// BeginGeneration переводит чанк из Unloaded в Generating
func (c *Chunk) BeginGeneration() error {
	return c.transition(StateUnloaded, StateGenerating)
}

// Place кладёт воксель во время генерации.
// Видимость при этом не пересчитывается: она считается одним проходом после заполнения.
// Повторное размещение - фатальная ошибка генератора.
func (c *Chunk) Place(pos vec.RelPos, v Voxel) error {
	if c.state != StateGenerating {
		return fmt.Errorf("chunk %v: place in state %s: %w", c.Coords, c.state, ErrInvalidState)
	}

	err := c.voxels.Place(pos, v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicateVoxel):
		return errors.WithStack(&DuplicateVoxelError{Chunk: c.Coords, Pos: pos})
	default:
		return fmt.Errorf("chunk %v: place %v at %v: %w", c.Coords, v, pos, err)
	}
}

// ComputeVisibility выполняет полный проход видимости.
// Из Generating переводит в VisibilityComputed; у готового чанка просто пересчитывает.
func (c *Chunk) ComputeVisibility() (*Visibility, error) {
	switch c.state {
	case StateGenerating:
		c.state = StateVisibilityComputed
	case StateVisibilityComputed, StateLoaded:
	default:
		return nil, fmt.Errorf("chunk %v: visibility in state %s: %w", c.Coords, c.state, ErrInvalidState)
	}

	c.visibility = ComputeVisibility(c.voxels)
	return c.visibility, nil
}

// MarkLoaded завершает жизненный цикл генерации
func (c *Chunk) MarkLoaded() error {
	return c.transition(StateVisibilityComputed, StateLoaded)
}

// Voxels возвращает хранилище чанка только для чтения.
// Изменять его в обход Place нельзя.
func (c *Chunk) Voxels() *VoxelStore {
	return c.voxels
}

// Voxel возвращает воксель по относительной позиции
func (c *Chunk) Voxel(pos vec.RelPos) (Voxel, bool) {
	return c.voxels.Get(pos)
}

// Len - количество вокселей в чанке
func (c *Chunk) Len() int {
	return c.voxels.Len()
}

// Visibility возвращает результат последнего прохода или nil
func (c *Chunk) Visibility() *Visibility {
	return c.visibility
}

// IsExposed возвращает результат последнего прохода видимости для позиции.
// До первого прохода всегда false.
func (c *Chunk) IsExposed(pos vec.RelPos) bool {
	if c.visibility == nil {
		return false
	}
	return c.visibility.IsExposed(pos)
}

// ExposedCount - количество видимых вокселей по последнему проходу
func (c *Chunk) ExposedCount() int {
	if c.visibility == nil {
		return 0
	}
	return c.visibility.Exposed()
}
