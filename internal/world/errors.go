package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxelcore/internal/vec"
)

// Ошибки хранилища и менеджера мира.
//
// ErrDuplicateVoxel и ErrChunkAlreadyExists - нарушение инварианта генерации,
// операция прерывается. ErrVoxelNotFound - обычное отсутствие, вызывающий
// сам решает, считать ли это ошибкой.
var (
	ErrDuplicateVoxel     = errors.New("voxel already placed")
	ErrChunkAlreadyExists = errors.New("chunk already exists")
	ErrVoxelNotFound      = errors.New("voxel not found")
	ErrOutOfBounds        = errors.New("position outside chunk bounds")
	ErrInvalidVoxel       = errors.New("invalid voxel type")
	ErrInvalidState       = errors.New("invalid chunk state transition")
	ErrChunkNotLoaded     = errors.New("chunk not loaded")
)

// DuplicateVoxelError уточняет ErrDuplicateVoxel позицией
type DuplicateVoxelError struct {
	Chunk vec.Vec2
	Pos   vec.RelPos
}

func (e *DuplicateVoxelError) Error() string {
	return fmt.Sprintf("chunk %v: %v at %v", e.Chunk, ErrDuplicateVoxel, e.Pos)
}

// Is позволяет сравнивать через errors.Is(err, ErrDuplicateVoxel)
func (e *DuplicateVoxelError) Is(target error) bool {
	return target == ErrDuplicateVoxel
}

// ChunkExistsError уточняет ErrChunkAlreadyExists координатами
type ChunkExistsError struct {
	Coords vec.Vec2
}

func (e *ChunkExistsError) Error() string {
	return fmt.Sprintf("%v: %v", ErrChunkAlreadyExists, e.Coords)
}

func (e *ChunkExistsError) Is(target error) bool {
	return target == ErrChunkAlreadyExists
}

// IsFatal сообщает, является ли ошибка нарушением инварианта генерации
func IsFatal(err error) bool {
	return errors.Is(err, ErrDuplicateVoxel) || errors.Is(err, ErrChunkAlreadyExists)
}
