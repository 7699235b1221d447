package world

import (
	"github.com/annel0/voxelcore/internal/vec"
)

// VoxelStore хранит воксели одного чанка в плотном массиве,
// индекс x + z*ChunkDim + y*ChunkDim². Пустая клетка - block.Air.
//
// Хранилище не потокобезопасно: им владеет один чанк.
type VoxelStore struct {
	cells [vec.ChunkVolume]Voxel
	count int
}

// NewVoxelStore создаёт пустое хранилище
func NewVoxelStore() *VoxelStore {
	return &VoxelStore{}
}

// Place кладёт воксель в свободную клетку.
// Занятая клетка - ErrDuplicateVoxel, клетка не изменяется.
func (s *VoxelStore) Place(pos vec.RelPos, v Voxel) error {
	if !pos.Valid() {
		return ErrOutOfBounds
	}
	if v.IsEmpty() {
		return ErrInvalidVoxel
	}

	i := pos.Index()
	if !s.cells[i].IsEmpty() {
		return ErrDuplicateVoxel
	}
	s.cells[i] = v
	s.count++
	return nil
}

// Get возвращает воксель в позиции, если он есть
func (s *VoxelStore) Get(pos vec.RelPos) (Voxel, bool) {
	if !pos.Valid() {
		return Voxel{}, false
	}
	v := s.cells[pos.Index()]
	return v, !v.IsEmpty()
}

// Contains проверяет, занята ли клетка
func (s *VoxelStore) Contains(pos vec.RelPos) bool {
	return pos.Valid() && !s.cells[pos.Index()].IsEmpty()
}

// Remove освобождает клетку и возвращает удалённый воксель
func (s *VoxelStore) Remove(pos vec.RelPos) (Voxel, error) {
	if !pos.Valid() {
		return Voxel{}, ErrOutOfBounds
	}

	i := pos.Index()
	v := s.cells[i]
	if v.IsEmpty() {
		return Voxel{}, ErrVoxelNotFound
	}
	s.cells[i] = Voxel{}
	s.count--
	return v, nil
}

// Len возвращает количество занятых клеток
func (s *VoxelStore) Len() int {
	return s.count
}

// Each обходит занятые клетки в порядке индекса.
// Если fn возвращает false, обход прекращается.
func (s *VoxelStore) Each(fn func(pos vec.RelPos, v Voxel) bool) {
	seen := 0
	for i := 0; i < vec.ChunkVolume && seen < s.count; i++ {
		v := s.cells[i]
		if v.IsEmpty() {
			continue
		}
		seen++
		if !fn(vec.RelPosFromIndex(i), v) {
			return
		}
	}
}

// Positions возвращает все занятые позиции в порядке индекса
func (s *VoxelStore) Positions() []vec.RelPos {
	out := make([]vec.RelPos, 0, s.count)
	s.Each(func(pos vec.RelPos, _ Voxel) bool {
		out = append(out, pos)
		return true
	})
	return out
}
