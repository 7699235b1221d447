package world

import (
	"github.com/annel0/voxelcore/internal/world/block"
)

// Voxel - единичный куб материала. Кроме типа состояния нет.
type Voxel struct {
	Type block.Type
}

// NewVoxel создаёт воксель указанного типа
func NewVoxel(t block.Type) Voxel {
	return Voxel{Type: t}
}

// IsEmpty возвращает true для нулевого (воздушного) вокселя
func (v Voxel) IsEmpty() bool {
	return v.Type.IsAir()
}

func (v Voxel) String() string {
	return v.Type.String()
}
