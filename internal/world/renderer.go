package world

import (
	"github.com/annel0/voxelcore/internal/vec"
	"github.com/annel0/voxelcore/internal/world/block"
)

// Renderer - внешний слой отрисовки. Ядро только сообщает ему,
// какие воксели нуждаются в представлении и нужно ли их показывать.
//
// Методы вызываются синхронно из генерации; обращаться из них
// обратно к WorldManager нельзя.
type Renderer interface {
	// AddVoxel запрашивает представление для размещённого вокселя
	AddVoxel(worldPos vec.Vec3, t block.Type)
	// SetVisible задаёт видимость представления по итогам прохода
	SetVisible(chunk vec.Vec2, rel vec.RelPos, exposed bool)
}

// NopRenderer ничего не делает
type NopRenderer struct{}

func (NopRenderer) AddVoxel(vec.Vec3, block.Type) {}
func (NopRenderer) SetVisible(vec.Vec2, vec.RelPos, bool) {}

// RegisterVoxels сообщает рендереру о каждом вокселе чанка
func RegisterVoxels(c *Chunk, r Renderer) {
	c.voxels.Each(func(pos vec.RelPos, v Voxel) bool {
		r.AddVoxel(vec.WorldOf(c.Coords, pos), v.Type)
		return true
	})
}

// ReportVisibility передаёт рендереру результат прохода для каждого вокселя
func ReportVisibility(c *Chunk, vis *Visibility, r Renderer) {
	c.voxels.Each(func(pos vec.RelPos, _ Voxel) bool {
		r.SetVisible(c.Coords, pos, vis.IsExposed(pos))
		return true
	})
}
