package world

import (
	"math/bits"

	"github.com/annel0/voxelcore/internal/vec"
)

// FullNeighborhood - число соседей вокселя (3³ - 1)
const FullNeighborhood = 26

// neighborOffsets - все сочетания {-1,0,1} по трём осям, кроме (0,0,0)
var neighborOffsets = func() [FullNeighborhood][3]int {
	var out [FullNeighborhood][3]int
	n := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out[n] = [3]int{dx, dy, dz}
				n++
			}
		}
	}
	return out
}()

// Neighbors возвращает занятых соседей позиции внутри того же чанка.
// Соседи за границей чанка отбрасываются: соседние чанки не учитываются.
func Neighbors(s *VoxelStore, pos vec.RelPos) []vec.RelPos {
	out := make([]vec.RelPos, 0, FullNeighborhood)
	for _, o := range neighborOffsets {
		n, ok := pos.Offset(o[0], o[1], o[2])
		if !ok {
			continue
		}
		if s.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// IsExposed возвращает true, если хотя бы один из 26 соседей пуст
// или лежит за границей чанка. Воксель на грани чанка виден всегда.
func IsExposed(s *VoxelStore, pos vec.RelPos) bool {
	for _, o := range neighborOffsets {
		n, ok := pos.Offset(o[0], o[1], o[2])
		if !ok || !s.Contains(n) {
			return true
		}
	}
	return false
}

// Visibility - результат прохода видимости по всему хранилищу
type Visibility struct {
	bits    [vec.ChunkVolume / 64]uint64
	total   int
	exposed int
}

// ComputeVisibility классифицирует каждый воксель хранилища.
// Для неизменного хранилища результат не зависит от порядка обхода.
func ComputeVisibility(s *VoxelStore) *Visibility {
	v := &Visibility{}
	s.Each(func(pos vec.RelPos, _ Voxel) bool {
		v.total++
		if IsExposed(s, pos) {
			i := pos.Index()
			v.bits[i>>6] |= 1 << uint(i&63)
			v.exposed++
		}
		return true
	})
	return v
}

// IsExposed возвращает сохранённый результат для позиции.
// Для пустой клетки всегда false.
func (v *Visibility) IsExposed(pos vec.RelPos) bool {
	if !pos.Valid() {
		return false
	}
	i := pos.Index()
	return v.bits[i>>6]&(1<<uint(i&63)) != 0
}

// Total - количество классифицированных вокселей
func (v *Visibility) Total() int { return v.total }

// Exposed - количество видимых вокселей
func (v *Visibility) Exposed() int { return v.exposed }

// Enclosed - количество полностью закрытых вокселей
func (v *Visibility) Enclosed() int { return v.total - v.exposed }

// EachExposed обходит видимые позиции в порядке индекса
func (v *Visibility) EachExposed(fn func(pos vec.RelPos)) {
	for w, word := range v.bits {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			fn(vec.RelPosFromIndex(w<<6 + b))
			word &= word - 1
		}
	}
}
