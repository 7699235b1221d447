package vec

import "fmt"

// RelPos - позиция вокселя внутри чанка.
// X и Z лежат в [0, ChunkDim), Y в [0, WorldHeight).
type RelPos struct {
	X, Y, Z uint8
}

// Valid проверяет, что позиция лежит внутри чанка
func (p RelPos) Valid() bool {
	return int(p.X) < ChunkDim && int(p.Z) < ChunkDim && int(p.Y) < WorldHeight
}

// Index возвращает плотный индекс x + z*ChunkDim + y*ChunkDim².
// Для невалидной позиции результат не определён.
func (p RelPos) Index() int {
	return int(p.X) + int(p.Z)*ChunkDim + int(p.Y)*ChunkArea
}

// RelPosFromIndex - обратное к Index
func RelPosFromIndex(i int) RelPos {
	return RelPos{
		X: uint8(i % ChunkDim),
		Z: uint8((i / ChunkDim) % ChunkDim),
		Y: uint8(i / ChunkArea),
	}
}

// Offset сдвигает позицию на (dx, dy, dz).
// ok == false, если результат выходит за пределы чанка (без заворачивания).
func (p RelPos) Offset(dx, dy, dz int) (RelPos, bool) {
	x := int(p.X) + dx
	y := int(p.Y) + dy
	z := int(p.Z) + dz
	if x < 0 || x >= ChunkDim || z < 0 || z >= ChunkDim || y < 0 || y >= WorldHeight {
		return RelPos{}, false
	}
	return RelPos{X: uint8(x), Y: uint8(y), Z: uint8(z)}, true
}

func (p RelPos) String() string {
	return fmt.Sprintf("rel(%d,%d,%d)", p.X, p.Y, p.Z)
}
