package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ChunkDim - размер чанка по X и Z в блоках
	ChunkDim = 16
	// WorldHeight - высота мира; чанк занимает её целиком
	WorldHeight = 256

	ChunkArea   = ChunkDim * ChunkDim
	ChunkVolume = ChunkArea * WorldHeight

	chunkShift = 4 // log2(ChunkDim)
	chunkMask  = ChunkDim - 1
)

// Сдвиг и маска дают деление с округлением вниз, поэтому
// (-1 >> 4) == -1, а не 0, как при делении с усечением.

// ChunkOf возвращает координаты чанка, которому принадлежит мировая позиция
func ChunkOf(w Vec3) Vec2 {
	return Vec2{X: w.X >> chunkShift, Z: w.Z >> chunkShift}
}

// BlockOfPoint округляет непрерывную точку вниз до позиции вокселя
func BlockOfPoint(p mgl64.Vec3) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X())),
		Y: int(math.Floor(p.Y())),
		Z: int(math.Floor(p.Z())),
	}
}

// ChunkOfPoint возвращает чанк для непрерывной точки мира
func ChunkOfPoint(p mgl64.Vec3) Vec2 {
	return ChunkOf(BlockOfPoint(p))
}

// InHeight проверяет, что высота попадает в вертикальный диапазон мира
func InHeight(y int) bool {
	return y >= 0 && y < WorldHeight
}

// RelativeOf разбивает мировую позицию на чанк и позицию внутри него.
// Высота не бывает относительной: rel.Y == w.Y.
// ok == false, если w.Y вне [0, WorldHeight) - такую позицию
// нельзя представить в RelPos.
func RelativeOf(w Vec3) (Vec2, RelPos, bool) {
	chunk := ChunkOf(w)
	if !InHeight(w.Y) {
		return chunk, RelPos{}, false
	}
	return chunk, RelPos{
		X: uint8(w.X & chunkMask),
		Y: uint8(w.Y),
		Z: uint8(w.Z & chunkMask),
	}, true
}

// RelativeOfPoint - RelativeOf для непрерывной точки
func RelativeOfPoint(p mgl64.Vec3) (Vec2, RelPos, bool) {
	return RelativeOf(BlockOfPoint(p))
}

// WorldOf - обратное преобразование к RelativeOf
func WorldOf(chunk Vec2, rel RelPos) Vec3 {
	return Vec3{
		X: chunk.X<<chunkShift + int(rel.X),
		Y: int(rel.Y),
		Z: chunk.Z<<chunkShift + int(rel.Z),
	}
}
