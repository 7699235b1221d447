package vec

import "fmt"

// Vec2 представляет горизонтальные координаты (X, Z).
// Используется как координата чанка: по вертикали мир на чанки не делится.
type Vec2 struct {
	X, Z int
}

// Origin возвращает мировую позицию угла чанка (y = 0)
func (v Vec2) Origin() Vec3 {
	return Vec3{X: v.X << chunkShift, Y: 0, Z: v.Z << chunkShift}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Z: v.Z + other.Z}
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Z)
}
