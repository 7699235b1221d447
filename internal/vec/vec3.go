package vec

import "fmt"

// Vec3 представляет абсолютную позицию вокселя в мире.
// Координаты не ограничены, Y может быть и отрицательным.
type Vec3 struct {
	X int
	Y int
	Z int
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
