package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned box stored as center and half-extents.
// Extents are never negative.
type AABB struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

func NewAABB(center, extents mgl32.Vec3) *AABB {
	return &AABB{
		Center:  center,
		Extents: mgl32.Vec3{mgl32.Abs(extents[0]), mgl32.Abs(extents[1]), mgl32.Abs(extents[2])},
	}
}

// AABBFromMinMax builds a box from two opposite corners in any order.
func AABBFromMinMax(a, b mgl32.Vec3) AABB {
	return AABB{
		Center:  a.Add(b).Mul(0.5),
		Extents: mgl32.Vec3{mgl32.Abs(b[0]-a[0]) * 0.5, mgl32.Abs(b[1]-a[1]) * 0.5, mgl32.Abs(b[2]-a[2]) * 0.5},
	}
}

func (b *AABB) Min() mgl32.Vec3 {
	return b.Center.Sub(b.Extents)
}

func (b *AABB) Max() mgl32.Vec3 {
	return b.Center.Add(b.Extents)
}

// ClosestPoint clamps p into the box on each axis independently.
func (b *AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	for i := 0; i < 3; i++ {
		d := b.Center[i] - p[i]
		if d > b.Extents[i] {
			p[i] = b.Center[i] - b.Extents[i]
		}
		if d < -b.Extents[i] {
			p[i] = b.Center[i] + b.Extents[i]
		}
	}
	return p
}

// Contains reports whether p lies inside the closed box.
func (b *AABB) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		d := b.Center[i] - p[i]
		if d > b.Extents[i] || d < -b.Extents[i] {
			return false
		}
	}
	return true
}

// Relocate moves the box without touching its extents.
func (b *AABB) Relocate(center mgl32.Vec3) {
	b.Center = center
}
