package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is n·p + D = 0 with a unit normal.
// Normals of frustum planes face into the view volume, so points with a
// negative signed distance are outside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// PlaneFromPointNormal builds the plane through point with the given normal.
// The normal does not need to be unit length.
func PlaneFromPointNormal(point, normal mgl32.Vec3) Plane {
	n := normalizeSafe(normal)
	return Plane{Normal: n, D: -n.Dot(point)}
}

func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// normalized rescales a raw Ax+By+Cz+D plane so its normal has unit length.
func normalized(v mgl32.Vec4) Plane {
	n := v.Vec3()
	length := n.Len()
	if length == 0 {
		return Plane{Normal: n, D: v[3]}
	}
	inv := 1.0 / length
	return Plane{Normal: n.Mul(inv), D: v[3] * inv}
}

func normalizeSafe(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return v
	}
	return v.Mul(1.0 / l)
}
