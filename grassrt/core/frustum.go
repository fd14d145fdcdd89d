package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidCamera = errors.New("invalid camera")

// Plane indices inside Frustum.Planes.
const (
	FrustumNear = iota
	FrustumFar
	FrustumLeft
	FrustumRight
	FrustumTop
	FrustumBottom
)

// Frustum is the six-plane view volume of a camera. All normals point inward.
type Frustum struct {
	Planes [6]Plane
}

const basisEpsilon = 1e-3

// NewFrustum builds the view volume geometrically from the camera basis.
// The four side planes pass through the camera position and two adjacent
// corners of the far rectangle.
func NewFrustum(cam CameraState) (Frustum, error) {
	if err := cam.Validate(); err != nil {
		return Frustum{}, err
	}

	c := cam.Position
	forward := cam.Forward.Normalize()
	up := cam.Up.Normalize()
	right := cam.Right.Normalize()

	halfTan := float32(math.Tan(float64(cam.FovY) / 2))
	farHalfH := cam.Far * halfTan
	farHalfW := farHalfH * cam.Aspect

	farCenter := c.Add(forward.Mul(cam.Far))
	upOff := up.Mul(farHalfH)
	rightOff := right.Mul(farHalfW)

	ftl := farCenter.Add(upOff).Sub(rightOff)
	ftr := farCenter.Add(upOff).Add(rightOff)
	fbl := farCenter.Sub(upOff).Sub(rightOff)
	fbr := farCenter.Sub(upOff).Add(rightOff)

	var f Frustum
	f.Planes[FrustumNear] = PlaneFromPointNormal(c.Add(forward.Mul(cam.Near)), forward)
	f.Planes[FrustumFar] = PlaneFromPointNormal(farCenter, forward.Mul(-1))
	f.Planes[FrustumLeft] = sidePlane(c, ftl, fbl, farCenter)
	f.Planes[FrustumRight] = sidePlane(c, fbr, ftr, farCenter)
	f.Planes[FrustumTop] = sidePlane(c, ftr, ftl, farCenter)
	f.Planes[FrustumBottom] = sidePlane(c, fbl, fbr, farCenter)
	return f, nil
}

// sidePlane returns the plane through apex, a and b whose normal faces inside.
func sidePlane(apex, a, b, inside mgl32.Vec3) Plane {
	n := a.Sub(apex).Cross(b.Sub(apex)).Normalize()
	if n.Dot(inside.Sub(apex)) < 0 {
		n = n.Mul(-1)
	}
	return Plane{Normal: n, D: -n.Dot(apex)}
}

// FrustumFromMatrix extracts the planes from a GL-style view-projection
// matrix (clip depth -1..1).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[FrustumLeft] = normalized(r3.Add(r0))
	f.Planes[FrustumRight] = normalized(r3.Sub(r0))
	f.Planes[FrustumBottom] = normalized(r3.Add(r1))
	f.Planes[FrustumTop] = normalized(r3.Sub(r1))
	f.Planes[FrustumNear] = normalized(r3.Add(r2))
	f.Planes[FrustumFar] = normalized(r3.Sub(r2))
	return f
}

// AABBTest reports whether the box may be visible. For each plane only the
// corner furthest along the normal is tested; if even that corner is behind
// the plane the whole box is outside. Boxes straddling an edge of the volume
// can pass even when no part is visible.
func (f *Frustum) AABBTest(box *AABB) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		n := p.Normal
		r := box.Extents[0]*mgl32.Abs(n[0]) + box.Extents[1]*mgl32.Abs(n[1]) + box.Extents[2]*mgl32.Abs(n[2])
		if n.Dot(box.Center)+p.D+r < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint is the exact point-in-volume test.
func (f *Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(pt) < 0 {
			return false
		}
	}
	return true
}

// Validate checks the projection parameters and that the basis is
// orthonormal and right-handed (right = forward x up).
func (c CameraState) Validate() error {
	if !(c.Near > 0) || !(c.Far > c.Near) {
		return fmt.Errorf("near %g / far %g: need 0 < near < far: %w", c.Near, c.Far, ErrInvalidCamera)
	}
	if !(c.FovY > 0) || !(c.FovY < math.Pi) {
		return fmt.Errorf("fov %g outside (0, pi): %w", c.FovY, ErrInvalidCamera)
	}
	if !(c.Aspect > 0) {
		return fmt.Errorf("aspect %g must be positive: %w", c.Aspect, ErrInvalidCamera)
	}
	for _, v := range [3]mgl32.Vec3{c.Forward, c.Up, c.Right} {
		l := v.Len()
		if !(l > 1e-6) || math.IsInf(float64(l), 0) {
			return fmt.Errorf("degenerate basis vector %v: %w", v, ErrInvalidCamera)
		}
	}
	f, u, r := c.Forward.Normalize(), c.Up.Normalize(), c.Right.Normalize()
	if mgl32.Abs(f.Dot(u)) > basisEpsilon || mgl32.Abs(f.Dot(r)) > basisEpsilon || mgl32.Abs(u.Dot(r)) > basisEpsilon {
		return fmt.Errorf("basis is not orthogonal: %w", ErrInvalidCamera)
	}
	if f.Cross(u).Dot(r) <= 0 {
		return fmt.Errorf("basis is not right-handed: %w", ErrInvalidCamera)
	}
	return nil
}
