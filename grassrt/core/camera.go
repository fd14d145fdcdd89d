package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraState is everything culling needs from the camera rig.
// FovY is vertical and in radians.
type CameraState struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	FovY     float32
	Aspect   float32
	Near     float32
	Far      float32
}

// LookAt derives an orthonormal basis looking from eye at target.
// The result fails Validate when forward is parallel to worldUp.
func LookAt(eye, target, worldUp mgl32.Vec3, fovY, aspect, near, far float32) CameraState {
	forward := normalizeSafe(target.Sub(eye))
	right := normalizeSafe(forward.Cross(worldUp))
	up := right.Cross(forward)
	return CameraState{
		Position: eye,
		Forward:  forward,
		Up:       up,
		Right:    right,
		FovY:     fovY,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

func (c CameraState) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward), c.Up)
}

func (c CameraState) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

func (c CameraState) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}
