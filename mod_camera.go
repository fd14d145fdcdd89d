package meadow

import (
	"math"

	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent is the camera the grass field is culled and drawn for.
// Angles are in degrees.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Fov      float32
	Aspect   float32
	Near     float32
	Far      float32
}

func DefaultCamera() CameraComponent {
	return CameraComponent{
		Position: mgl32.Vec3{0, 2, 0},
		LookAt:   mgl32.Vec3{0, 2, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		Fov:      60,
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      500,
	}
}

// State converts the component into the camera the culling code works with.
func (c *CameraComponent) State() core.CameraState {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return core.LookAt(c.Position, c.LookAt, up, mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

// CameraModule installs the shared camera. Zero fields take DefaultCamera
// values; a zero LookAt faces -Z.
type CameraModule struct {
	Camera CameraComponent
}

func (m CameraModule) Install(app *App, cmd *Commands) {
	cam := m.Camera
	def := DefaultCamera()
	if cam.Fov == 0 {
		cam.Fov = def.Fov
	}
	if cam.Aspect == 0 {
		cam.Aspect = def.Aspect
	}
	if cam.Near == 0 && cam.Far == 0 {
		cam.Near, cam.Far = def.Near, def.Far
	}
	if cam.Up.Len() == 0 {
		cam.Up = def.Up
	}
	if cam.LookAt.Len() == 0 || cam.LookAt.ApproxEqual(cam.Position) {
		cam.LookAt = cam.Position.Add(mgl32.Vec3{0, 0, -1})
	}
	cmd.AddResources(&cam)
}

// FlyingCameraModule steers the camera from Move and Look, which a host
// fills from its input each frame.
type FlyingCameraModule struct {
	Speed       float32
	Sensitivity float32
}

func (m FlyingCameraModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&FlyingCameraComponent{Speed: m.Speed, Sensitivity: m.Sensitivity})
	cmd.UseSystem(
		System(FlyingCameraControlSystem).
			InStage(PreUpdate),
	)
}

type FlyingCameraComponent struct {
	Speed       float32
	Sensitivity float32
	// Move is right/up/forward intent in [-1, 1].
	Move mgl32.Vec3
	// Look is the mouse delta for this frame.
	Look mgl32.Vec2
}

func FlyingCameraControlSystem(time *Time, cam *CameraComponent, fly *FlyingCameraComponent) {
	dt := float32(time.Dt.Seconds())
	if dt <= 0 {
		return
	}

	if fly.Sensitivity == 0 {
		fly.Sensitivity = 0.1
	}
	cam.Yaw += fly.Look[0] * fly.Sensitivity
	cam.Pitch -= fly.Look[1] * fly.Sensitivity
	cam.Pitch = mgl32.Clamp(cam.Pitch, -89, 89)

	forward := yawPitchForward(cam.Yaw, cam.Pitch)
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := mgl32.Vec3{0, 1, 0}

	if fly.Speed == 0 {
		fly.Speed = 5.0
	}
	moveDir := right.Mul(fly.Move[0]).
		Add(up.Mul(fly.Move[1])).
		Add(forward.Mul(fly.Move[2]))
	if moveDir.Len() > 0 {
		cam.Position = cam.Position.Add(moveDir.Normalize().Mul(fly.Speed * dt))
	}

	cam.LookAt = cam.Position.Add(forward)
	cam.Up = up
	fly.Look = mgl32.Vec2{}
}

// OrbitCameraModule circles the camera around Center, looking at it. Used by
// headless runs that need a moving view.
type OrbitCameraModule struct {
	Center mgl32.Vec3
	Radius float32
	Height float32
	// Speed is in radians per second.
	Speed float32
}

type OrbitCameraComponent struct {
	Center mgl32.Vec3
	Radius float32
	Height float32
	Speed  float32
	Angle  float32
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&OrbitCameraComponent{
		Center: m.Center,
		Radius: m.Radius,
		Height: m.Height,
		Speed:  m.Speed,
	})
	cmd.UseSystem(
		System(OrbitCameraSystem).
			InStage(PreUpdate),
	)
}

func OrbitCameraSystem(time *Time, cam *CameraComponent, orbit *OrbitCameraComponent) {
	orbit.Angle += orbit.Speed * float32(time.Dt.Seconds())
	s, c := math.Sincos(float64(orbit.Angle))
	cam.Position = orbit.Center.Add(mgl32.Vec3{
		float32(c) * orbit.Radius,
		orbit.Height,
		float32(s) * orbit.Radius,
	})
	cam.LookAt = orbit.Center
	cam.Up = mgl32.Vec3{0, 1, 0}
}

func yawPitchForward(yaw, pitch float32) mgl32.Vec3 {
	yawRad := float64(mgl32.DegToRad(yaw))
	pitchRad := float64(mgl32.DegToRad(pitch))
	return mgl32.Vec3{
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(-math.Cos(yawRad) * math.Cos(pitchRad)),
	}.Normalize()
}
