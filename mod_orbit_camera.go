package pointmorph

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera circles a fixed target at a given distance. Yaw and Pitch are
// in degrees; Pitch is clamped short of the poles so the up vector stays
// valid.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	Fov  float32
	Near float32
	Far  float32

	Sensitivity float32
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32

	homeDistance float32
	homeYaw      float32
	homePitch    float32
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	yawRad := mgl32.DegToRad(c.Yaw)
	pitchRad := mgl32.DegToRad(c.Pitch)

	dir := mgl32.Vec3{
		math32.Sin(yawRad) * math32.Cos(pitchRad),
		math32.Sin(pitchRad),
		math32.Cos(yawRad) * math32.Cos(pitchRad),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// Reset returns the rig to the pose it was installed with.
func (c *OrbitCamera) Reset() {
	c.Distance = c.homeDistance
	c.Yaw = c.homeYaw
	c.Pitch = c.homePitch
}

type OrbitCameraModule struct {
	Distance float32
	Yaw      float32
	Pitch    float32
	Fov      float32
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	distance := m.Distance
	if distance <= 0 {
		distance = 4.0
	}
	fov := m.Fov
	if fov <= 0 {
		fov = 60.0
	}

	cam := &OrbitCamera{
		Distance:     distance,
		Yaw:          m.Yaw,
		Pitch:        m.Pitch,
		Fov:          fov,
		Near:         0.1,
		Far:          1000.0,
		Sensitivity:  0.3,
		ZoomSpeed:    0.25,
		MinDistance:  0.5,
		MaxDistance:  50.0,
		homeDistance: distance,
		homeYaw:      m.Yaw,
		homePitch:    m.Pitch,
	}

	cmd.AddResources(cam)
	app.UseSystem(
		System(orbitCameraSystem).
			InStage(Update),
	)
}

func orbitCameraSystem(cam *OrbitCamera, input *Input) {
	if input.Pressed[MouseButtonLeft] {
		cam.Yaw -= float32(input.MouseDeltaX) * cam.Sensitivity
		cam.Pitch += float32(input.MouseDeltaY) * cam.Sensitivity

		// Clamp pitch
		if cam.Pitch > 89.0 {
			cam.Pitch = 89.0
		}
		if cam.Pitch < -89.0 {
			cam.Pitch = -89.0
		}
	}

	if input.ScrollY != 0 {
		cam.Distance -= float32(input.ScrollY) * cam.ZoomSpeed * cam.Distance
		if cam.Distance < cam.MinDistance {
			cam.Distance = cam.MinDistance
		}
		if cam.Distance > cam.MaxDistance {
			cam.Distance = cam.MaxDistance
		}
	}

	if input.JustPressed[KeyR] {
		cam.Reset()
	}
}
