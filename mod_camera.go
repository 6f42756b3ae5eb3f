package storey

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point. Yaw and Pitch are in degrees; Y is up.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	FovY     float32

	Sensitivity float32
	ZoomStep    float32
}

func NewCamera() *Camera {
	return &Camera{
		Target:      mgl32.Vec3{4, 0, 0},
		Distance:    20,
		Yaw:         30,
		Pitch:       35,
		FovY:        60,
		Sensitivity: 0.2,
		ZoomStep:    1,
	}
}

// Forward points from the eye toward the target.
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(-math.Sin(yaw) * math.Cos(pitch)),
		float32(-math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) Eye() mgl32.Vec3 {
	return c.Target.Sub(c.Forward().Mul(c.Distance))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Ray returns the world ray under the pointer at (mx, my) in a window of
// width x height pixels.
func (c *Camera) Ray(mx, my float64, width, height int) (origin, dir mgl32.Vec3) {
	if width <= 0 || height <= 0 {
		return c.Eye(), c.Forward()
	}
	nx := 2*float32(mx)/float32(width) - 1
	ny := 1 - 2*float32(my)/float32(height)

	forward := c.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)

	aspect := float32(width) / float32(height)
	tanHalfFov := float32(math.Tan(float64(mgl32.DegToRad(c.FovY) / 2)))

	dir = forward.Add(right.Mul(nx * aspect * tanHalfFov)).Add(up.Mul(ny * tanHalfFov))
	return c.Eye(), dir.Normalize()
}

// CameraModule orbits with the right mouse button and zooms with the plain
// wheel. Shift+wheel belongs to the editor.
type CameraModule struct{}

func (CameraModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewCamera())
	app.UseSystem(
		System(cameraControlSystem).
			InStage(Update).
			RunAlways(),
	)
}

func cameraControlSystem(input *Input, cam *Camera) {
	if input.Pressed[MouseButtonRight] {
		cam.Yaw -= float32(input.MouseDeltaX) * cam.Sensitivity
		cam.Pitch += float32(input.MouseDeltaY) * cam.Sensitivity
		cam.Pitch = min(max(cam.Pitch, 5), 89)
	}
	if input.ScrollY != 0 && !input.Pressed[KeyShift] {
		cam.Distance = max(cam.Distance-float32(input.ScrollY)*cam.ZoomStep, 2)
	}
}
