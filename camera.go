package portal

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Default framing of the diorama.
const (
	DefaultFov  float32 = 45
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 100
)

var DefaultCameraPosition = mgl32.Vec3{4, 2, 4}

// Camera is a perspective camera looking at Target. The projection is cached
// and only rebuilt by UpdateProjectionMatrix.
type Camera struct {
	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	projection mgl32.Mat4
}

func NewCamera(aspect float32) *Camera {
	c := &Camera{
		Fov:      DefaultFov,
		Aspect:   aspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
		Position: DefaultCameraPosition,
		Up:       mgl32.Vec3{0, 1, 0},
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *Camera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// ProjectionMatrix uses OpenGL clip conventions (z in [-1, 1]).
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Axes returns the camera's right, up and forward unit vectors.
func (c *Camera) Axes() (right, up, forward mgl32.Vec3) {
	forward = c.Target.Sub(c.Position)
	if forward.Len() < 1e-8 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}
	}
	forward = forward.Normalize()
	right = forward.Cross(c.Up)
	if right.Len() < 1e-8 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return right, up, forward
}
