package portal

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const DefaultDampingFactor float32 = 0.05

const polarEpsilon = 1e-6

// OrbitControls moves a camera on a sphere around Target. Input accumulates
// deltas; Update applies them. With damping on, each Update applies only a
// fraction of the pending motion and decays the rest, so the camera glides
// after input stops. Update must run once per frame for that to hold.
type OrbitControls struct {
	Camera *Camera
	Target mgl32.Vec3

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	deltaTheta float32
	deltaPhi   float32
	panOffset  mgl32.Vec3
	scale      float32
}

func NewOrbitControls(camera *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:        camera,
		Target:        camera.Target,
		EnableDamping: true,
		DampingFactor: DefaultDampingFactor,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		MinDistance:   0,
		MaxDistance:   float32(math.Inf(1)),
		MinPolar:      0,
		MaxPolar:      math.Pi,
		scale:         1,
	}
}

// Rotate orbits by a pointer drag of (dx, dy) pixels in a viewport of the
// given height. A full-height drag is one full turn.
func (c *OrbitControls) Rotate(dx, dy float32, viewportHeight int) {
	h := float32(max(viewportHeight, 1))
	c.deltaTheta -= 2 * math.Pi * dx / h * c.RotateSpeed
	c.deltaPhi -= 2 * math.Pi * dy / h * c.RotateSpeed
}

// Pan slides the target in the camera plane so the point under the pointer
// follows it.
func (c *OrbitControls) Pan(dx, dy float32, viewportHeight int) {
	h := float32(max(viewportHeight, 1))
	offset := c.Camera.Position.Sub(c.Target)
	targetDistance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(c.Camera.Fov)/2)))

	right, up, _ := c.Camera.Axes()
	left := right.Mul(-2 * dx * targetDistance / h * c.PanSpeed)
	upward := up.Mul(2 * dy * targetDistance / h * c.PanSpeed)
	c.panOffset = c.panOffset.Add(left).Add(upward)
}

// Zoom dollies toward the target for positive steps (wheel up) and away for
// negative ones.
func (c *OrbitControls) Zoom(steps float32) {
	if steps == 0 {
		return
	}
	zoomScale := float32(math.Pow(0.95, float64(c.ZoomSpeed*abs32(steps))))
	if steps > 0 {
		c.scale *= zoomScale
	} else {
		c.scale /= zoomScale
	}
}

// Update moves the camera and reports whether it changed.
func (c *OrbitControls) Update() bool {
	offset := c.Camera.Position.Sub(c.Target)
	radius := offset.Len()
	theta := float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	phi := float32(0)
	if radius > 0 {
		phi = float32(math.Acos(float64(mgl32.Clamp(offset.Y()/radius, -1, 1))))
	}

	factor := float32(1)
	if c.EnableDamping {
		factor = c.DampingFactor
	}
	theta += c.deltaTheta * factor
	phi += c.deltaPhi * factor
	phi = mgl32.Clamp(phi, c.MinPolar, c.MaxPolar)
	phi = mgl32.Clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	radius = mgl32.Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)
	c.Target = c.Target.Add(c.panOffset.Mul(factor))

	sinPhi := float32(math.Sin(float64(phi)))
	offset = mgl32.Vec3{
		radius * sinPhi * float32(math.Sin(float64(theta))),
		radius * float32(math.Cos(float64(phi))),
		radius * sinPhi * float32(math.Cos(float64(theta))),
	}
	prev := c.Camera.Position
	c.Camera.Position = c.Target.Add(offset)
	c.Camera.Target = c.Target

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
		c.panOffset = mgl32.Vec3{}
	}
	c.scale = 1

	return prev.Sub(c.Camera.Position).Len() > polarEpsilon
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
