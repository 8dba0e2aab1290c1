package portal

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_ProjectionIsCached(t *testing.T) {
	camera := NewCamera(2)
	before := camera.ProjectionMatrix()

	camera.Aspect = 1
	assert.Equal(t, before, camera.ProjectionMatrix(), "aspect alone does not rebuild")

	camera.UpdateProjectionMatrix()
	assert.NotEqual(t, before, camera.ProjectionMatrix())
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(
		mgl32.Perspective(mgl32.DegToRad(DefaultFov), 1, DefaultNear, DefaultFar)))
}

func TestCamera_ZeroAspect(t *testing.T) {
	camera := NewCamera(0)
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(NewCamera(1).ProjectionMatrix()))
}

func TestCamera_Axes(t *testing.T) {
	camera := NewCamera(1)
	camera.Position = mgl32.Vec3{0, 0, 5}

	right, up, forward := camera.Axes()
	assert.True(t, right.ApproxEqual(mgl32.Vec3{1, 0, 0}))
	assert.True(t, up.ApproxEqual(mgl32.Vec3{0, 1, 0}))
	assert.True(t, forward.ApproxEqual(mgl32.Vec3{0, 0, -1}))

	camera.Position = camera.Target
	right, _, _ = camera.Axes()
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, right)
}
