package portal

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbitInputSystem_LeftDragOrbits(t *testing.T) {
	controls, camera := newTestControls(false)
	target := controls.Target
	input := &Input{MouseDeltaX: 150}
	input.Pressed[MouseButtonLeft] = true

	orbitInputSystem(input, controls, NewViewport(800, 600, 1))
	require.True(t, controls.Update())

	assert.True(t, camera.Position.ApproxEqualThreshold(mgl32.Vec3{-4, 2, 4}, 1e-4), "got %v", camera.Position)
	assert.Equal(t, target, controls.Target)
}

func TestOrbitInputSystem_RightDragMovesTarget(t *testing.T) {
	for _, button := range []int{MouseButtonRight, MouseButtonMiddle} {
		controls, camera := newTestControls(false)
		offset := camera.Position.Sub(controls.Target)
		input := &Input{MouseDeltaY: 100}
		input.Pressed[button] = true

		orbitInputSystem(input, controls, NewViewport(800, 600, 1))
		require.True(t, controls.Update())

		assert.Greater(t, controls.Target.Y(), float32(0), "button %d", button)
		assert.True(t, camera.Position.Sub(controls.Target).ApproxEqualThreshold(offset, 1e-4), "orbit offset is kept")
	}
}

func TestOrbitInputSystem_ScrollShrinksRadius(t *testing.T) {
	controls, camera := newTestControls(false)
	radius := camera.Position.Sub(controls.Target).Len()

	orbitInputSystem(&Input{ScrollY: 1}, controls, NewViewport(800, 600, 1))
	require.True(t, controls.Update())

	assert.InDelta(t, radius*0.95, camera.Position.Sub(controls.Target).Len(), 1e-4)
}

func TestOrbitInputSystem_HoverDoesNothing(t *testing.T) {
	controls, camera := newTestControls(false)
	before := camera.Position

	orbitInputSystem(&Input{MouseDeltaX: 40, MouseDeltaY: -25}, controls, NewViewport(800, 600, 1))

	controls.Update()
	assert.True(t, camera.Position.ApproxEqualThreshold(before, 1e-4), "got %v", camera.Position)
}
