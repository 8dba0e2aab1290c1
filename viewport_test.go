package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPixelRatio(t *testing.T) {
	tests := []struct {
		dpr  float32
		want float32
	}{
		{1, 1},
		{1.5, 1.5},
		{2, 2},
		{3, 2},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPixelRatio(tt.dpr), "dpr %v", tt.dpr)
	}
}

func TestResize_UpdatesEveryConsumer(t *testing.T) {
	vp := NewViewport(800, 600, 1)
	camera := NewCamera(vp.Aspect())
	fake := &fakeRenderer{}
	fireflies := NewFireflyMaterial(1, 30)

	Resize(vp, 1920, 1080, 3, camera, fake, fireflies)

	assert.Equal(t, 1920, vp.Width)
	assert.Equal(t, 1080, vp.Height)
	assert.Equal(t, float32(2), vp.PixelRatio)

	assert.InDelta(t, 1920.0/1080.0, camera.Aspect, 1e-6)
	expected := NewCamera(1920.0 / 1080.0).ProjectionMatrix()
	assert.True(t, camera.ProjectionMatrix().ApproxEqual(expected))

	assert.Equal(t, 1920, fake.width)
	assert.Equal(t, 1080, fake.height)
	assert.Equal(t, float32(2), fake.pixelRatio)

	// the firefly sprite scale follows the new density
	assert.Equal(t, float32(2), fireflies.Uniform(UniformPixelRatio).Float())
	assert.Equal(t, float32(30), fireflies.Uniform(UniformSize).Float())
}

func TestResize_LowDensity(t *testing.T) {
	vp := NewViewport(800, 600, 2)
	camera := NewCamera(vp.Aspect())
	fake := &fakeRenderer{}

	Resize(vp, 400, 400, 1, camera, fake, nil)

	assert.Equal(t, float32(1), vp.PixelRatio)
	assert.Equal(t, float32(1), camera.Aspect)
	assert.Equal(t, float32(1), fake.pixelRatio)
}

func TestViewport_FramebufferSize(t *testing.T) {
	vp := NewViewport(801, 600, 1.5)
	w, h := vp.FramebufferSize()
	assert.Equal(t, uint32(1202), w)
	assert.Equal(t, uint32(900), h)

	zero := &Viewport{PixelRatio: 1}
	w, h = zero.FramebufferSize()
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
	assert.Equal(t, float32(1), zero.Aspect())
}

func TestNewMaterials_ClampsPixelRatio(t *testing.T) {
	materials, err := NewMaterials(DefaultSettings(), nil, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(2), materials.Fireflies.Uniform(UniformPixelRatio).Float())
}
