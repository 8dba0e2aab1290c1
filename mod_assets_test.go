package portal

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetServer_LoadTexture(t *testing.T) {
	path := writePNG(t, t.TempDir(), 3, 4)
	server := NewAssetServer()

	tex, err := server.LoadTexture(path, TextureOptions{ColorSpace: SRGBColorSpace})
	require.NoError(t, err)

	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(4), tex.Height)
	assert.Equal(t, "baked.png", tex.Name)
	assert.True(t, tex.SRGB())
	assert.False(t, tex.FlipY)
	require.Len(t, tex.Texels, 3*4*4)

	// top row first, unflipped
	assert.Equal(t, []uint8{0, 0, 7, 255}, tex.Texels[0:4])
	assert.Equal(t, []uint8{0, 20, 7, 255}, tex.Texels[8:12])
	assert.Equal(t, []uint8{30, 0, 7, 255}, tex.Texels[3*3*4:3*3*4+4])

	got, ok := server.Texture(tex.Id)
	require.True(t, ok)
	assert.Same(t, tex, got)
}

func TestAssetServer_FlipY(t *testing.T) {
	path := writePNG(t, t.TempDir(), 2, 3)
	tex, err := NewAssetServer().LoadTexture(path, TextureOptions{FlipY: true})
	require.NoError(t, err)

	assert.True(t, tex.FlipY)
	assert.False(t, tex.SRGB())
	assert.Equal(t, []uint8{20, 0, 7, 255}, tex.Texels[0:4], "bottom row comes first")
	assert.Equal(t, []uint8{0, 0, 7, 255}, tex.Texels[2*2*4:2*2*4+4])
}

func TestAssetServer_Errors(t *testing.T) {
	server := NewAssetServer()

	_, err := server.DecodeTexture(bytes.NewReader([]byte("definitely not pixels")), "x.bin", TextureOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, err = server.LoadTexture(filepath.Join(t.TempDir(), "missing.jpg"), TextureOptions{})
	assert.Error(t, err)

	_, ok := server.Texture("unknown")
	assert.False(t, ok)
}

func TestAssetServer_SolidTexture(t *testing.T) {
	server := NewAssetServer()

	white := server.SolidTexture("fallback", Color{R: 1, G: 1, B: 1}, SRGBColorSpace)
	assert.Equal(t, uint32(1), white.Width)
	assert.Equal(t, uint32(1), white.Height)
	assert.Equal(t, []uint8{255, 255, 255, 255}, white.Texels)
	assert.True(t, white.SRGB())

	half := server.SolidTexture("half", Color{R: 0.5, G: 2, B: -1}, LinearColorSpace)
	assert.Equal(t, []uint8{128, 255, 0, 255}, half.Texels)
	assert.NotEqual(t, white.Id, half.Id)

	got, ok := server.Texture(half.Id)
	require.True(t, ok)
	assert.Same(t, half, got)
}
