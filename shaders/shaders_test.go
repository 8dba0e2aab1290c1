package shaders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramSource(t *testing.T) {
	for _, p := range []Program{Baked, Basic, Portal, Fireflies, Overlay} {
		src := p.Source()
		assert.Contains(t, src, "fn vs_main", p.Name)
		assert.Contains(t, src, "fn fs_main", p.Name)
	}

	assert.True(t, strings.HasPrefix(Portal.Source(), CommonWGSL))
	assert.Contains(t, Baked.Source(), "linear_to_target")
	assert.NotContains(t, Overlay.Source(), "struct Frame", "overlay binds its own groups")
	assert.Equal(t, OverlayWGSL, Overlay.Source())
}
