package portal

import (
	"github.com/gekko3d/portal/shaders"
)

type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

type MaterialKind int

const (
	MaterialBaked MaterialKind = iota
	MaterialBasic
	MaterialShader
)

// Material is anything a drawable node can be shaded with.
type Material interface {
	Kind() MaterialKind
}

// BakedMaterial samples a pre-lit texture and ignores scene lighting.
type BakedMaterial struct {
	Map  *Texture
	Side Side
}

func (*BakedMaterial) Kind() MaterialKind { return MaterialBaked }

// BasicMaterial draws a constant color.
type BasicMaterial struct {
	Color Color
	Side  Side
}

func (*BasicMaterial) Kind() MaterialKind { return MaterialBasic }

// ShaderMaterial pairs a WGSL program with its uniform cells and blend state.
type ShaderMaterial struct {
	Name        string
	Program     shaders.Program
	Uniforms    Uniforms
	Transparent bool
	DepthWrite  bool
	Blending    Blending
	Side        Side
}

func (*ShaderMaterial) Kind() MaterialKind { return MaterialShader }

// Uniform returns the named cell, or nil if the program has no such slot.
func (m *ShaderMaterial) Uniform(name string) *Uniform {
	return m.Uniforms[name]
}

func NewPortalMaterial(start, end Color) *ShaderMaterial {
	return &ShaderMaterial{
		Name:    "portal",
		Program: shaders.Portal,
		Uniforms: Uniforms{
			UniformTime:       {Value: float32(0)},
			UniformColorStart: {Value: start},
			UniformColorEnd:   {Value: end},
		},
		DepthWrite: true,
		Blending:   NormalBlending,
		Side:       FrontSide,
	}
}

// NewFireflyMaterial renders point sprites that add onto what is behind them.
func NewFireflyMaterial(pixelRatio, size float32) *ShaderMaterial {
	return &ShaderMaterial{
		Name:    "fireflies",
		Program: shaders.Fireflies,
		Uniforms: Uniforms{
			UniformTime:       {Value: float32(0)},
			UniformPixelRatio: {Value: pixelRatio},
			UniformSize:       {Value: size},
		},
		Transparent: true,
		DepthWrite:  false,
		Blending:    AdditiveBlending,
		Side:        DoubleSide,
	}
}

const poleLightColor = "#ffffe5"

// Materials is every material instance in the diorama. Nodes hold these
// pointers, so identity is what assembly and the render loop rely on.
type Materials struct {
	Baked     *BakedMaterial
	PoleLight *BasicMaterial
	Portal    *ShaderMaterial
	Fireflies *ShaderMaterial
}

// NewMaterials builds the material set from the panel's starting values.
func NewMaterials(settings *Settings, bakedMap *Texture, pixelRatio float32) (*Materials, error) {
	start, err := ParseColor(settings.PortalColorStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseColor(settings.PortalColorEnd)
	if err != nil {
		return nil, err
	}

	return &Materials{
		Baked:     &BakedMaterial{Map: bakedMap, Side: DoubleSide},
		PoleLight: &BasicMaterial{Color: MustColor(poleLightColor)},
		Portal:    NewPortalMaterial(start, end),
		Fireflies: NewFireflyMaterial(ClampPixelRatio(pixelRatio), settings.FireflySize),
	}, nil
}

// Animated lists the shader materials that declare a uTime slot.
func (m *Materials) Animated() []*ShaderMaterial {
	var animated []*ShaderMaterial
	for _, mat := range []*ShaderMaterial{m.Portal, m.Fireflies} {
		if mat != nil && mat.Uniforms.Has(UniformTime) {
			animated = append(animated, mat)
		}
	}
	return animated
}
