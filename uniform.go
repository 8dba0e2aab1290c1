package portal

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("invalid color")

// Uniform names shared by the shader programs.
const (
	UniformTime       = "uTime"
	UniformColorStart = "uColorStart"
	UniformColorEnd   = "uColorEnd"
	UniformPixelRatio = "uPixelRatio"
	UniformSize       = "uSize"
)

// Color is an RGB triple in 0..1, stored as authored (no linearization).
type Color struct {
	R, G, B float32
}

func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return fromColorful(c), nil
}

// MustColor is ParseColor for compile-time constants.
func MustColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func fromColorful(c colorful.Color) Color {
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Set overwrites c in place from a hex string, leaving it untouched on error.
func (c *Color) Set(hex string) error {
	parsed, err := ParseColor(hex)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// RotateHue turns the color around the HSV hue circle by deg degrees.
func (c Color) RotateHue(deg float64) Color {
	h, s, v := c.colorful().Hsv()
	h = math.Mod(h+deg, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsv(h, s, v).Clamped())
}

// Uniform is a mutable value cell read by the renderer every frame.
type Uniform struct {
	Value any
}

func (u *Uniform) Float() float32 {
	v, _ := u.Value.(float32)
	return v
}

func (u *Uniform) Color() Color {
	v, _ := u.Value.(Color)
	return v
}

type Uniforms map[string]*Uniform

// Has reports whether the material declares a slot called name.
func (u Uniforms) Has(name string) bool {
	_, ok := u[name]
	return ok
}
