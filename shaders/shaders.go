package shaders

import (
	_ "embed"
)

//go:embed common.wgsl
var CommonWGSL string

//go:embed baked.wgsl
var BakedWGSL string

//go:embed basic.wgsl
var BasicWGSL string

//go:embed portal.wgsl
var PortalWGSL string

//go:embed fireflies.wgsl
var FirefliesWGSL string

//go:embed overlay.wgsl
var OverlayWGSL string

// Program is one WGSL module exposing vs_main and fs_main. The shared frame
// and object bindings are prepended by Source unless Standalone is set.
type Program struct {
	Name       string
	Body       string
	Standalone bool
}

func (p Program) Source() string {
	if p.Standalone {
		return p.Body
	}
	return CommonWGSL + "\n" + p.Body
}

var (
	Baked     = Program{Name: "baked", Body: BakedWGSL}
	Basic     = Program{Name: "basic", Body: BasicWGSL}
	Portal    = Program{Name: "portal", Body: PortalWGSL}
	Fireflies = Program{Name: "fireflies", Body: FirefliesWGSL}
	Overlay   = Program{Name: "overlay", Body: OverlayWGSL, Standalone: true}
)
