package portal

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	overlayFontSize = 13
	overlayPadding  = 6
	// logical pixels between the panel and the right edge of the window
	overlayMargin = 15
)

var (
	overlayBackground = color.RGBA{R: 0x1f, G: 0x1f, B: 0x1f, A: 0xe6}
	overlayTitleBar   = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xf0}
	overlayHighlight  = color.RGBA{R: 0x2c, G: 0x5d, B: 0x87, A: 0xf0}
	overlayTrack      = color.RGBA{R: 0x42, G: 0x42, B: 0x42, A: 0xff}
	overlayFill       = color.RGBA{R: 0x2c, G: 0xc9, B: 0xff, A: 0xff}
	overlayText       = color.RGBA{R: 0xeb, G: 0xeb, B: 0xeb, A: 0xff}
)

// PanelOverlay rasterizes a Panel into an RGBA image: a title row and one
// row per control, the selected row highlighted. Color controls show a
// swatch, sliders a filled track.
type PanelOverlay struct {
	face      font.Face
	ascent    int
	rowHeight int

	img *image.RGBA
	key string
}

func NewPanelOverlay(size float64) (*PanelOverlay, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	metrics := face.Metrics()
	return &PanelOverlay{
		face:      face,
		ascent:    metrics.Ascent.Ceil(),
		rowHeight: metrics.Height.Ceil() + 2*overlayPadding,
	}, nil
}

// Render returns the panel image and whether it differs from the previous
// call. A hidden panel renders as nil.
func (o *PanelOverlay) Render(p *Panel) (*image.RGBA, bool) {
	if !p.Visible {
		changed := o.img != nil
		o.img, o.key = nil, ""
		return nil, changed
	}
	key := panelKey(p)
	if o.img != nil && key == o.key {
		return o.img, false
	}

	width := p.Width
	if width <= 0 {
		width = DefaultPanelWidth
	}
	controls := p.Controls()
	img := image.NewRGBA(image.Rect(0, 0, width, (len(controls)+1)*o.rowHeight))
	fill(img, img.Bounds(), overlayBackground)

	fill(img, o.rowRect(0, width), overlayTitleBar)
	o.text(img, p.Title, overlayPadding, 0)

	selected := p.Selected()
	for i, c := range controls {
		row := o.rowRect(i+1, width)
		if c == selected {
			fill(img, row, overlayHighlight)
		}
		o.text(img, c.Label, overlayPadding, row.Min.Y)
		o.drawValue(img, c, row)
	}

	o.img, o.key = img, key
	return img, true
}

// rowRect is row i of the panel; row 0 is the title.
func (o *PanelOverlay) rowRect(i, width int) image.Rectangle {
	return image.Rect(0, i*o.rowHeight, width, (i+1)*o.rowHeight)
}

func (o *PanelOverlay) drawValue(img *image.RGBA, c *Control, row image.Rectangle) {
	// right half of the row
	box := image.Rect(row.Dx()/2, row.Min.Y+overlayPadding/2, row.Max.X-overlayPadding, row.Max.Y-overlayPadding/2)
	value := c.Value()

	switch c.Kind {
	case ColorControl:
		if col, err := ParseColor(*c.color); err == nil {
			fill(img, box, color.RGBA{R: unitToByte(col.R), G: unitToByte(col.G), B: unitToByte(col.B), A: 0xff})
		}
	case SliderControl:
		fill(img, box, overlayTrack)
		if span := c.Max - c.Min; span > 0 {
			frac := min(max((*c.number-c.Min)/span, 0), 1)
			filled := box
			filled.Max.X = box.Min.X + int(frac*float32(box.Dx()))
			fill(img, filled, overlayFill)
		}
	}

	tw := font.MeasureString(o.face, value).Ceil()
	o.text(img, value, box.Min.X+(box.Dx()-tw)/2, row.Min.Y)
}

func (o *PanelOverlay) text(img *image.RGBA, s string, x, rowTop int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(overlayText),
		Face: o.face,
		Dot:  fixed.P(x, rowTop+overlayPadding+o.ascent),
	}
	d.DrawString(s)
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func panelKey(p *Panel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|", p.Title, p.Width)
	selected := p.Selected()
	for _, c := range p.Controls() {
		if c == selected {
			b.WriteByte('>')
		}
		fmt.Fprintf(&b, "%s=%s;", c.Label, c.Value())
	}
	return b.String()
}

// overlayRect places a w x h image (logical pixels) at the top right of the
// framebuffer, returning left, top, right, bottom in clip space.
func overlayRect(w, h int, fbw, fbh uint32, pixelRatio float32) [4]float32 {
	if fbw == 0 || fbh == 0 {
		return [4]float32{}
	}
	fw, fh := float32(fbw), float32(fbh)
	right := fw - overlayMargin*pixelRatio
	left := right - float32(w)*pixelRatio
	bottom := float32(h) * pixelRatio
	return [4]float32{
		left/fw*2 - 1,
		1,
		right/fw*2 - 1,
		1 - bottom/fh*2,
	}
}
