package portal

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type AssetId string

type ColorSpace int

const (
	LinearColorSpace ColorSpace = iota
	SRGBColorSpace
)

type TextureOptions struct {
	// FlipY stores the image bottom row first. glTF UVs expect it off.
	FlipY      bool
	ColorSpace ColorSpace
}

// Texture is decoded RGBA8 texel data ready for upload.
type Texture struct {
	Id         AssetId
	Name       string
	Width      uint32
	Height     uint32
	Texels     []uint8
	FlipY      bool
	ColorSpace ColorSpace
}

func (t *Texture) SRGB() bool {
	return t.ColorSpace == SRGBColorSpace
}

type AssetServer struct {
	textures map[AssetId]*Texture
}

type AssetServerModule struct{}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]*Texture),
	}
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

// LoadTexture decodes a JPEG, PNG or WebP file from disk.
func (server *AssetServer) LoadTexture(filename string, opts TextureOptions) (*Texture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer file.Close()

	return server.DecodeTexture(file, filepath.Base(filename), opts)
}

func (server *AssetServer) DecodeTexture(r io.Reader, name string, opts TextureOptions) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
		}
		return nil, fmt.Errorf("decode texture %s: %w", name, err)
	}

	bounds := img.Bounds()
	rgbaImg, ok := img.(*image.RGBA)
	if !ok || rgbaImg.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgbaImg = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgbaImg, rgbaImg.Bounds(), img, bounds.Min, draw.Src)
	}

	texels := rgbaImg.Pix
	if opts.FlipY {
		texels = flipRows(texels, bounds.Dx()*4, bounds.Dy())
	}

	id := makeAssetId()
	tex := &Texture{
		Id:         id,
		Name:       name,
		Width:      uint32(bounds.Dx()),
		Height:     uint32(bounds.Dy()),
		Texels:     texels,
		FlipY:      opts.FlipY,
		ColorSpace: opts.ColorSpace,
	}
	server.textures[id] = tex
	return tex, nil
}

// SolidTexture registers a 1x1 texture of color c.
func (server *AssetServer) SolidTexture(name string, c Color, space ColorSpace) *Texture {
	id := makeAssetId()
	tex := &Texture{
		Id:         id,
		Name:       name,
		Width:      1,
		Height:     1,
		Texels:     []uint8{unitToByte(c.R), unitToByte(c.G), unitToByte(c.B), 255},
		ColorSpace: space,
	}
	server.textures[id] = tex
	return tex
}

func unitToByte(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

func (server *AssetServer) Texture(id AssetId) (*Texture, bool) {
	tex, ok := server.textures[id]
	return tex, ok
}

func flipRows(pix []uint8, stride, rows int) []uint8 {
	flipped := make([]uint8, len(pix))
	for y := 0; y < rows; y++ {
		copy(flipped[y*stride:(y+1)*stride], pix[(rows-1-y)*stride:(rows-y)*stride])
	}
	return flipped
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
