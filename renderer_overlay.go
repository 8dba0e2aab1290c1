package portal

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/portal/shaders"
)

// gpuOverlay draws the panel image as one screen-space quad after the scene.
type gpuOverlay struct {
	pipeline  *wgpu.RenderPipeline
	rectBuf   *wgpu.Buffer
	rectGroup *wgpu.BindGroup

	view     *wgpu.TextureView
	texGroup *wgpu.BindGroup
	width    int
	height   int
}

func (r *WgpuRenderer) createOverlay() (*gpuOverlay, error) {
	o := &gpuOverlay{}
	var err error
	o.rectBuf, err = createBuffer("Overlay Rect", make([]byte, 16), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, r.gpu)
	if err != nil {
		return nil, err
	}
	o.rectGroup, err = r.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Overlay Rect",
		Layout: r.objectLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: o.rectBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		o.release()
		return nil, err
	}
	o.pipeline, err = createRenderPipeline(
		shaders.Overlay.Name,
		shaders.Overlay.Source(),
		nil,
		[]*wgpu.BindGroupLayout{r.objectLayout, r.textureLayout},
		pipelineOptions{
			blend:        alphaBlend,
			cullMode:     wgpu.CullModeNone,
			depthCompare: wgpu.CompareFunctionAlways,
		},
		r.gpu,
	)
	if err != nil {
		o.release()
		return nil, err
	}
	return o, nil
}

// prepareOverlay uploads a changed panel image and places it for this frame.
func (r *WgpuRenderer) prepareOverlay() error {
	if r.overlayImg == nil {
		return nil
	}
	if r.overlay == nil {
		o, err := r.createOverlay()
		if err != nil {
			return err
		}
		r.overlay = o
	}
	o := r.overlay

	if r.overlayDirty {
		img := r.overlayImg
		space := LinearColorSpace
		if r.gpu.srgb {
			space = SRGBColorSpace
		}
		view, err := createTextureFromAsset(&Texture{
			Name:       "Panel Overlay",
			Width:      uint32(img.Rect.Dx()),
			Height:     uint32(img.Rect.Dy()),
			Texels:     img.Pix,
			ColorSpace: space,
		}, r.gpu)
		if err != nil {
			return err
		}
		group, err := r.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Overlay Texture",
			Layout: r.textureLayout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view, Size: wgpu.WholeSize},
				{Binding: 1, Sampler: r.sampler, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			view.Release()
			return err
		}
		o.releaseTexture()
		o.view, o.texGroup = view, group
		o.width, o.height = img.Rect.Dx(), img.Rect.Dy()
		r.overlayDirty = false
	}

	fbw, fbh := r.framebufferSize()
	rect := overlayRect(o.width, o.height, fbw, fbh, r.pixelRatio)
	r.gpu.queue.WriteBuffer(o.rectBuf, 0, wgpu.ToBytes(rect[:]))
	return nil
}

func (r *WgpuRenderer) drawOverlay(pass *wgpu.RenderPassEncoder) {
	o := r.overlay
	if r.overlayImg == nil || o == nil || o.texGroup == nil {
		return
	}
	pass.SetPipeline(o.pipeline)
	pass.SetBindGroup(0, o.rectGroup, nil)
	pass.SetBindGroup(1, o.texGroup, nil)
	pass.Draw(spriteVertices, 1, 0, 0)
}

func (o *gpuOverlay) releaseTexture() {
	if o.texGroup != nil {
		o.texGroup.Release()
		o.texGroup = nil
	}
	if o.view != nil {
		o.view.Release()
		o.view = nil
	}
}

func (o *gpuOverlay) release() {
	if o == nil {
		return
	}
	o.releaseTexture()
	if o.pipeline != nil {
		o.pipeline.Release()
	}
	if o.rectGroup != nil {
		o.rectGroup.Release()
	}
	if o.rectBuf != nil {
		o.rectBuf.Release()
	}
}
