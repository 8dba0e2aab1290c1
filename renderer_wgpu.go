package portal

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/portal/shaders"
)

// clipCorrection maps OpenGL clip depth [-w, w] onto WebGPU's [0, w].
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

type meshVertex struct {
	Position [3]float32 `portal:"layout" format:"float3" location:"0"`
	UV       [2]float32 `portal:"layout" format:"float2" location:"1"`
}

type fireflyInstance struct {
	Position [3]float32 `portal:"layout" format:"float3" location:"0"`
	Scale    float32    `portal:"layout" format:"float1" location:"1"`
}

// vertices per point sprite
const spriteVertices = 6

type gpuMesh struct {
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
}

type gpuPoints struct {
	instanceBuf *wgpu.Buffer
	count       uint32
}

type gpuObject struct {
	uniformBuf *wgpu.Buffer
	group      *wgpu.BindGroup
}

type gpuMaterial struct {
	pipeline   *wgpu.RenderPipeline
	uniformBuf *wgpu.Buffer
	group      *wgpu.BindGroup
}

// WgpuRenderer draws the scene graph with one pipeline per material. GPU
// resources are created on first use and keyed by the scene objects they
// mirror, so later frames only rewrite uniforms.
type WgpuRenderer struct {
	gpu *GpuState

	width      int
	height     int
	pixelRatio float32
	clear      Color
	dirty      bool

	depthTex  *wgpu.Texture
	depthView *wgpu.TextureView
	msaaTex   *wgpu.Texture
	msaaView  *wgpu.TextureView

	frameLayout   *wgpu.BindGroupLayout
	objectLayout  *wgpu.BindGroupLayout
	uniformLayout *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout

	frameBuf   *wgpu.Buffer
	frameGroup *wgpu.BindGroup
	sampler    *wgpu.Sampler

	meshes    map[*Geometry]*gpuMesh
	points    map[*ParticleBuffer]*gpuPoints
	objects   map[*Node]*gpuObject
	materials map[Material]*gpuMaterial
	textures  map[*Texture]*wgpu.TextureView

	overlay      *gpuOverlay
	overlayImg   *image.RGBA
	overlayDirty bool
}

var _ Renderer = (*WgpuRenderer)(nil)

func NewWgpuRenderer(ws *WindowState, vp *Viewport) (*WgpuRenderer, error) {
	fbw, fbh := vp.FramebufferSize()
	gpu, err := createGpuState(ws, fbw, fbh)
	if err != nil {
		return nil, err
	}

	r := &WgpuRenderer{
		gpu:        gpu,
		width:      vp.Width,
		height:     vp.Height,
		pixelRatio: vp.PixelRatio,
		meshes:     map[*Geometry]*gpuMesh{},
		points:     map[*ParticleBuffer]*gpuPoints{},
		objects:    map[*Node]*gpuObject{},
		materials:  map[Material]*gpuMaterial{},
		textures:   map[*Texture]*wgpu.TextureView{},
	}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *WgpuRenderer) init() error {
	var err error
	device := r.gpu.device

	r.frameLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "FrameBGL",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)},
	})
	if err != nil {
		return err
	}
	r.objectLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "ObjectBGL",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(0, wgpu.ShaderStageVertex)},
	})
	if err != nil {
		return err
	}
	r.uniformLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "MaterialUniformBGL",
		Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(0, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)},
	})
	if err != nil {
		return err
	}
	r.textureLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "MaterialTextureBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	r.frameBuf, err = createBuffer("Frame Uniforms", make([]byte, 36*4), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, r.gpu)
	if err != nil {
		return err
	}
	r.frameGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame",
		Layout: r.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.frameBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}

	r.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Baked Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	return r.createTargets()
}

// createTargets allocates the multisampled color and depth targets at the
// current framebuffer size.
func (r *WgpuRenderer) createTargets() error {
	fbw, fbh := r.framebufferSize()
	var err error
	r.msaaTex, r.msaaView, err = createAttachment("MSAA Color", fbw, fbh, r.gpu.surfaceConfig.Format, r.gpu)
	if err != nil {
		return err
	}
	r.depthTex, r.depthView, err = createAttachment("Depth Texture", fbw, fbh, depthFormat, r.gpu)
	return err
}

func (r *WgpuRenderer) releaseTargets() {
	if r.msaaView != nil {
		r.msaaView.Release()
		r.msaaTex.Release()
		r.msaaView, r.msaaTex = nil, nil
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTex.Release()
		r.depthView, r.depthTex = nil, nil
	}
}

func (r *WgpuRenderer) SetSize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.dirty = true
}

func (r *WgpuRenderer) SetPixelRatio(ratio float32) {
	if ratio == r.pixelRatio {
		return
	}
	r.pixelRatio = ratio
	r.dirty = true
}

func (r *WgpuRenderer) SetClearColor(c Color) {
	r.clear = c
}

func (r *WgpuRenderer) framebufferSize() (uint32, uint32) {
	vp := Viewport{Width: r.width, Height: r.height, PixelRatio: r.pixelRatio}
	return vp.FramebufferSize()
}

func (r *WgpuRenderer) reconfigure() error {
	fbw, fbh := r.framebufferSize()
	r.gpu.configure(fbw, fbh)

	r.releaseTargets()
	if err := r.createTargets(); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

func (r *WgpuRenderer) SetOverlay(img *image.RGBA) {
	r.overlayImg = img
	r.overlayDirty = true
}

// Render submits one frame. Drawables are drawn opaque first, then
// transparent, each in tree order. The panel overlay goes on top.
func (r *WgpuRenderer) Render(scene *Scene, camera *Camera) error {
	if r.dirty {
		if err := r.reconfigure(); err != nil {
			return fmt.Errorf("reconfigure surface: %w", err)
		}
	}

	drawables := drawOrder(scene.Drawables())
	for _, node := range drawables {
		if err := r.prepare(node); err != nil {
			return fmt.Errorf("prepare %q: %w", node.Name, err)
		}
	}
	if err := r.prepareOverlay(); err != nil {
		return fmt.Errorf("prepare overlay: %w", err)
	}
	r.writeFrame(camera)

	surfaceTexture, err := r.gpu.surface.GetCurrentTexture()
	if err != nil {
		r.dirty = true
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			colorAttachment(r.msaaView, view, clearValue(r.clear, r.gpu.srgb)),
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	pass.SetBindGroup(0, r.frameGroup, nil)
	for _, node := range drawables {
		r.draw(pass, node)
	}
	r.drawOverlay(pass)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	r.gpu.queue.Submit(commandBuffer)
	r.gpu.surface.Present()
	return nil
}

func (r *WgpuRenderer) writeFrame(camera *Camera) {
	fbw, fbh := r.framebufferSize()
	data := frameUniforms(camera, fbw, fbh, r.pixelRatio, r.gpu.srgb)
	r.gpu.queue.WriteBuffer(r.frameBuf, 0, wgpu.ToBytes(data))
}

// frameUniforms is the Frame block: view, projection, then framebuffer
// width, height, pixel ratio and the sRGB target flag.
func frameUniforms(camera *Camera, fbw, fbh uint32, pixelRatio float32, srgb bool) []float32 {
	view := camera.ViewMatrix()
	proj := clipCorrection.Mul4(camera.ProjectionMatrix())
	target := float32(0)
	if srgb {
		target = 1
	}

	data := make([]float32, 0, 36)
	data = append(data, view[:]...)
	data = append(data, proj[:]...)
	data = append(data, float32(fbw), float32(fbh), pixelRatio, target)
	return data
}

// prepare creates any missing GPU resources for node and refreshes its
// per-frame uniforms.
func (r *WgpuRenderer) prepare(node *Node) error {
	obj, ok := r.objects[node]
	if !ok {
		var err error
		obj, err = r.createObject(node)
		if err != nil {
			return err
		}
		r.objects[node] = obj
	}
	model := node.WorldMatrix()
	r.gpu.queue.WriteBuffer(obj.uniformBuf, 0, wgpu.ToBytes(model[:]))

	if node.Geometry != nil {
		if _, ok := r.meshes[node.Geometry]; !ok {
			mesh, err := r.createMesh(node.Geometry)
			if err != nil {
				return err
			}
			r.meshes[node.Geometry] = mesh
		}
	}
	if node.Points != nil {
		if _, ok := r.points[node.Points]; !ok {
			pts, err := r.createPoints(node.Points)
			if err != nil {
				return err
			}
			r.points[node.Points] = pts
		}
	}

	mat, ok := r.materials[node.Material]
	if !ok {
		var err error
		mat, err = r.createMaterial(node.Material, node.Points != nil)
		if err != nil {
			return err
		}
		r.materials[node.Material] = mat
	}
	if mat.uniformBuf != nil {
		r.gpu.queue.WriteBuffer(mat.uniformBuf, 0, wgpu.ToBytes(materialUniformData(node.Material)))
	}
	return nil
}

func (r *WgpuRenderer) draw(pass *wgpu.RenderPassEncoder, node *Node) {
	mat := r.materials[node.Material]
	obj := r.objects[node]

	pass.SetPipeline(mat.pipeline)
	pass.SetBindGroup(1, obj.group, nil)
	pass.SetBindGroup(2, mat.group, nil)

	if node.Points != nil {
		pts := r.points[node.Points]
		if pts.count == 0 {
			return
		}
		pass.SetVertexBuffer(0, pts.instanceBuf, 0, wgpu.WholeSize)
		pass.Draw(spriteVertices, pts.count, 0, 0)
		return
	}

	mesh := r.meshes[node.Geometry]
	if mesh.indexCount == 0 {
		return
	}
	pass.SetVertexBuffer(0, mesh.vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(mesh.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
}

func (r *WgpuRenderer) createObject(node *Node) (*gpuObject, error) {
	buf, err := createBuffer(node.Name+" Object", make([]byte, 64), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, r.gpu)
	if err != nil {
		return nil, err
	}
	group, err := r.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  node.Name,
		Layout: r.objectLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return &gpuObject{uniformBuf: buf, group: group}, nil
}

func (r *WgpuRenderer) createMesh(geom *Geometry) (*gpuMesh, error) {
	vertices := make([]meshVertex, geom.VertexCount())
	for i, p := range geom.Positions {
		vertices[i].Position = p
		if i < len(geom.UVs) {
			vertices[i].UV = geom.UVs[i]
		}
	}
	indices := geom.Indices
	if len(indices) == 0 || len(vertices) == 0 {
		return &gpuMesh{}, nil
	}

	vertexBuf, err := createBuffer("Vertex Buffer", wgpu.ToBytes(vertices), wgpu.BufferUsageVertex, r.gpu)
	if err != nil {
		return nil, err
	}
	indexBuf, err := createBuffer("Index Buffer", wgpu.ToBytes(indices), wgpu.BufferUsageIndex, r.gpu)
	if err != nil {
		vertexBuf.Release()
		return nil, err
	}
	return &gpuMesh{vertexBuf: vertexBuf, indexBuf: indexBuf, indexCount: uint32(len(indices))}, nil
}

func (r *WgpuRenderer) createPoints(buf *ParticleBuffer) (*gpuPoints, error) {
	if buf.Count == 0 {
		return &gpuPoints{}, nil
	}
	instances := make([]fireflyInstance, buf.Count)
	for i := range instances {
		instances[i] = fireflyInstance{Position: buf.Position(i), Scale: buf.Scales[i]}
	}
	instanceBuf, err := createBuffer("Firefly Instances", wgpu.ToBytes(instances), wgpu.BufferUsageVertex, r.gpu)
	if err != nil {
		return nil, err
	}
	return &gpuPoints{instanceBuf: instanceBuf, count: uint32(buf.Count)}, nil
}

func (r *WgpuRenderer) createMaterial(m Material, points bool) (*gpuMaterial, error) {
	out := &gpuMaterial{}
	opts := pipelineOptions{depthWrite: true, cullMode: wgpu.CullModeBack}
	var program shaders.Program
	var group2 *wgpu.BindGroupLayout
	var entries []wgpu.BindGroupEntry

	switch mat := m.(type) {
	case *BakedMaterial:
		program = shaders.Baked
		opts.cullMode = cullMode(mat.Side)
		if mat.Map == nil {
			return nil, fmt.Errorf("baked material has no texture")
		}
		view, ok := r.textures[mat.Map]
		if !ok {
			var err error
			view, err = createTextureFromAsset(mat.Map, r.gpu)
			if err != nil {
				return nil, err
			}
			r.textures[mat.Map] = view
		}
		group2 = r.textureLayout
		entries = []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: r.sampler, Size: wgpu.WholeSize},
		}
	case *BasicMaterial:
		program = shaders.Basic
		opts.cullMode = cullMode(mat.Side)
	case *ShaderMaterial:
		program = mat.Program
		opts.cullMode = cullMode(mat.Side)
		opts.depthWrite = mat.DepthWrite
		if mat.Blending == AdditiveBlending {
			opts.blend = additiveBlend
		}
	default:
		return nil, fmt.Errorf("unsupported material %T", m)
	}

	if group2 == nil {
		data := materialUniformData(m)
		buf, err := createBuffer(program.Name+" Uniforms", wgpu.ToBytes(data), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, r.gpu)
		if err != nil {
			return nil, err
		}
		out.uniformBuf = buf
		group2 = r.uniformLayout
		entries = []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}}
	}

	group, err := r.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   program.Name,
		Layout:  group2,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	out.group = group

	buffers := []wgpu.VertexBufferLayout{createVertexBufferLayout(meshVertex{}, wgpu.VertexStepModeVertex)}
	if points {
		buffers = []wgpu.VertexBufferLayout{createVertexBufferLayout(fireflyInstance{}, wgpu.VertexStepModeInstance)}
	}
	out.pipeline, err = createRenderPipeline(
		program.Name,
		program.Source(),
		buffers,
		[]*wgpu.BindGroupLayout{r.frameLayout, r.objectLayout, group2},
		opts,
		r.gpu,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func cullMode(side Side) wgpu.CullMode {
	if side == DoubleSide {
		return wgpu.CullModeNone
	}
	return wgpu.CullModeBack
}

func (r *WgpuRenderer) Release() {
	for _, m := range r.materials {
		if m.pipeline != nil {
			m.pipeline.Release()
		}
		if m.group != nil {
			m.group.Release()
		}
		if m.uniformBuf != nil {
			m.uniformBuf.Release()
		}
	}
	for _, o := range r.objects {
		o.group.Release()
		o.uniformBuf.Release()
	}
	for _, m := range r.meshes {
		if m.vertexBuf != nil {
			m.vertexBuf.Release()
			m.indexBuf.Release()
		}
	}
	for _, p := range r.points {
		if p.instanceBuf != nil {
			p.instanceBuf.Release()
		}
	}
	for _, v := range r.textures {
		v.Release()
	}
	r.overlay.release()
	r.releaseTargets()
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.frameGroup != nil {
		r.frameGroup.Release()
	}
	if r.frameBuf != nil {
		r.frameBuf.Release()
	}
	for _, l := range []*wgpu.BindGroupLayout{r.textureLayout, r.uniformLayout, r.objectLayout, r.frameLayout} {
		if l != nil {
			l.Release()
		}
	}
	r.gpu.release()
}
