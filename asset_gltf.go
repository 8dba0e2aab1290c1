package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var ErrCompressedMesh = errors.New("compressed mesh without decoder")

// DracoExtension marks primitives whose attributes live in a compressed buffer view.
const DracoExtension = "KHR_draco_mesh_compression"

// DefaultDecoderPath is where decoder assets are resolved from, relative to the asset root.
const DefaultDecoderPath = "draco/"

// CompressedPrimitive is handed to a MeshDecoder for every compressed primitive.
type CompressedPrimitive struct {
	Doc         *gltf.Document
	Primitive   *gltf.Primitive
	Extension   json.RawMessage
	DecoderPath string
}

// MeshDecoder is the decompression side-channel of the loader.
type MeshDecoder interface {
	Decode(p CompressedPrimitive) (*Geometry, error)
}

type LoadResult struct {
	Root *Node
	Err  error
}

// GltfLoader turns a .glb/.gltf file into a node subtree.
type GltfLoader struct {
	DecoderPath string
	Decoder     MeshDecoder
}

func NewGltfLoader() *GltfLoader {
	return &GltfLoader{DecoderPath: DefaultDecoderPath}
}

// Load parses path on its own goroutine. The channel yields exactly one
// result and is then closed. There is no retry and no cancellation.
func (l *GltfLoader) Load(path string) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		defer func() {
			if p := recover(); p != nil {
				ch <- LoadResult{Err: fmt.Errorf("load %s: %v", filepath.Base(path), p)}
			}
		}()
		root, err := l.LoadFile(path)
		ch <- LoadResult{Root: root, Err: err}
	}()
	return ch
}

// LoadFile parses path synchronously.
func (l *GltfLoader) LoadFile(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	root, err := l.Import(doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return root, nil
}

// Import converts the document's default scene into a new subtree. The
// returned root is a group whose children are the scene's top-level nodes.
func (l *GltfLoader) Import(doc *gltf.Document) (*Node, error) {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("document has no scene %d", sceneIdx)
	}
	gs := doc.Scenes[sceneIdx]

	root := NewNode(gs.Name)
	meshes := make(map[int]*Geometry)
	for _, idx := range gs.Nodes {
		child, err := l.importNode(doc, idx, meshes, 0)
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

const maxNodeDepth = 64

func (l *GltfLoader) importNode(doc *gltf.Document, idx int, meshes map[int]*Geometry, depth int) (*Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	gn := doc.Nodes[idx]

	node := NewNode(gn.Name)
	node.Transform = nodeTransform(gn)

	if gn.Mesh != nil {
		meshIdx := *gn.Mesh
		geom, ok := meshes[meshIdx]
		if !ok {
			var err error
			geom, err = l.importMesh(doc, meshIdx)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", gn.Name, err)
			}
			meshes[meshIdx] = geom
		}
		node.Geometry = geom
	}

	for _, childIdx := range gn.Children {
		child, err := l.importNode(doc, childIdx, meshes, depth+1)
		if err != nil {
			return nil, err
		}
		node.Add(child)
	}
	return node, nil
}

// importMesh merges all triangle primitives of a mesh into one geometry.
func (l *GltfLoader) importMesh(doc *gltf.Document, meshIdx int) (*Geometry, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	mesh := doc.Meshes[meshIdx]

	merged := &Geometry{}
	for i, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		geom, err := l.importPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		base := uint32(len(merged.Positions))
		merged.Positions = append(merged.Positions, geom.Positions...)
		merged.UVs = append(merged.UVs, geom.UVs...)
		for _, index := range geom.Indices {
			merged.Indices = append(merged.Indices, base+index)
		}
	}
	return merged, nil
}

func (l *GltfLoader) importPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Geometry, error) {
	if raw, ok := prim.Extensions[DracoExtension]; ok {
		if l.Decoder == nil {
			return nil, fmt.Errorf("%w (decoder path %q)", ErrCompressedMesh, l.DecoderPath)
		}
		ext, err := rawExtension(raw)
		if err != nil {
			return nil, err
		}
		return l.Decoder.Decode(CompressedPrimitive{
			Doc:         doc,
			Primitive:   prim,
			Extension:   ext,
			DecoderPath: l.DecoderPath,
		})
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	posAcc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	geom := &Geometry{Positions: positions}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvAcc, err := accessor(doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
		geom.UVs, err = modeler.ReadTextureCoord(doc, uvAcc, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	} else {
		geom.UVs = make([][2]float32, len(positions))
	}

	if prim.Indices != nil {
		idxAcc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		geom.Indices, err = modeler.ReadIndices(doc, idxAcc, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		geom.Indices = make([]uint32, len(positions))
		for i := range geom.Indices {
			geom.Indices[i] = uint32(i)
		}
	}
	return geom, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView != nil && (*acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews)) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", idx, *acc.BufferView)
	}
	return acc, nil
}

func rawExtension(v any) (json.RawMessage, error) {
	switch ext := v.(type) {
	case json.RawMessage:
		return ext, nil
	case []byte:
		return json.RawMessage(ext), nil
	default:
		data, err := json.Marshal(ext)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", DracoExtension, err)
		}
		return data, nil
	}
}

func nodeTransform(gn *gltf.Node) Transform {
	tr := IdentityTransform()

	if gn.Matrix != [16]float64{} && gn.Matrix != identityMatrix {
		var m mgl32.Mat4
		for i := range m {
			m[i] = float32(gn.Matrix[i])
		}
		return decompose(m)
	}

	tr.Position = mgl32.Vec3{float32(gn.Translation[0]), float32(gn.Translation[1]), float32(gn.Translation[2])}
	if gn.Rotation != [4]float64{} {
		// glTF stores x, y, z, w
		tr.Rotation = mgl32.Quat{
			W: float32(gn.Rotation[3]),
			V: mgl32.Vec3{float32(gn.Rotation[0]), float32(gn.Rotation[1]), float32(gn.Rotation[2])},
		}.Normalize()
	}
	if gn.Scale != [3]float64{} {
		tr.Scale = mgl32.Vec3{float32(gn.Scale[0]), float32(gn.Scale[1]), float32(gn.Scale[2])}
	}
	return tr
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// decompose splits a column-major TRS matrix. Shear is dropped.
func decompose(m mgl32.Mat4) Transform {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Det() < 0 {
		sx = -sx
	}

	rot := mgl32.Ident4()
	for i, s := range []float32{sx, sy, sz} {
		if s == 0 || math.IsNaN(float64(s)) {
			continue
		}
		col := m.Col(i).Vec3().Mul(1 / s)
		rot.SetCol(i, col.Vec4(0))
	}

	return Transform{
		Position: m.Col(3).Vec3(),
		Rotation: mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:    mgl32.Vec3{sx, sy, sz},
	}
}
