package portal

import (
	"encoding/json"
	"fmt"

	"github.com/qmuntal/draco-go/gltf/draco"
	"github.com/qmuntal/gltf"
)

// DracoDecoder decodes KHR_draco_mesh_compression primitives in process.
// DecoderPath is ignored; the decoder is linked in.
type DracoDecoder struct{}

func (DracoDecoder) Decode(p CompressedPrimitive) (*Geometry, error) {
	ext, err := dracoExtension(p)
	if err != nil {
		return nil, err
	}
	bv := int(ext.BufferView)
	if bv < 0 || bv >= len(p.Doc.BufferViews) {
		return nil, fmt.Errorf("draco: buffer view %d out of range", bv)
	}

	mesh, err := draco.UnmarshalMesh(p.Doc, p.Doc.BufferViews[bv])
	if err != nil {
		return nil, fmt.Errorf("draco: %w", err)
	}

	raw, err := mesh.ReadAttr(p.Primitive, gltf.POSITION, nil)
	if err != nil {
		return nil, fmt.Errorf("draco POSITION: %w", err)
	}
	positions, ok := raw.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("draco POSITION: unexpected %T", raw)
	}
	geom := &Geometry{Positions: positions}

	if _, ok := p.Primitive.Attributes[gltf.TEXCOORD_0]; ok {
		raw, err := mesh.ReadAttr(p.Primitive, gltf.TEXCOORD_0, nil)
		if err != nil {
			return nil, fmt.Errorf("draco TEXCOORD_0: %w", err)
		}
		if geom.UVs, ok = raw.([][2]float32); !ok {
			return nil, fmt.Errorf("draco TEXCOORD_0: unexpected %T", raw)
		}
	} else {
		geom.UVs = make([][2]float32, len(positions))
	}

	geom.Indices, err = mesh.ReadIndices(nil)
	if err != nil {
		return nil, fmt.Errorf("draco indices: %w", err)
	}
	return geom, nil
}

// dracoExtension prefers the typed extension gltf.Open registers and falls
// back to the raw JSON for documents built in memory.
func dracoExtension(p CompressedPrimitive) (*draco.PrimitiveExt, error) {
	if p.Primitive != nil {
		if ext, ok := p.Primitive.Extensions[draco.ExtensionName].(*draco.PrimitiveExt); ok {
			return ext, nil
		}
	}
	ext := new(draco.PrimitiveExt)
	if err := json.Unmarshal(p.Extension, ext); err != nil {
		return nil, fmt.Errorf("draco extension: %w", err)
	}
	return ext, nil
}
