package portal

import (
	"math/rand"
)

const DefaultFireflyCount = 100

// Spawn volume: x and z in [-2, 2], y in [0, 2].
const (
	fireflySpreadXZ = 4.0
	fireflyHeight   = 2.0
)

// ParticleBuffer holds per-particle attributes in flat arrays, the layout the
// vertex buffer takes. It is filled once and never mutated.
type ParticleBuffer struct {
	Count     int
	Positions []float32 // 3 per particle
	Scales    []float32 // 1 per particle, in [0, 1)
}

// NewParticleBuffer samples every axis independently and uniformly.
func NewParticleBuffer(count int, rng *rand.Rand) *ParticleBuffer {
	if count < 0 {
		count = 0
	}
	buf := &ParticleBuffer{
		Count:     count,
		Positions: make([]float32, count*3),
		Scales:    make([]float32, count),
	}
	for i := 0; i < count; i++ {
		buf.Positions[i*3+0] = (rng.Float32() - 0.5) * fireflySpreadXZ
		buf.Positions[i*3+1] = rng.Float32() * fireflyHeight
		buf.Positions[i*3+2] = (rng.Float32() - 0.5) * fireflySpreadXZ

		buf.Scales[i] = rng.Float32()
	}
	return buf
}

// Position returns particle i as a vector.
func (b *ParticleBuffer) Position(i int) [3]float32 {
	return [3]float32{b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2]}
}

// NewFirefliesNode wraps the buffer in a drawable point-cloud node.
func NewFirefliesNode(buf *ParticleBuffer, material *ShaderMaterial) *Node {
	node := NewNode("fireflies")
	node.Points = buf
	node.Material = material
	return node
}
