package portal

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is an indexed triangle mesh with one UV set.
type Geometry struct {
	Positions [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions)
}

// Node is one element of the scene graph. A node draws a mesh, a point
// cloud, or nothing (a group).
type Node struct {
	Name      string
	Transform Transform
	Geometry  *Geometry
	Points    *ParticleBuffer
	Material  Material

	Parent   *Node
	Children []*Node

	world Transform
}

func NewNode(name string) *Node {
	tr := IdentityTransform()
	return &Node{
		Name:      name,
		Transform: tr,
		world:     tr,
	}
}

// Add reparents children under n.
func (n *Node) Add(children ...*Node) {
	for _, child := range children {
		if child.Parent != nil {
			child.Parent.remove(child)
		}
		child.Parent = n
		n.Children = append(n.Children, child)
	}
}

func (n *Node) remove(child *Node) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool { return c == child })
	child.Parent = nil
}

// Child finds an immediate child by name. Deeper descendants are not searched.
func (n *Node) Child(name string) (*Node, bool) {
	for _, child := range n.Children {
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Drawable reports whether the renderer has anything to submit for n.
func (n *Node) Drawable() bool {
	return n.Material != nil && (n.Geometry != nil || n.Points != nil)
}

func (n *Node) WorldTransform() Transform {
	return n.world
}

func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.world.Matrix()
}

// Scene is the root container. This program only appends to it.
type Scene struct {
	Root *Node
}

func NewScene() *Scene {
	return &Scene{Root: NewNode("scene")}
}

func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

func (s *Scene) UpdateWorldTransforms() {
	s.Root.updateWorld(IdentityTransform())
}

// Drawables returns every node with something to draw, in tree order.
func (s *Scene) Drawables() []*Node {
	var nodes []*Node
	s.Root.Walk(func(n *Node) bool {
		if n.Drawable() {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}
