package portal

import (
	"errors"
	"fmt"
)

// Node names the diorama asset must expose as direct children of its scene.
const (
	NodeBaked       = "baked"
	NodePoleLightA  = "poleLightA"
	NodePoleLightB  = "poleLightB"
	NodePortalLight = "portalLight"
)

var RequiredNodes = []string{NodeBaked, NodePoleLightA, NodePoleLightB, NodePortalLight}

var ErrMissingNode = errors.New("required node missing from asset")

type MissingNodeError struct {
	Name string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingNode, e.Name)
}

func (e *MissingNodeError) Unwrap() error {
	return ErrMissingNode
}

// Assemble assigns materials to the loaded subtree. Every required node is
// resolved before anything is assigned, so a mismatched asset is left
// untouched.
func Assemble(root *Node, materials *Materials) error {
	if root == nil {
		return &MissingNodeError{Name: NodeBaked}
	}

	found := make(map[string]*Node, len(RequiredNodes))
	for _, name := range RequiredNodes {
		node, ok := root.Child(name)
		if !ok {
			return &MissingNodeError{Name: name}
		}
		found[name] = node
	}

	found[NodeBaked].Material = materials.Baked
	found[NodePoleLightA].Material = materials.PoleLight
	found[NodePoleLightB].Material = materials.PoleLight
	found[NodePortalLight].Material = materials.Portal
	return nil
}
