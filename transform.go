package portal

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// compose places a local transform under its parent's world transform.
// Components are propagated directly to preserve scale signs (reflections).
func compose(parentWorld, local Transform) Transform {
	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parentWorld.Scale.X(),
		local.Position.Y() * parentWorld.Scale.Y(),
		local.Position.Z() * parentWorld.Scale.Z(),
	}
	return Transform{
		Position: parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaledLocalPos)),
		// WorldRot = ParentRot * LocalRot
		Rotation: parentWorld.Rotation.Mul(local.Rotation).Normalize(),
		// WorldScale = ParentScale * LocalScale
		Scale: mgl32.Vec3{
			parentWorld.Scale.X() * local.Scale.X(),
			parentWorld.Scale.Y() * local.Scale.Y(),
			parentWorld.Scale.Z() * local.Scale.Z(),
		},
	}
}

// updateWorld walks the subtree top-down, so any depth resolves in one pass.
func (n *Node) updateWorld(parentWorld Transform) {
	n.world = compose(parentWorld, n.Transform)
	for _, child := range n.Children {
		child.updateWorld(n.world)
	}
}

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(transformHierarchySystem).
			InStage(PostUpdate),
	)
}

func transformHierarchySystem(scene *Scene) {
	scene.UpdateWorldTransforms()
}
