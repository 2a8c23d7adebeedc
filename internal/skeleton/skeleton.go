// Package skeleton derives the bone hierarchy used by the clip format:
// which scene nodes are skeletal animation targets, their stable
// indices, and their parent links.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/halfgrid/bonepack/internal/scene"
)

// NoParent is the parent-index sentinel for root bones in the emitted
// bone-parent table.
const NoParent = 0xFFFF

// ErrParentOrder indicates a bone whose parent was not assigned an
// earlier index. The format requires parents to precede children so a
// player can propagate transforms top-down in a single pass.
var ErrParentOrder = errors.New("bone parent does not precede child")

// Bone is one skeletal animation target. Index follows pre-order
// traversal of the source scene, so a parent always has a smaller index
// than any of its children.
type Bone struct {
	Name   string
	Index  int
	Parent *Bone // nil for root bones
}

// Skeleton is the ordered bone list for one scene.
type Skeleton struct {
	bones  []*Bone
	byName map[string]*Bone
}

// Build walks the scene once in pre-order and registers every node
// whose name is in targets, in the order first encountered. The parent
// of each bone is its nearest strict ancestor that is also a bone.
func Build(sc *scene.Scene, targets map[string]bool) *Skeleton {
	skel := &Skeleton{byName: make(map[string]*Bone)}

	var walk func(n *scene.Node, ancestor *Bone)
	walk = func(n *scene.Node, ancestor *Bone) {
		nearest := ancestor
		if targets[n.Name] {
			bone := &Bone{
				Name:   n.Name,
				Index:  len(skel.bones),
				Parent: ancestor,
			}
			skel.bones = append(skel.bones, bone)
			skel.byName[n.Name] = bone
			nearest = bone
		}
		for _, child := range n.Children {
			walk(child, nearest)
		}
	}
	walk(sc.Root, nil)

	return skel
}

// BuildFromScene derives the bone target set from the scene itself:
// every skin joint of every mesh, or, when the scene has no skinned
// meshes, every node referenced by an animation channel.
func BuildFromScene(sc *scene.Scene) *Skeleton {
	targets := make(map[string]bool)
	for _, mesh := range sc.Meshes {
		for _, joint := range mesh.Joints {
			targets[joint] = true
		}
	}
	if len(targets) == 0 {
		for i := range sc.Animations {
			for j := range sc.Animations[i].Channels {
				targets[sc.Animations[i].Channels[j].TargetName] = true
			}
		}
	}
	return Build(sc, targets)
}

// BoneCount returns the number of bones.
func (s *Skeleton) BoneCount() int {
	return len(s.bones)
}

// ByIndex returns the bone with the given index.
func (s *Skeleton) ByIndex(index int) *Bone {
	return s.bones[index]
}

// ByName returns the bone for a node name, or nil if the node is not a
// bone.
func (s *Skeleton) ByName(name string) *Bone {
	return s.byName[name]
}

// ParentTable builds the per-bone parent index table consumed by the
// runtime, with NoParent for root bones. A parent index that does not
// precede its child means the traversal-order invariant was broken and
// the conversion must abort.
func (s *Skeleton) ParentTable() ([]uint16, error) {
	table := make([]uint16, len(s.bones))
	for i, bone := range s.bones {
		if bone.Parent == nil {
			table[i] = NoParent
			continue
		}
		if bone.Parent.Index >= bone.Index {
			return nil, fmt.Errorf("%w: bone %q (index %d) has parent %q (index %d)",
				ErrParentOrder, bone.Name, bone.Index, bone.Parent.Name, bone.Parent.Index)
		}
		table[i] = uint16(bone.Parent.Index)
	}
	return table, nil
}
