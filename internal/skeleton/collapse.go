package skeleton

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/halfgrid/bonepack/internal/scene"
)

// AnimatedNode is one node that participates in animation, with the
// non-animated ancestors between it and its nearest animated ancestor
// collapsed into a single relative transform.
type AnimatedNode struct {
	Node *scene.Node
	// Parent is the nearest strict ancestor that is itself animated,
	// or nil when the node hangs directly off the scene root.
	Parent *scene.Node
	// Relative is the product of the local transforms of every skipped
	// ancestor, composed parent-to-child. Composing it with Parent's
	// placement reproduces the node's original world transform.
	Relative mgl32.Mat4

	order int
}

// AnimatedNames collects the set of node names that take part in
// animation: every channel target across all animations plus every
// bone.
func AnimatedNames(sc *scene.Scene, skel *Skeleton) map[string]bool {
	names := make(map[string]bool)
	for i := range sc.Animations {
		for j := range sc.Animations[i].Channels {
			names[sc.Animations[i].Channels[j].TargetName] = true
		}
	}
	for _, bone := range skel.bones {
		names[bone.Name] = true
	}
	return names
}

// Collapse walks the scene once and produces the animated-node list in
// original traversal order. modelScale and modelRotation form the
// global correction applied to nodes anchored at the scene root.
func Collapse(sc *scene.Scene, animated map[string]bool, modelScale float32, modelRotation mgl32.Quat) []*AnimatedNode {
	order := make(map[*scene.Node]int)
	var picked []*scene.Node

	scene.ForEachNode(sc.Root, func(n *scene.Node) {
		if animated[n.Name] {
			picked = append(picked, n)
		}
		order[n] = len(order)
	})

	correction := modelRotation.Mat4().Mul4(mgl32.Scale3D(modelScale, modelScale, modelScale))

	result := make([]*AnimatedNode, 0, len(picked))
	for _, node := range picked {
		info := &AnimatedNode{
			Node:     node,
			Relative: mgl32.Ident4(),
			order:    order[node],
		}

		// Walk upward, folding every non-animated ancestor's local
		// transform into the accumulator, and stop at the first
		// animated ancestor or the scene root.
		current := node
		for current.Parent != nil && !animated[current.Parent.Name] {
			current = current.Parent
			info.Relative = current.Transform.Mul4(info.Relative)
		}

		if current.Parent == nil {
			info.Relative = correction.Mul4(info.Relative)
		}
		info.Parent = current.Parent

		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].order < result[j].order
	})

	return result
}

// RestTransform returns the node's collapsed local placement: the
// relative transform of the skipped ancestors composed with the node's
// own local transform.
func (a *AnimatedNode) RestTransform() mgl32.Mat4 {
	return a.Relative.Mul4(a.Node.Transform)
}
