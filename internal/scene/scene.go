// Package scene holds the in-memory scene model consumed by the
// animation pipeline: a node hierarchy with local transforms, mesh skin
// bindings and per-animation keyframe channels.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is one entry in the scene hierarchy. Nodes are owned by the
// Scene; Parent and Children are borrowed references into the same tree.
type Node struct {
	Name      string
	Transform mgl32.Mat4 // local transform relative to Parent
	Parent    *Node
	Children  []*Node
	MeshIndex int // index into Scene.Meshes, -1 if the node carries no mesh
}

// Mesh records the skin bindings of one mesh: the names of the nodes
// that deform it. Geometry itself is not kept, only what the skeleton
// builder needs.
type Mesh struct {
	Name   string
	Joints []string
}

// VectorKey is one position keyframe. Time is in ticks at the owning
// animation's tick rate.
type VectorKey struct {
	Time  float64
	Value mgl32.Vec3
}

// QuatKey is one rotation keyframe.
type QuatKey struct {
	Time  float64
	Value mgl32.Quat
}

// Channel animates a single node. Position and rotation tracks are
// independent: they may have different key counts, and either may be
// empty.
type Channel struct {
	TargetName   string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
}

// Animation is one named clip in the source scene.
type Animation struct {
	Name           string
	Duration       float64 // in ticks
	TicksPerSecond float64
	Channels       []Channel
}

// Scene is the parsed source document. It is treated as read-only by
// every pipeline stage.
type Scene struct {
	Root       *Node
	Meshes     []Mesh
	Animations []Animation
}

// ForEachNode visits every node reachable from root in pre-order
// (parent before children, children in declaration order).
func ForEachNode(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children {
		ForEachNode(child, visit)
	}
}

// FindNode returns the first node with the given name in pre-order, or
// nil if no node matches.
func (s *Scene) FindNode(name string) *Node {
	var found *Node
	ForEachNode(s.Root, func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// FindChannel returns the channel targeting the named node, or nil if
// the animation does not animate it.
func (a *Animation) FindChannel(name string) *Channel {
	for i := range a.Channels {
		if a.Channels[i].TargetName == name {
			return &a.Channels[i]
		}
	}
	return nil
}

// HasAnimation reports whether the scene carries any keyframe data.
func (s *Scene) HasAnimation() bool {
	for i := range s.Animations {
		for j := range s.Animations[i].Channels {
			ch := &s.Animations[i].Channels[j]
			if len(ch.PositionKeys) > 0 || len(ch.RotationKeys) > 0 {
				return true
			}
		}
	}
	return false
}

// NodeCount returns the number of nodes in the hierarchy.
func (s *Scene) NodeCount() int {
	count := 0
	ForEachNode(s.Root, func(*Node) { count++ })
	return count
}
