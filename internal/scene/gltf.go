package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// glTF loading errors.
var (
	ErrNoScene          = errors.New("glTF document has no scene")
	ErrBadAccessorType  = errors.New("unexpected accessor element type")
	ErrBadChannelTarget = errors.New("animation channel has no target node")
)

// Key times in glTF are seconds; the pipeline works in millisecond
// ticks, so every loaded animation reports this rate.
const gltfTicksPerSecond = 1000.0

// LoadGLTF reads a .gltf or .glb document from disk and converts it to
// the pipeline's scene model.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening glTF document: %w", err)
	}
	return FromGLTF(doc)
}

// FromGLTF converts an already-parsed glTF document.
func FromGLTF(doc *gltf.Document) (*Scene, error) {
	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	s := &Scene{}

	// Node names must be unique and non-empty for channel matching;
	// unnamed nodes get a stable index-derived name.
	names := make([]string, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n.Name != "" {
			names[i] = n.Name
		} else {
			names[i] = fmt.Sprintf("node_%d", i)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	var build func(idx uint32, parent *Node) *Node
	build = func(idx uint32, parent *Node) *Node {
		src := doc.Nodes[idx]
		n := &Node{
			Name:      names[idx],
			Transform: nodeTransform(src),
			Parent:    parent,
			MeshIndex: -1,
		}
		nodes[idx] = n
		if src.Mesh != nil && src.Skin != nil {
			n.MeshIndex = len(s.Meshes)
			s.Meshes = append(s.Meshes, Mesh{
				Name:   meshName(doc, *src.Mesh),
				Joints: jointNames(doc, *src.Skin, names),
			})
		}
		for _, child := range src.Children {
			n.Children = append(n.Children, build(child, n))
		}
		return n
	}

	if len(roots) == 1 {
		s.Root = build(roots[0], nil)
	} else {
		// Multiple scene roots are anchored under a synthetic root so
		// the pipeline always sees a single hierarchy.
		s.Root = &Node{Name: "SceneRoot", Transform: mgl32.Ident4(), MeshIndex: -1}
		for _, r := range roots {
			s.Root.Children = append(s.Root.Children, build(r, s.Root))
		}
	}

	for i, a := range doc.Animations {
		anim, err := convertAnimation(doc, a, names)
		if err != nil {
			return nil, fmt.Errorf("animation %d (%s): %w", i, a.Name, err)
		}
		s.Animations = append(s.Animations, *anim)
	}

	return s, nil
}

// sceneRoots returns the root node indices of the default scene.
func sceneRoots(doc *gltf.Document) ([]uint32, error) {
	sceneIndex := uint32(0)
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}
	if int(sceneIndex) >= len(doc.Scenes) || len(doc.Scenes[sceneIndex].Nodes) == 0 {
		return nil, ErrNoScene
	}
	return doc.Scenes[sceneIndex].Nodes, nil
}

// nodeTransform builds the local transform, preferring an explicit
// matrix over TRS components when one is present.
func nodeTransform(n *gltf.Node) mgl32.Mat4 {
	if matrix := n.MatrixOrDefault(); matrix != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	sc := n.ScaleOrDefault()

	rot := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}

	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(sc[0]), float32(sc[1]), float32(sc[2])))
}

func meshName(doc *gltf.Document, idx uint32) string {
	if name := doc.Meshes[idx].Name; name != "" {
		return name
	}
	return fmt.Sprintf("mesh_%d", idx)
}

func jointNames(doc *gltf.Document, skinIndex uint32, names []string) []string {
	skin := doc.Skins[skinIndex]
	joints := make([]string, len(skin.Joints))
	for i, j := range skin.Joints {
		joints[i] = names[j]
	}
	return joints
}

// convertAnimation regroups glTF's per-property channels into the
// pipeline's per-node channels with independent position and rotation
// tracks.
func convertAnimation(doc *gltf.Document, a *gltf.Animation, names []string) (*Animation, error) {
	anim := &Animation{
		Name:           a.Name,
		TicksPerSecond: gltfTicksPerSecond,
	}

	byTarget := map[string]int{}
	channelFor := func(target string) *Channel {
		if idx, ok := byTarget[target]; ok {
			return &anim.Channels[idx]
		}
		byTarget[target] = len(anim.Channels)
		anim.Channels = append(anim.Channels, Channel{TargetName: target})
		return &anim.Channels[len(anim.Channels)-1]
	}

	for _, ch := range a.Channels {
		if ch.Target.Node == nil {
			return nil, ErrBadChannelTarget
		}
		if ch.Sampler == nil {
			continue
		}
		sampler := a.Samplers[*ch.Sampler]

		times, err := readTimes(doc, sampler.Input)
		if err != nil {
			return nil, err
		}

		target := channelFor(names[*ch.Target.Node])

		switch ch.Target.Path {
		case gltf.TRSTranslation:
			values, err := readVec3(doc, sampler.Output)
			if err != nil {
				return nil, err
			}
			for i, t := range times {
				if i >= len(values) {
					break
				}
				target.PositionKeys = append(target.PositionKeys, VectorKey{Time: t, Value: values[i]})
				anim.Duration = max(anim.Duration, t)
			}
		case gltf.TRSRotation:
			values, err := readQuat(doc, sampler.Output)
			if err != nil {
				return nil, err
			}
			for i, t := range times {
				if i >= len(values) {
					break
				}
				target.RotationKeys = append(target.RotationKeys, QuatKey{Time: t, Value: values[i]})
				anim.Duration = max(anim.Duration, t)
			}
		default:
			// Scale and morph-weight channels are not part of the clip
			// format.
		}
	}

	return anim, nil
}

func readTimes(doc *gltf.Document, accessor uint32) ([]float64, error) {
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("reading key times: %w", err)
	}
	seconds, ok := raw.([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: key times are %T", ErrBadAccessorType, raw)
	}
	times := make([]float64, len(seconds))
	for i, s := range seconds {
		times[i] = float64(s) * gltfTicksPerSecond
	}
	return times, nil
}

func readVec3(doc *gltf.Document, accessor uint32) ([]mgl32.Vec3, error) {
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("reading position keys: %w", err)
	}
	values, ok := raw.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("%w: position keys are %T", ErrBadAccessorType, raw)
	}
	out := make([]mgl32.Vec3, len(values))
	for i, v := range values {
		out[i] = mgl32.Vec3{v[0], v[1], v[2]}
	}
	return out, nil
}

func readQuat(doc *gltf.Document, accessor uint32) ([]mgl32.Quat, error) {
	raw, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, fmt.Errorf("reading rotation keys: %w", err)
	}
	values, ok := raw.([][4]float32)
	if !ok {
		return nil, fmt.Errorf("%w: rotation keys are %T", ErrBadAccessorType, raw)
	}
	out := make([]mgl32.Quat, len(values))
	for i, v := range values {
		out[i] = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
	}
	return out, nil
}
