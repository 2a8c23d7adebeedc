package skeleton

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/halfgrid/bonepack/internal/scene"
)

func link(parent, child *scene.Node) *scene.Node {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	return child
}

func node(name string) *scene.Node {
	return &scene.Node{Name: name, Transform: mgl32.Ident4(), MeshIndex: -1}
}

// testScene builds:
//
//	root
//	├── armature
//	│   ├── hip
//	│   │   ├── knee
//	│   │   └── attachment hand
//	│   └── tail
//	└── prop
func testScene() *scene.Scene {
	root := node("root")
	armature := link(root, node("armature"))
	hip := link(armature, node("hip"))
	link(hip, node("knee"))
	link(hip, node("attachment hand"))
	link(armature, node("tail"))
	link(root, node("prop"))
	return &scene.Scene{Root: root}
}

func TestBuild_TraversalOrder(t *testing.T) {
	sc := testScene()
	targets := map[string]bool{"hip": true, "knee": true, "tail": true}

	skel := Build(sc, targets)

	if skel.BoneCount() != 3 {
		t.Fatalf("BoneCount() = %d, want 3", skel.BoneCount())
	}

	// Pre-order: hip before knee before tail.
	want := []string{"hip", "knee", "tail"}
	for i, name := range want {
		if got := skel.ByIndex(i).Name; got != name {
			t.Errorf("bone[%d] = %q, want %q", i, got, name)
		}
	}
}

func TestBuild_ParentIsNearestBoneAncestor(t *testing.T) {
	sc := testScene()
	// armature is not a bone, so hip should have no parent even though
	// it sits two levels below the root.
	skel := Build(sc, map[string]bool{"hip": true, "knee": true, "tail": true})

	hip := skel.ByName("hip")
	if hip == nil || hip.Parent != nil {
		t.Errorf("hip parent = %v, want nil", hip.Parent)
	}

	knee := skel.ByName("knee")
	if knee == nil || knee.Parent == nil || knee.Parent.Name != "hip" {
		t.Errorf("knee parent = %v, want hip", knee.Parent)
	}

	if skel.ByName("prop") != nil {
		t.Error("prop should not be a bone")
	}
}

func TestBuild_ParentPrecedesChild(t *testing.T) {
	sc := testScene()
	skel := Build(sc, map[string]bool{
		"armature": true, "hip": true, "knee": true, "attachment hand": true, "tail": true,
	})

	for i := 0; i < skel.BoneCount(); i++ {
		bone := skel.ByIndex(i)
		if bone.Parent != nil && bone.Parent.Index >= bone.Index {
			t.Errorf("bone %q index %d has parent %q index %d",
				bone.Name, bone.Index, bone.Parent.Name, bone.Parent.Index)
		}
	}
}

func TestBuildFromScene_SkinJoints(t *testing.T) {
	sc := testScene()
	sc.Meshes = []scene.Mesh{{Name: "body", Joints: []string{"hip", "knee"}}}
	// Channel targets must not become bones when skins exist.
	sc.Animations = []scene.Animation{{
		Name:     "idle",
		Channels: []scene.Channel{{TargetName: "prop"}},
	}}

	skel := BuildFromScene(sc)

	if skel.BoneCount() != 2 {
		t.Fatalf("BoneCount() = %d, want 2", skel.BoneCount())
	}
	if skel.ByName("prop") != nil {
		t.Error("channel target became a bone despite skin bindings")
	}
}

func TestBuildFromScene_FallbackToAnimatedNodes(t *testing.T) {
	sc := testScene()
	sc.Animations = []scene.Animation{{
		Name: "spin",
		Channels: []scene.Channel{
			{TargetName: "prop"},
			{TargetName: "tail"},
		},
	}}

	skel := BuildFromScene(sc)

	if skel.BoneCount() != 2 {
		t.Fatalf("BoneCount() = %d, want 2", skel.BoneCount())
	}
	// Traversal order, not channel order: tail precedes prop.
	if skel.ByIndex(0).Name != "tail" || skel.ByIndex(1).Name != "prop" {
		t.Errorf("bones = [%s %s], want [tail prop]",
			skel.ByIndex(0).Name, skel.ByIndex(1).Name)
	}
}

func TestParentTable(t *testing.T) {
	sc := testScene()
	skel := Build(sc, map[string]bool{"hip": true, "knee": true, "attachment hand": true, "tail": true})

	table, err := skel.ParentTable()
	if err != nil {
		t.Fatalf("ParentTable failed: %v", err)
	}

	// hip=0 knee=1 "attachment hand"=2 tail=3
	want := []uint16{NoParent, 0, 0, NoParent}
	if len(table) != len(want) {
		t.Fatalf("table length = %d, want %d", len(table), len(want))
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("table[%d] = %d, want %d", i, table[i], want[i])
		}
	}
}

func TestParentTable_OrderViolationFatal(t *testing.T) {
	// A parent with a later index breaks the top-down invariant and
	// must abort the run.
	child := &Bone{Name: "child", Index: 0}
	parent := &Bone{Name: "parent", Index: 1}
	child.Parent = parent
	skel := &Skeleton{bones: []*Bone{child, parent}}

	_, err := skel.ParentTable()
	if !errors.Is(err, ErrParentOrder) {
		t.Errorf("expected ErrParentOrder, got %v", err)
	}
}
