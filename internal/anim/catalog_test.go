package anim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/halfgrid/bonepack/internal/emit"
	"github.com/halfgrid/bonepack/internal/scene"
	"github.com/halfgrid/bonepack/internal/skeleton"
)

func catalogScene() (*scene.Scene, *skeleton.Skeleton) {
	root := &scene.Node{Name: "armature", Transform: mgl32.Ident4(), MeshIndex: -1}
	hip := &scene.Node{Name: "hip", Parent: root, Transform: mgl32.Translate3D(0, 2, 0), MeshIndex: -1}
	hand := &scene.Node{Name: "attachment hand", Parent: hip, Transform: mgl32.Ident4(), MeshIndex: -1}
	root.Children = []*scene.Node{hip}
	hip.Children = []*scene.Node{hand}

	keys := []scene.VectorKey{
		{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
		{Time: 12, Value: mgl32.Vec3{6, 0, 0}},
	}

	sc := &scene.Scene{
		Root: root,
		Animations: []scene.Animation{
			{
				Name:           "walk",
				Duration:       12,
				TicksPerSecond: 30,
				Channels: []scene.Channel{
					{TargetName: "hip", PositionKeys: keys},
				},
			},
			{
				Name:           "empty",
				Duration:       4,
				TicksPerSecond: 30,
			},
			{
				Name:           "wave",
				Duration:       6,
				TicksPerSecond: 30,
				Channels: []scene.Channel{
					{TargetName: "attachment hand", PositionKeys: keys},
				},
			},
		},
	}

	targets := map[string]bool{"hip": true, "attachment hand": true}
	return sc, skeleton.Build(sc, targets)
}

func TestEncodeClip(t *testing.T) {
	sc, skel := catalogScene()

	clip := EncodeClip(&sc.Animations[0], skel, identitySettings())
	if clip == nil {
		t.Fatal("EncodeClip() = nil for animation with usable channels")
	}
	if clip.FrameCount != 12 {
		t.Errorf("FrameCount = %d, want 12", clip.FrameCount)
	}
	if clip.BoneCount != 2 {
		t.Errorf("BoneCount = %d, want 2", clip.BoneCount)
	}
	if clip.MaxTicks != 12 {
		t.Errorf("MaxTicks = %d, want 12", clip.MaxTicks)
	}
	if want := uint16(2 * BoneFrameSize); clip.FirstChunkSize != want {
		t.Errorf("FirstChunkSize = %d, want %d", clip.FirstChunkSize, want)
	}
	if len(clip.Frames) != clip.FrameCount*clip.BoneCount {
		t.Errorf("len(Frames) = %d, want %d", len(clip.Frames), clip.FrameCount*clip.BoneCount)
	}
}

func TestEncodeClip_SkipsEmpty(t *testing.T) {
	sc, skel := catalogScene()

	if clip := EncodeClip(&sc.Animations[1], skel, identitySettings()); clip != nil {
		t.Errorf("EncodeClip() = %v for animation without channels, want nil", clip)
	}
}

func TestEncodeClip_SkipsChannelsOffSkeleton(t *testing.T) {
	_, skel := catalogScene()

	a := &scene.Animation{
		Name:           "camera",
		Duration:       4,
		TicksPerSecond: 30,
		Channels: []scene.Channel{
			{
				TargetName:   "camera_rig",
				PositionKeys: []scene.VectorKey{{Time: 0, Value: mgl32.Vec3{1, 0, 0}}},
			},
		},
	}

	if clip := EncodeClip(a, skel, identitySettings()); clip != nil {
		t.Errorf("EncodeClip() = %v for channels off the skeleton, want nil", clip)
	}
}

func TestBuildClips_SequentialIndices(t *testing.T) {
	sc, skel := catalogScene()

	clips := BuildClips(sc, skel, identitySettings())
	if len(clips) != 2 {
		t.Fatalf("len(clips) = %d, want 2", len(clips))
	}

	if clips[0].Name != "walk" || clips[1].Name != "wave" {
		t.Errorf("clip order = %q, %q, want walk, wave", clips[0].Name, clips[1].Name)
	}
	for i, clip := range clips {
		if clip.Index != i {
			t.Errorf("clip %q: Index = %d, want %d", clip.Name, clip.Index, i)
		}
	}
}

func TestGenerateCatalog_Symbols(t *testing.T) {
	sc, skel := catalogScene()
	file := emit.NewFile()

	result, err := GenerateCatalog(sc, skel, identitySettings(), "hero", file)
	if err != nil {
		t.Fatalf("GenerateCatalog() error = %v", err)
	}

	if result.RestPoseRef != "hero_default_bones" {
		t.Errorf("RestPoseRef = %q", result.RestPoseRef)
	}
	if result.BoneParentRef != "hero_bone_parent" {
		t.Errorf("BoneParentRef = %q", result.BoneParentRef)
	}
	if result.CatalogRef != "hero_animations" {
		t.Errorf("CatalogRef = %q", result.CatalogRef)
	}
	if result.BoneCountMacro != "HERO_DEFAULT_BONES_COUNT" {
		t.Errorf("BoneCountMacro = %q", result.BoneCountMacro)
	}
	if result.AttachmentCountMacro != "ATTACHMENT_COUNT" {
		t.Errorf("AttachmentCountMacro = %q", result.AttachmentCountMacro)
	}
	if len(result.Clips) != 2 {
		t.Errorf("len(Clips) = %d, want 2", len(result.Clips))
	}
}

func TestGenerateCatalog_Source(t *testing.T) {
	sc, skel := catalogScene()
	file := emit.NewFile()

	if _, err := GenerateCatalog(sc, skel, identitySettings(), "hero", file); err != nil {
		t.Fatalf("GenerateCatalog() error = %v", err)
	}

	var buf bytes.Buffer
	if err := file.WriteSource(&buf); err != nil {
		t.Fatalf("WriteSource() error = %v", err)
	}
	source := buf.String()

	for _, want := range []string{
		"#include \"bp/animation_clip.h\"",
		"struct BPAnimationBoneFrame hero_default_bones[]",
		"unsigned short hero_bone_parent[]",
		"struct BPAnimationBoneFrame hero_anim_walk_data[]",
		"struct BPAnimationClip hero_anim_walk_clip",
		"&hero_anim_walk_clip",
		"struct BPAnimationHeader hero_animations[]",
	} {
		if !strings.Contains(source, want) {
			t.Errorf("source missing %q", want)
		}
	}
}

func TestGenerateCatalog_Macros(t *testing.T) {
	sc, skel := catalogScene()
	file := emit.NewFile()

	if _, err := GenerateCatalog(sc, skel, identitySettings(), "hero", file); err != nil {
		t.Fatalf("GenerateCatalog() error = %v", err)
	}

	macros := make(map[string]string)
	for _, m := range file.Macros() {
		macros[m.Name] = m.Value
	}

	want := map[string]string{
		"HERO_DEFAULT_BONES_COUNT": "2",
		"HERO_ANIM_WALK_INDEX":     "0",
		"HERO_ANIM_WAVE_INDEX":     "1",
		"ATTACHMENT_HAND":          "0",
		"ATTACHMENT_COUNT":         "1",
	}
	for name, value := range want {
		if macros[name] != value {
			t.Errorf("macro %s = %q, want %q", name, macros[name], value)
		}
	}
}

func TestGenerateCatalog_Deterministic(t *testing.T) {
	render := func() string {
		sc, skel := catalogScene()
		file := emit.NewFile()
		if _, err := GenerateCatalog(sc, skel, identitySettings(), "hero", file); err != nil {
			t.Fatalf("GenerateCatalog() error = %v", err)
		}
		var buf bytes.Buffer
		if err := file.WriteSource(&buf); err != nil {
			t.Fatalf("WriteSource() error = %v", err)
		}
		return buf.String()
	}

	first := render()
	for i := 0; i < 3; i++ {
		if got := render(); got != first {
			t.Fatal("repeated runs produced different output")
		}
	}
}
