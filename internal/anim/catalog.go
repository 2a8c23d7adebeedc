package anim

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/halfgrid/bonepack/internal/emit"
	"github.com/halfgrid/bonepack/internal/logger"
	"github.com/halfgrid/bonepack/internal/scene"
	"github.com/halfgrid/bonepack/internal/skeleton"
)

// AttachmentPrefix marks bones that downstream systems use to anchor
// external objects.
const AttachmentPrefix = "attachment "

// Emitted C type names.
const (
	boneFrameType  = "struct BPAnimationBoneFrame"
	clipType       = "struct BPAnimationClip"
	headerType     = "struct BPAnimationHeader"
	clipTypeHeader = "\"bp/animation_clip.h\""
)

// Clip is one animation converted to the runtime format.
type Clip struct {
	Name           string
	Index          int // sequential id among emitted clips, source order
	FrameCount     int
	BoneCount      int
	TicksPerSecond uint16
	// MaxTicks is the source duration in ticks, a duration proxy for
	// the playback scheduler.
	MaxTicks uint16
	// FirstChunkSize is the byte size of one full frame, used to size
	// the initial streaming read.
	FirstChunkSize uint16
	Frames         []BoneFrame
}

// EncodeClip resamples and quantizes one animation. It returns nil when
// the animation has no channel targeting any bone with key data;
// absence of animation is normal, not an error.
func EncodeClip(a *scene.Animation, skel *skeleton.Skeleton, settings Settings) *Clip {
	if !hasUsableChannel(a, skel) {
		return nil
	}

	frames := Resample(a, skel, settings)

	return &Clip{
		Name:           a.Name,
		FrameCount:     len(frames),
		BoneCount:      skel.BoneCount(),
		TicksPerSecond: settings.TicksPerSecond,
		MaxTicks:       uint16(a.Duration),
		FirstChunkSize: uint16(skel.BoneCount() * BoneFrameSize),
		Frames:         QuantizeFrames(frames),
	}
}

// BuildClips converts every animation in source order, skipping the
// empty ones, and assigns each emitted clip its sequential index.
func BuildClips(sc *scene.Scene, skel *skeleton.Skeleton, settings Settings) []*Clip {
	var clips []*Clip
	for i := range sc.Animations {
		a := &sc.Animations[i]
		clip := EncodeClip(a, skel, settings)
		if clip == nil {
			logger.Debug("skipping animation without usable channels",
				zap.String("animation", a.Name))
			continue
		}
		clip.Index = len(clips)
		clips = append(clips, clip)
		logger.Debug("encoded clip",
			zap.String("animation", a.Name),
			zap.Int("frames", clip.FrameCount),
			zap.Int("bones", clip.BoneCount))
	}
	return clips
}

func hasUsableChannel(a *scene.Animation, skel *skeleton.Skeleton) bool {
	for i := range a.Channels {
		ch := &a.Channels[i]
		if skel.ByName(ch.TargetName) == nil {
			continue
		}
		if len(ch.PositionKeys) > 0 || len(ch.RotationKeys) > 0 {
			return true
		}
	}
	return false
}

// CatalogResult reports the symbols the rest of the exporter refers to.
type CatalogResult struct {
	RestPoseRef          string
	BoneParentRef        string
	CatalogRef           string
	BoneCountMacro       string
	AttachmentCountMacro string
	Clips                []*Clip
}

// GenerateCatalog runs the full animation pipeline for one scene and
// pushes every record to the emission file: the rest pose, the
// bone-parent table, one data and clip record per animation, the
// catalog header table, and the generated index constants.
func GenerateCatalog(sc *scene.Scene, skel *skeleton.Skeleton, settings Settings, modelName string, file *emit.File) (*CatalogResult, error) {
	result := &CatalogResult{}
	file.AddInclude(clipTypeHeader)

	// Rest pose, from the collapsed animated hierarchy.
	restName := file.Names.Unique(modelName + "_default_bones")
	animated := skeleton.AnimatedNames(sc, skel)
	collapsed := skeleton.Collapse(sc, animated, settings.ModelScale, settings.ModelRotation)
	file.AddDefinition(&emit.Definition{
		Type:    boneFrameType,
		Name:    restName,
		IsArray: true,
		Data:    restPoseChunk(skel, collapsed, settings),
	})
	result.RestPoseRef = restName

	result.BoneCountMacro = file.Names.MacroName(restName + "_COUNT")
	file.AddMacro(result.BoneCountMacro, strconv.Itoa(skel.BoneCount()))

	// Bone-parent table.
	parents, err := skel.ParentTable()
	if err != nil {
		return nil, err
	}
	parentName := file.Names.Unique(modelName + "_bone_parent")
	parentChunk := emit.NewStruct()
	for _, p := range parents {
		parentChunk.AddUint(uint64(p))
	}
	file.AddDefinition(&emit.Definition{
		Type:    "unsigned short",
		Name:    parentName,
		IsArray: true,
		Data:    parentChunk,
	})
	result.BoneParentRef = parentName

	// Per-animation frame data and clip records, then the catalog
	// table referencing them.
	result.Clips = BuildClips(sc, skel, settings)

	catalog := emit.NewStruct()
	for _, clip := range result.Clips {
		dataName := file.Names.Unique(modelName + "_anim_" + clip.Name + "_data")
		file.AddDefinition(&emit.Definition{
			Type:    boneFrameType,
			Name:    dataName,
			IsArray: true,
			Data:    frameChunk(clip.Frames),
		})

		clipName := file.Names.Unique(modelName + "_anim_" + clip.Name + "_clip")
		file.AddDefinition(&emit.Definition{
			Type: clipType,
			Name: clipName,
			Data: emit.NewStruct().
				AddInt(int64(clip.FrameCount)).
				AddInt(int64(clip.BoneCount)).
				AddSymbol(dataName).
				AddUint(uint64(clip.TicksPerSecond)),
		})

		catalog.Add(emit.NewStruct().
			AddUint(uint64(clip.FirstChunkSize)).
			AddUint(uint64(clip.TicksPerSecond)).
			AddUint(uint64(clip.MaxTicks)).
			AddSymbol("&" + clipName))

		indexMacro := file.Names.MacroName(modelName + "_anim_" + clip.Name + "_INDEX")
		file.AddMacro(indexMacro, strconv.Itoa(clip.Index))
	}

	catalogName := file.Names.Unique(modelName + "_animations")
	file.AddDefinition(&emit.Definition{
		Type:    headerType,
		Name:    catalogName,
		IsArray: true,
		Data:    catalog,
	})
	result.CatalogRef = catalogName

	// Attachment bones get sequential ids in bone-index order.
	attachmentCount := 0
	for i := 0; i < skel.BoneCount(); i++ {
		bone := skel.ByIndex(i)
		if !strings.HasPrefix(bone.Name, AttachmentPrefix) {
			continue
		}
		macro := file.Names.MacroName("ATTACHMENT_" + strings.TrimPrefix(bone.Name, AttachmentPrefix))
		file.AddMacro(macro, strconv.Itoa(attachmentCount))
		attachmentCount++
	}
	result.AttachmentCountMacro = file.Names.MacroName("ATTACHMENT_COUNT")
	file.AddMacro(result.AttachmentCountMacro, strconv.Itoa(attachmentCount))

	return result, nil
}

// restPoseChunk quantizes each bone's collapsed rest transform with the
// same fixed-point rules as animation frames.
func restPoseChunk(skel *skeleton.Skeleton, collapsed []*skeleton.AnimatedNode, settings Settings) *emit.Struct {
	byName := make(map[string]*skeleton.AnimatedNode, len(collapsed))
	for _, info := range collapsed {
		byName[info.Node.Name] = info
	}

	chunk := emit.NewStruct()
	for i := 0; i < skel.BoneCount(); i++ {
		bone := skel.ByIndex(i)
		pose := FrameTransform{Rotation: mgl32.QuatIdent()}
		if info, ok := byName[bone.Name]; ok {
			position, rotation := decomposeTransform(info.RestTransform())
			pose = FrameTransform{
				Position: position.Mul(settings.FixedPointScale),
				Rotation: rotation,
			}
		}
		chunk.Add(boneFrameStruct(Quantize(pose)))
	}
	return chunk
}

func frameChunk(frames []BoneFrame) *emit.Struct {
	chunk := emit.NewStruct()
	for _, f := range frames {
		chunk.Add(boneFrameStruct(f))
	}
	return chunk
}

func boneFrameStruct(f BoneFrame) *emit.Struct {
	pos := emit.NewStruct().AddInt(int64(f.Pos[0])).AddInt(int64(f.Pos[1])).AddInt(int64(f.Pos[2]))
	rot := emit.NewStruct().AddInt(int64(f.Rot[0])).AddInt(int64(f.Rot[1])).AddInt(int64(f.Rot[2]))
	return emit.NewStruct().Add(pos).Add(rot)
}

// decomposeTransform splits an affine transform into translation and
// rotation, discarding scale.
func decomposeTransform(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat) {
	position := mgl32.Vec3{m[12], m[13], m[14]}

	x := mgl32.Vec3{m[0], m[1], m[2]}
	y := mgl32.Vec3{m[4], m[5], m[6]}
	z := mgl32.Vec3{m[8], m[9], m[10]}
	if x.Len() > 0 {
		x = x.Normalize()
	}
	if y.Len() > 0 {
		y = y.Normalize()
	}
	if z.Len() > 0 {
		z = z.Normalize()
	}

	rot := mgl32.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}
	return position, mgl32.Mat4ToQuat(rot).Normalize()
}
