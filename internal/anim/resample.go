package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/halfgrid/bonepack/internal/scene"
	"github.com/halfgrid/bonepack/internal/skeleton"
)

// Settings carries the conversion parameters shared by every animation
// in one run.
type Settings struct {
	// TicksPerSecond is the playback rate frames are resampled to.
	TicksPerSecond uint16
	// FixedPointScale converts world units to fixed-point position
	// units before truncation.
	FixedPointScale float32
	// ModelScale and ModelRotation reorient the whole model; they are
	// applied to root bones only, every frame.
	ModelScale    float32
	ModelRotation mgl32.Quat
}

// FrameTransform is one bone's pose in one resampled frame.
type FrameTransform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// FrameCount returns the number of output frames needed to cover the
// full animation at the target rate. A partial trailing frame is always
// kept, never truncated.
func FrameCount(a *scene.Animation, targetTicksPerSecond uint16) int {
	return int(math.Ceil(a.Duration * float64(targetTicksPerSecond) / a.TicksPerSecond))
}

// Resample produces the dense per-frame, per-bone pose array for one
// animation, indexed [frame][bone]. Bones without a matching channel
// hold the identity pose for the whole clip.
func Resample(a *scene.Animation, skel *skeleton.Skeleton, settings Settings) [][]FrameTransform {
	frameCount := FrameCount(a, settings.TicksPerSecond)
	boneCount := skel.BoneCount()

	frames := make([][]FrameTransform, frameCount)
	for f := range frames {
		frames[f] = make([]FrameTransform, boneCount)
		for b := range frames[f] {
			frames[f][b].Rotation = mgl32.QuatIdent()
		}
	}

	for boneIndex := 0; boneIndex < boneCount; boneIndex++ {
		bone := skel.ByIndex(boneIndex)

		channel := a.FindChannel(bone.Name)
		if channel == nil {
			continue
		}

		for f := 0; f < frameCount; f++ {
			at := float64(f) * a.TicksPerSecond / float64(settings.TicksPerSecond)

			position := EvaluateVector(channel.PositionKeys, at)
			rotation := EvaluateQuat(channel.RotationKeys, at)

			// The root transform may itself be animated, so the global
			// reorientation has to be folded into every frame.
			if bone.Parent == nil {
				position = settings.ModelRotation.Rotate(position).Mul(settings.ModelScale)
				rotation = settings.ModelRotation.Mul(rotation)
			}

			frames[f][boneIndex] = FrameTransform{
				Position: position.Mul(settings.FixedPointScale),
				Rotation: rotation,
			}
		}
	}

	return frames
}
