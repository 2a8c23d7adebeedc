package anim

import "math"

// BoneFrame is the packed pose of one bone in one frame: fixed-point
// position and the x, y, z of a unit quaternion scaled to the signed
// 16-bit range. The w component is reconstructed at playback as
// sqrt(max(0, 1 - x² - y² - z²)), so quantization canonicalizes every
// rotation to the w >= 0 hemisphere.
type BoneFrame struct {
	Pos [3]int16
	Rot [3]int16
}

// BoneFrameSize is the encoded size of one BoneFrame in bytes.
const BoneFrameSize = 12

// Quantize converts one resampled pose into its packed form. Position
// components are truncated, not rounded; values beyond the 16-bit range
// are a precision ceiling of the format and are not checked.
func Quantize(ft FrameTransform) BoneFrame {
	rot := ft.Rotation
	if rot.W < 0 {
		rot = rot.Scale(-1)
	}

	return BoneFrame{
		Pos: [3]int16{
			int16(ft.Position.X()),
			int16(ft.Position.Y()),
			int16(ft.Position.Z()),
		},
		Rot: [3]int16{
			int16(rot.X() * math.MaxInt16),
			int16(rot.Y() * math.MaxInt16),
			int16(rot.Z() * math.MaxInt16),
		},
	}
}

// QuantizeFrames flattens a resampled pose array into the on-disk
// order: frame-major, bone-minor.
func QuantizeFrames(frames [][]FrameTransform) []BoneFrame {
	if len(frames) == 0 {
		return nil
	}
	out := make([]BoneFrame, 0, len(frames)*len(frames[0]))
	for _, frame := range frames {
		for _, pose := range frame {
			out = append(out, Quantize(pose))
		}
	}
	return out
}
