// Package anim implements the animation pipeline: evaluating keyframe
// channels in continuous time, resampling them onto a fixed tick rate,
// and quantizing the result into the fixed-point clip format.
package anim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/halfgrid/bonepack/internal/scene"
)

// findKeySpan locates the key bracket surrounding the query time.
// keyTime reports the time of key i; keys are sorted ascending.
//
// The returned index is the first key of the bracket and factor is the
// interpolation weight toward index+1. When the query time lies past
// the last key, index == count and the caller clamps to the last key.
// A zero-length bracket yields factor 0 rather than dividing by zero.
func findKeySpan(count int, keyTime func(int) float64, at float64) (int, float64) {
	for i := 0; i < count; i++ {
		if keyTime(i) < at {
			continue
		}
		if i == 0 {
			return 0, 0
		}
		delta := keyTime(i) - keyTime(i-1)
		if delta == 0 {
			return i - 1, 0
		}
		return i - 1, (at - keyTime(i-1)) / delta
	}
	return count, 0
}

// EvaluateVector interpolates a position track at the given time.
// Queries before the first key or after the last clamp to the nearest
// key; an empty track evaluates to the zero vector.
func EvaluateVector(keys []scene.VectorKey, at float64) mgl32.Vec3 {
	if len(keys) == 0 {
		return mgl32.Vec3{}
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	start, factor := findKeySpan(len(keys), func(i int) float64 { return keys[i].Time }, at)
	if start == len(keys) {
		return keys[len(keys)-1].Value
	}

	from := keys[start].Value
	to := keys[start+1].Value
	return from.Add(to.Sub(from).Mul(float32(factor)))
}

// EvaluateQuat interpolates a rotation track at the given time. The
// blend is a component-wise lerp of the two bracket quaternions
// followed by renormalization. Existing content depends on this exact
// blend, so it is deliberately not a great-circle interpolation.
func EvaluateQuat(keys []scene.QuatKey, at float64) mgl32.Quat {
	if len(keys) == 0 {
		return mgl32.QuatIdent()
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	start, factor := findKeySpan(len(keys), func(i int) float64 { return keys[i].Time }, at)
	if start == len(keys) {
		return keys[len(keys)-1].Value
	}

	return mgl32.QuatNlerp(keys[start].Value, keys[start+1].Value, float32(factor))
}
