package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp blends a towards b by t. It is written as a*(1-t) + b*t so that
// t == 0 yields exactly a and t == 1 yields exactly b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a*(1-t) + b*t
}

// PowerLerp is Lerp with t raised to exp first, which concentrates the
// change near t == 1 for exp > 1.
func PowerLerp(a, b, t, exp float32) float32 {
	return Lerp(a, b, kpow(t, exp))
}

// LerpVec3 blends each component of a towards b independently.
func LerpVec3(a, b Vec3, t float32) Vec3 {
	return Vec3{
		Lerp(a.X, b.X, t),
		Lerp(a.Y, b.Y, t),
		Lerp(a.Z, b.Z, t),
	}
}
