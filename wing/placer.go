package wing

import (
	stdmath "math"

	"github.com/spaghettifunk/featherwing/engine/math"
)

const (
	// ArcExponent biases feather spacing; values above 1 crowd the root.
	ArcExponent = 1.1
	// FanExponent concentrates the outward fan near the wing tip.
	FanExponent float32 = 3.5
	// MaxFanAngleDeg is the fan rotation of the outermost feather.
	MaxFanAngleDeg float32 = -90

	alignEpsilon float32 = 1e-6
)

var (
	// ReferenceTangent is the tangent of the straight curve a feather is modelled on.
	ReferenceTangent = math.NewVec3(0, 0, 1)
	// ReferenceNormal is the surface normal of an unrotated feather.
	ReferenceNormal = math.NewVec3(0, 1, 0)
)

// Spline is the curve query surface the placer needs.
type Spline interface {
	PointAt(u float32) math.Vec3
	TangentAt(u float32) math.Vec3
}

// Placement is the full pose of one feather for one frame.
type Placement struct {
	// U is the arc-length fraction the feather sits at.
	U        float32
	Position math.Vec3
	Tangent  math.Vec3
	// Alignment turns ReferenceTangent towards Tangent. Aligned is false when
	// the two were parallel and Alignment is the identity.
	Alignment math.Quaternion
	Aligned   bool
	// FanAngle is in radians.
	FanAngle    float32
	Orientation math.Quaternion
}

// ArcParameter returns (f/(numFeathers-1))^ArcExponent. numFeathers must be at least 2.
func ArcParameter(f, numFeathers int) float32 {
	return float32(stdmath.Pow(float64(f)/float64(numFeathers-1), ArcExponent))
}

// AlignmentRotation rotates about ReferenceTangent x tangent by
// asin(|ReferenceTangent x tangent|). A tangent parallel to ReferenceTangent
// yields the identity and false.
func AlignmentRotation(tangent math.Vec3) (math.Quaternion, bool) {
	return math.NewQuatFromCross(ReferenceTangent, tangent, alignEpsilon)
}

// FanAngle returns the outward fan rotation in radians at arc fraction u.
func FanAngle(u float32) float32 {
	return math.PowerLerp(0, math.DegToRad(MaxFanAngleDeg), u, FanExponent)
}

// FanRotation rotates by FanAngle(u) about the feather normal after alignment.
func FanRotation(alignment math.Quaternion, u float32) math.Quaternion {
	normal := alignment.RotateVec3(ReferenceNormal)
	return math.NewQuatFromAxisAngle(normal, FanAngle(u), true)
}

// Place computes the pose of feather f out of numFeathers on spline.
func Place(spline Spline, f, numFeathers int) Placement {
	u := ArcParameter(f, numFeathers)
	tangent := spline.TangentAt(u)
	align, aligned := AlignmentRotation(tangent)
	fan := FanRotation(align, u)

	return Placement{
		U:           u,
		Position:    spline.PointAt(u),
		Tangent:     tangent,
		Alignment:   align,
		Aligned:     aligned,
		FanAngle:    FanAngle(u),
		Orientation: fan.Mul(align).Normalize(),
	}
}

// Apply overwrites the position and rotation of t. Scale is left untouched.
func (p Placement) Apply(t *math.Transform) {
	t.SetPositionRotation(p.Position, p.Orientation)
}
