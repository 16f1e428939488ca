package wing

import (
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/math"
)

// fixedSpline answers every query with the same point and tangent.
type fixedSpline struct {
	point   math.Vec3
	tangent math.Vec3
}

func (s fixedSpline) PointAt(float32) math.Vec3   { return s.point }
func (s fixedSpline) TangentAt(float32) math.Vec3 { return s.tangent }

func TestArcParameterEndsAndMonotonic(t *testing.T) {
	for n := 2; n <= 64; n++ {
		if u := ArcParameter(0, n); u != 0 {
			t.Errorf("u(0,%d) = %v, want 0", n, u)
		}
		if u := ArcParameter(n-1, n); u != 1 {
			t.Errorf("u(%d,%d) = %v, want 1", n-1, n, u)
		}
		prev := ArcParameter(0, n)
		for f := 1; f < n; f++ {
			u := ArcParameter(f, n)
			if u <= prev {
				t.Fatalf("u not increasing at f=%d n=%d: %v <= %v", f, n, u, prev)
			}
			prev = u
		}
	}
}

func TestArcParameterCrowdsTheRoot(t *testing.T) {
	const n = 11
	if u := ArcParameter(5, n); u >= 0.5 {
		t.Errorf("Middle feather should sit before the arc midpoint, got u=%v", u)
	}
}

func TestAlignmentDegenerateTangent(t *testing.T) {
	for _, tangent := range []math.Vec3{ReferenceTangent, ReferenceTangent.MulScalar(-1)} {
		q, ok := AlignmentRotation(tangent)
		if ok {
			t.Errorf("Tangent %+v should not produce an alignment", tangent)
		}
		if q != math.NewQuatIdentity() {
			t.Errorf("Degenerate alignment should be identity, got %+v", q)
		}
	}

	p := Place(fixedSpline{tangent: ReferenceTangent}, 0, 5)
	if p.Aligned || p.Alignment != math.NewQuatIdentity() {
		t.Errorf("Placement on a straight curve should not align, got %+v", p.Alignment)
	}
}

func TestAlignmentCrossOrderIsPinned(t *testing.T) {
	// (0,0,1) x (1,0,0) = (0,1,0): a quarter turn about +Y.
	q, ok := AlignmentRotation(math.NewVec3(1, 0, 0))
	if !ok {
		t.Fatal("Expected an alignment rotation")
	}
	half := float32(stdmath.Sqrt2 / 2)
	want := math.Quaternion{X: 0, Y: half, Z: 0, W: half}
	if !q.Compare(want, tolerance) {
		t.Errorf("Alignment = %+v, want %+v", q, want)
	}
	if got := q.RotateVec3(ReferenceTangent); !nearVec(got, math.NewVec3(1, 0, 0)) {
		t.Errorf("Alignment should turn the reference tangent onto the tangent, got %+v", got)
	}

	// (0,0,1) x (0,1,0) = (-1,0,0).
	q, _ = AlignmentRotation(math.NewVec3(0, 1, 0))
	if q.X >= 0 || q.Y != 0 || q.Z != 0 {
		t.Errorf("Expected a rotation about -X, got %+v", q)
	}
}

func TestAlignmentAngleIsAsinOfCross(t *testing.T) {
	angle := float32(stdmath.Pi / 6)
	tangent := math.NewVec3(float32(stdmath.Sin(float64(angle))), 0, float32(stdmath.Cos(float64(angle))))
	q, ok := AlignmentRotation(tangent)
	if !ok {
		t.Fatal("Expected an alignment rotation")
	}
	if d := q.Angle() - angle; d > tolerance || d < -tolerance {
		t.Errorf("Alignment angle = %v, want %v", q.Angle(), angle)
	}
}

func TestFanAngle(t *testing.T) {
	if a := FanAngle(0); a != 0 {
		t.Errorf("FanAngle(0) = %v, want 0", a)
	}
	if a := FanAngle(1); a != math.DegToRad(-90) {
		t.Errorf("FanAngle(1) = %v, want %v", a, math.DegToRad(-90))
	}
	want := math.DegToRad(-90) * float32(stdmath.Pow(0.5, 3.5))
	if a := FanAngle(0.5); stdmath.Abs(float64(a-want)) > 1e-6 {
		t.Errorf("FanAngle(0.5) = %v, want %v", a, want)
	}
}

func TestPlaceComposesFanAfterAlignment(t *testing.T) {
	tangent := math.NewVec3(1, 0, 1).Normalize()
	spline := fixedSpline{point: math.NewVec3(1, 2, 3), tangent: tangent}
	p := Place(spline, 3, 5)

	normal := p.Alignment.RotateVec3(ReferenceNormal)
	if got := p.Orientation.RotateVec3(ReferenceNormal); !nearVec(got, normal) {
		t.Errorf("Fan turns about the aligned normal, so it must be fixed: got %+v want %+v", got, normal)
	}

	fan := math.NewQuatFromAxisAngle(normal, p.FanAngle, true)
	want := fan.RotateVec3(p.Alignment.RotateVec3(ReferenceTangent))
	if got := p.Orientation.RotateVec3(ReferenceTangent); !nearVec(got, want) {
		t.Errorf("Orientation should be alignment then fan: got %+v want %+v", got, want)
	}
	if p.Position != spline.point {
		t.Errorf("Position = %+v, want %+v", p.Position, spline.point)
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	spline, err := Interpolate(scenarioUp(), scenarioDown(), 0.37)
	if err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 7; f++ {
		a := Place(spline, f, 7)
		b := Place(spline, f, 7)
		if a != b {
			t.Errorf("Feather %d placed differently: %+v vs %+v", f, a, b)
		}
	}
}

func TestPlaceApplyOverwritesRotation(t *testing.T) {
	tr := math.TransformCreate()
	tr.SetRotation(math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), 1, true))
	tr.SetScale(math.NewVec3(2, 2, 2))

	p := Place(fixedSpline{point: math.NewVec3(4, 5, 6), tangent: math.NewVec3(0, 1, 0)}, 1, 2)
	p.Apply(tr)
	if tr.Rotation != p.Orientation || tr.Position != p.Position {
		t.Errorf("Apply should overwrite pose, got %+v", tr)
	}
	if tr.Scale != math.NewVec3(2, 2, 2) {
		t.Errorf("Apply should keep scale, got %+v", tr.Scale)
	}
}

func TestEndToEndScenario(t *testing.T) {
	up := scenarioUp()
	down := scenarioDown()
	const numFeathers = 5

	spline, err := Interpolate(up, down, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range up {
		if got := spline.Point(float32(i) / 2); !nearVec(got, p) {
			t.Errorf("Up pose curve misses control point %d: %+v vs %+v", i, got, p)
		}
	}

	first := Place(spline, 0, numFeathers)
	if first.U != 0 || !nearVec(first.Position, up[0]) {
		t.Errorf("Feather 0: u=%v pos=%+v, want u=0 at %+v", first.U, first.Position, up[0])
	}
	if first.FanAngle != 0 {
		t.Errorf("Feather 0 fan angle = %v, want 0", first.FanAngle)
	}

	last := Place(spline, numFeathers-1, numFeathers)
	if last.U != 1 || !nearVec(last.Position, up[2]) {
		t.Errorf("Feather 4: u=%v pos=%+v, want u=1 at %+v", last.U, last.Position, up[2])
	}
	if last.FanAngle != math.DegToRad(-90) {
		t.Errorf("Feather 4 fan angle = %v, want -90deg", last.FanAngle)
	}

	// The up pose bulges towards +Y, so the middle feather is lifted.
	mid := Place(spline, 2, numFeathers)
	if mid.Position.Y <= 0 {
		t.Errorf("Middle feather should be above the root line, got %+v", mid.Position)
	}
}
