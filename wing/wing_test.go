package wing

import (
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/math"
)

const tolerance = 1e-4

func scenarioUp() ControlPointSet {
	return ControlPointSet{math.NewVec3(-10, 0, 0), math.NewVec3(-5, 2, 0), math.NewVec3(0, 0, 0)}
}

func scenarioDown() ControlPointSet {
	return ControlPointSet{math.NewVec3(-10, 0, 0), math.NewVec3(-5, -2, 0), math.NewVec3(0, 0, 0)}
}

func nearVec(a, b math.Vec3) bool {
	return a.Compare(b, tolerance)
}

func TestBlendBoundariesAreExact(t *testing.T) {
	up := ControlPointSet{math.NewVec3(1.1, -2.7, 3.3), math.NewVec3(0.1, 0.2, 0.3)}
	down := ControlPointSet{math.NewVec3(-4.4, 5.5, 6.6), math.NewVec3(7, 8, 9)}

	atZero := Blend(up, down, 0)
	atOne := Blend(up, down, 1)
	for i := range up {
		if atZero[i] != down[i] {
			t.Errorf("phase 0 point %d = %+v, want down %+v", i, atZero[i], down[i])
		}
		if atOne[i] != up[i] {
			t.Errorf("phase 1 point %d = %+v, want up %+v", i, atOne[i], up[i])
		}
	}
}

func TestBlendStaysOnSegment(t *testing.T) {
	up := scenarioUp()
	down := scenarioDown()
	between := func(v, a, b float32) bool {
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		return v >= lo-1e-6 && v <= hi+1e-6
	}
	for step := 0; step <= 20; step++ {
		phase := float32(step) / 20
		blended := Blend(up, down, phase)
		for i, p := range blended {
			if !between(p.X, up[i].X, down[i].X) || !between(p.Y, up[i].Y, down[i].Y) || !between(p.Z, up[i].Z, down[i].Z) {
				t.Errorf("phase %v point %d = %+v is outside [%+v, %+v]", phase, i, p, down[i], up[i])
			}
		}
	}
}

func TestBlendDoesNotAlias(t *testing.T) {
	up := scenarioUp()
	down := scenarioDown()
	blended := Blend(up, down, 0)
	blended[1].Y = 100
	if down[1].Y != -2 || up[1].Y != 2 {
		t.Error("Blend output must not alias its inputs")
	}
	again := Blend(up, down, 0)
	if &again[0] == &blended[0] {
		t.Error("Blend must allocate a fresh slice on every call")
	}
}

func TestInterpolatePassesThroughPoses(t *testing.T) {
	up := scenarioUp()
	down := scenarioDown()

	for _, tc := range []struct {
		phase float32
		want  ControlPointSet
	}{
		{0, down},
		{1, up},
	} {
		spline, err := Interpolate(up, down, tc.phase)
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		for i, p := range tc.want {
			got := spline.Point(float32(i) / float32(len(tc.want)-1))
			if !nearVec(got, p) {
				t.Errorf("phase %v: curve point %d = %+v, want %+v", tc.phase, i, got, p)
			}
		}
	}
}

func TestInterpolateRejectsTooFewPoints(t *testing.T) {
	if _, err := Interpolate(ControlPointSet{math.NewVec3(0, 0, 0)}, ControlPointSet{math.NewVec3(1, 0, 0)}, 0.5); err == nil {
		t.Error("Expected an error for a single control point")
	}
}

func TestPhase(t *testing.T) {
	const period = 1000.0
	cases := []struct {
		elapsed float64
		want    float32
	}{
		{0, 0},
		{period / 4, 0.5},
		{period / 2, 1},
		{3 * period / 4, 0.5},
		{period, 0},
		{5 * period / 2, 1},
		{-period / 4, 0.5},
		{-period / 2, 1},
	}
	for _, tc := range cases {
		if got := Phase(tc.elapsed, period); stdmath.Abs(float64(got-tc.want)) > 1e-6 {
			t.Errorf("Phase(%v) = %v, want %v", tc.elapsed, got, tc.want)
		}
	}
}

func TestPhaseIsContinuousAcrossWrap(t *testing.T) {
	const period = 2000.0
	prev := Phase(0, period)
	for ms := 1.0; ms <= 3*period; ms++ {
		cur := Phase(ms, period)
		if cur < 0 || cur > 1 {
			t.Fatalf("Phase(%v) = %v out of [0,1]", ms, cur)
		}
		if stdmath.Abs(float64(cur-prev)) > 0.01 {
			t.Fatalf("Phase jumps from %v to %v at %vms", prev, cur, ms)
		}
		prev = cur
	}
}
