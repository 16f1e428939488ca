package math

import (
	"errors"
	"testing"
)

func wingPoints() []Vec3 {
	return []Vec3{
		NewVec3(-10, 0, 0),
		NewVec3(-5, 2, 0),
		NewVec3(0, 0, 0),
	}
}

func TestCatmullRomCurveRejectsSinglePoint(t *testing.T) {
	_, err := NewCatmullRomCurve([]Vec3{NewVec3Zero()})
	if !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestCatmullRomCurvePassesThroughPoints(t *testing.T) {
	for _, curveType := range []CurveType{CurveTypeCentripetal, CurveTypeChordal, CurveTypeUniform} {
		c, err := NewCatmullRomCurveWithType(wingPoints(), curveType, DefaultCurveTension)
		if err != nil {
			t.Fatal(err)
		}
		pts := wingPoints()
		for i, p := range pts {
			tt := float32(i) / float32(len(pts)-1)
			if got := c.Point(tt); !got.Compare(p, 1e-4) {
				t.Errorf("type %d: Point(%v) = %v, want %v", curveType, tt, got, p)
			}
		}
	}
}

func TestCatmullRomCurveArcLengthEnds(t *testing.T) {
	c, err := NewCatmullRomCurve(wingPoints())
	if err != nil {
		t.Fatal(err)
	}
	if got := c.PointAt(0); got != NewVec3(-10, 0, 0) {
		t.Errorf("PointAt(0) = %v", got)
	}
	if got := c.PointAt(1); !got.Compare(NewVec3(0, 0, 0), 1e-4) {
		t.Errorf("PointAt(1) = %v", got)
	}
	if c.UtoT(0) != 0 || c.UtoT(1) != 1 {
		t.Errorf("UtoT ends = %v, %v", c.UtoT(0), c.UtoT(1))
	}
}

func TestCatmullRomCurveUtoTMonotonic(t *testing.T) {
	c, err := NewCatmullRomCurve(wingPoints())
	if err != nil {
		t.Fatal(err)
	}
	prev := c.UtoT(0)
	for i := 1; i <= 100; i++ {
		cur := c.UtoT(float32(i) / 100)
		if cur < prev {
			t.Fatalf("UtoT not monotonic at %d", i)
		}
		prev = cur
	}
}

func TestCatmullRomCurveStraightLine(t *testing.T) {
	c, err := NewCatmullRomCurve([]Vec3{NewVec3(0, 0, 0), NewVec3(0, 0, 4)})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.PointAt(0.5); !got.Compare(NewVec3(0, 0, 2), 1e-3) {
		t.Errorf("PointAt(0.5) = %v", got)
	}
	if got := c.TangentAt(0.3); !got.Compare(NewVec3(0, 0, 1), 1e-4) {
		t.Errorf("TangentAt(0.3) = %v", got)
	}
	if l := c.Length(); kabs(l-4) > 1e-3 {
		t.Errorf("Length = %v", l)
	}
}

func TestCatmullRomCurveTangentIsUnit(t *testing.T) {
	c, err := NewCatmullRomCurve(wingPoints())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 10; i++ {
		tan := c.TangentAt(float32(i) / 10)
		if l := tan.Length(); kabs(l-1) > 1e-4 {
			t.Errorf("tangent %d has length %v", i, l)
		}
	}
	// symmetric wing peaks in the middle, so the tangent there is horizontal
	if tan := c.TangentAt(0.5); kabs(tan.Y) > 1e-2 || tan.X <= 0 {
		t.Errorf("mid tangent = %v", tan)
	}
}

func TestCatmullRomCurveCopiesInput(t *testing.T) {
	pts := wingPoints()
	c, err := NewCatmullRomCurve(pts)
	if err != nil {
		t.Fatal(err)
	}
	pts[0] = NewVec3(100, 100, 100)
	if got := c.ControlPoints()[0]; got != NewVec3(-10, 0, 0) {
		t.Fatalf("curve aliased its input: %v", got)
	}
}

func TestCatmullRomCurveCoincidentPoints(t *testing.T) {
	c, err := NewCatmullRomCurve([]Vec3{NewVec3(1, 1, 1), NewVec3(1, 1, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.PointAt(0.7); !got.Compare(NewVec3(1, 1, 1), 1e-6) {
		t.Fatalf("PointAt = %v", got)
	}
}

func TestCatmullRomCurvePoints(t *testing.T) {
	c, err := NewCatmullRomCurve(wingPoints())
	if err != nil {
		t.Fatal(err)
	}
	pts := c.Points(50)
	if len(pts) != 51 {
		t.Fatalf("expected 51 samples, got %d", len(pts))
	}
}

func TestGeometryExtents(t *testing.T) {
	verts := []Vertex3D{
		{Position: NewVec3(-1, 0, 2)},
		{Position: NewVec3(3, -2, 0)},
	}
	ext, center := GeometryExtents(verts)
	if ext.Min != NewVec3(-1, -2, 0) || ext.Max != NewVec3(3, 0, 2) {
		t.Fatalf("extents = %+v", ext)
	}
	if center != NewVec3(1, -1, 1) {
		t.Fatalf("center = %v", center)
	}
}
