package math

import (
	"errors"
	"sort"
)

// ErrTooFewPoints is returned when a curve is built from fewer than two points.
var ErrTooFewPoints = errors.New("a curve needs at least two points")

// CurveType selects how a CatmullRomCurve spaces its knots.
type CurveType uint8

const (
	// CurveTypeCentripetal spaces knots by the square root of the chord length.
	// It never produces cusps or self-intersections within a segment.
	CurveTypeCentripetal CurveType = iota
	// CurveTypeChordal spaces knots by the chord length.
	CurveTypeChordal
	// CurveTypeUniform is the classic uniform Catmull-Rom with a tension factor.
	CurveTypeUniform
)

const (
	// DefaultArcLengthDivisions is the number of samples used to build the
	// arc-length lookup table.
	DefaultArcLengthDivisions = 200
	// DefaultCurveTension is used by CurveTypeUniform.
	DefaultCurveTension float32 = 0.5

	knotEpsilon     float32 = 1e-4
	tangentDelta    float32 = 1e-4
	minSplinePoints         = 2
)

// cubicPoly holds c0 + c1*t + c2*t^2 + c3*t^3 for a single component.
type cubicPoly struct {
	c0, c1, c2, c3 float32
}

func newCubicPoly(x0, x1, t0, t1 float32) cubicPoly {
	return cubicPoly{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func newUniformPoly(x0, x1, x2, x3, tension float32) cubicPoly {
	return newCubicPoly(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

func newNonUniformPoly(x0, x1, x2, x3, dt0, dt1, dt2 float32) cubicPoly {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2

	// rescale tangents for parametrization in [0,1]
	t1 *= dt1
	t2 *= dt1

	return newCubicPoly(x1, x2, t1, t2)
}

func (p cubicPoly) value(t float32) float32 {
	t2 := t * t
	return p.c0 + p.c1*t + p.c2*t2 + p.c3*t2*t
}

func (p cubicPoly) derivative(t float32) float32 {
	return p.c1 + 2*p.c2*t + 3*p.c3*t*t
}

// CatmullRomCurve is an open Catmull-Rom spline through a fixed set of points.
// The curve owns a private copy of its points. Queries come in two flavours:
// Point/Tangent take the raw curve parameter t, PointAt/TangentAt take a
// fraction of the total arc length.
type CatmullRomCurve struct {
	points     []Vec3
	curveType  CurveType
	tension    float32
	arcLengths []float32
}

// NewCatmullRomCurve builds a centripetal curve through points. At least two
// points are required.
func NewCatmullRomCurve(points []Vec3) (*CatmullRomCurve, error) {
	return NewCatmullRomCurveWithType(points, CurveTypeCentripetal, DefaultCurveTension)
}

// NewCatmullRomCurveWithType builds a curve with an explicit knot spacing.
// tension only applies to CurveTypeUniform.
func NewCatmullRomCurveWithType(points []Vec3, curveType CurveType, tension float32) (*CatmullRomCurve, error) {
	if len(points) < minSplinePoints {
		return nil, ErrTooFewPoints
	}
	c := &CatmullRomCurve{
		points:    make([]Vec3, len(points)),
		curveType: curveType,
		tension:   tension,
	}
	copy(c.points, points)
	c.arcLengths = c.computeLengths(DefaultArcLengthDivisions)
	return c, nil
}

// ControlPoints returns a copy of the points the curve passes through.
func (c *CatmullRomCurve) ControlPoints() []Vec3 {
	out := make([]Vec3, len(c.points))
	copy(out, c.points)
	return out
}

// Length returns the approximated total arc length.
func (c *CatmullRomCurve) Length() float32 {
	return c.arcLengths[len(c.arcLengths)-1]
}

// segment resolves the raw parameter t into the four polynomials of the
// segment it falls in and the local weight within that segment.
func (c *CatmullRomCurve) segment(t float32) (px, py, pz cubicPoly, weight float32) {
	l := len(c.points)
	t = Clamp(t, 0, 1)

	p := float32(l-1) * t
	intPoint := int(p)
	weight = p - float32(intPoint)

	if intPoint >= l-1 {
		intPoint = l - 2
		weight = 1
	}

	var p0, p3 Vec3
	if intPoint > 0 {
		p0 = c.points[intPoint-1]
	} else {
		// extrapolate a virtual first point
		p0 = c.points[0].MulScalar(2).Sub(c.points[1])
	}
	p1 := c.points[intPoint]
	p2 := c.points[intPoint+1]
	if intPoint+2 < l {
		p3 = c.points[intPoint+2]
	} else {
		// extrapolate a virtual last point
		p3 = c.points[l-1].MulScalar(2).Sub(c.points[l-2])
	}

	switch c.curveType {
	case CurveTypeCentripetal, CurveTypeChordal:
		pow := float32(0.25)
		if c.curveType == CurveTypeChordal {
			pow = 0.5
		}
		dt0 := kpow(p0.DistanceSquared(p1), pow)
		dt1 := kpow(p1.DistanceSquared(p2), pow)
		dt2 := kpow(p2.DistanceSquared(p3), pow)

		// safety check for repeated points
		if dt1 < knotEpsilon {
			dt1 = 1.0
		}
		if dt0 < knotEpsilon {
			dt0 = dt1
		}
		if dt2 < knotEpsilon {
			dt2 = dt1
		}

		px = newNonUniformPoly(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2)
		py = newNonUniformPoly(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2)
		pz = newNonUniformPoly(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2)
	default:
		px = newUniformPoly(p0.X, p1.X, p2.X, p3.X, c.tension)
		py = newUniformPoly(p0.Y, p1.Y, p2.Y, p3.Y, c.tension)
		pz = newUniformPoly(p0.Z, p1.Z, p2.Z, p3.Z, c.tension)
	}
	return px, py, pz, weight
}

// Point returns the curve position at raw parameter t in [0,1].
func (c *CatmullRomCurve) Point(t float32) Vec3 {
	px, py, pz, w := c.segment(t)
	return Vec3{px.value(w), py.value(w), pz.value(w)}
}

// Tangent returns the unit direction of the curve at raw parameter t.
func (c *CatmullRomCurve) Tangent(t float32) Vec3 {
	px, py, pz, w := c.segment(t)
	d := Vec3{px.derivative(w), py.derivative(w), pz.derivative(w)}
	if d.LengthSquared() > K_FLOAT_EPSILON {
		return d.Normalize()
	}

	// stationary point, fall back to a finite difference
	t1 := Clamp(t-tangentDelta, 0, 1)
	t2 := Clamp(t+tangentDelta, 0, 1)
	return c.Point(t2).Sub(c.Point(t1)).Normalize()
}

// PointAt returns the position at arc-length fraction u in [0,1].
func (c *CatmullRomCurve) PointAt(u float32) Vec3 {
	return c.Point(c.UtoT(u))
}

// TangentAt returns the unit tangent at arc-length fraction u in [0,1].
func (c *CatmullRomCurve) TangentAt(u float32) Vec3 {
	return c.Tangent(c.UtoT(u))
}

// Points samples the curve at divisions+1 evenly spaced raw parameters.
func (c *CatmullRomCurve) Points(divisions int) []Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]Vec3, divisions+1)
	for i := 0; i <= divisions; i++ {
		out[i] = c.Point(float32(i) / float32(divisions))
	}
	return out
}

func (c *CatmullRomCurve) computeLengths(divisions int) []float32 {
	lengths := make([]float32, divisions+1)
	last := c.Point(0)
	sum := float32(0)
	for p := 1; p <= divisions; p++ {
		current := c.Point(float32(p) / float32(divisions))
		sum += current.Distance(last)
		lengths[p] = sum
		last = current
	}
	return lengths
}

// UtoT maps an arc-length fraction u onto the raw curve parameter t using
// the precomputed arc-length table.
func (c *CatmullRomCurve) UtoT(u float32) float32 {
	u = Clamp(u, 0, 1)
	il := len(c.arcLengths)
	total := c.arcLengths[il-1]
	if total == 0 {
		return u
	}
	target := u * total

	// largest i with arcLengths[i] <= target
	i := sort.Search(il, func(k int) bool { return c.arcLengths[k] > target }) - 1
	if i < 0 {
		i = 0
	}
	if c.arcLengths[i] == target || i >= il-1 {
		return float32(i) / float32(il-1)
	}

	before := c.arcLengths[i]
	segmentLength := c.arcLengths[i+1] - before
	fraction := (target - before) / segmentLength
	return (float32(i) + fraction) / float32(il-1)
}
