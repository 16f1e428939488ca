package metadata

import (
	stdmath "math"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/math"
)

func near(a, b float32) bool {
	return stdmath.Abs(float64(a-b)) < 1e-3
}

func TestDirectionalLightHSL(t *testing.T) {
	l := NewDirectionalLightHSL(0.1, 1, 0.95, 1, math.NewVec3(10, 30, 20), math.Vec3{})
	if !near(l.Colour.X, 1) || !near(l.Colour.Y, 0.96) || !near(l.Colour.Z, 0.9) {
		t.Errorf("Unexpected warm white colour %+v", l.Colour)
	}
	d := l.Direction()
	if !near(d.Length(), 1) {
		t.Errorf("Expected unit direction, got length %v", d.Length())
	}
	if d.Y >= 0 {
		t.Errorf("Light above the origin should point down, got %+v", d)
	}
}

func TestGeometryFromConfigCopies(t *testing.T) {
	cfg := &GeometryConfig{
		Name:     "tri",
		Vertices: []math.Vertex3D{{Position: math.NewVec3(0, 0, 0)}, {Position: math.NewVec3(1, 0, 0)}, {Position: math.NewVec3(0, 1, 0)}},
		Indices:  []uint32{0, 1, 2},
	}
	g := NewGeometryFromConfig(7, cfg, DefaultMaterial())
	cfg.Vertices[0].Position.X = 42
	if g.Vertices[0].Position.X != 0 {
		t.Error("Geometry should own its vertex data")
	}
	if g.TriangleCount() != 1 || g.ID != 7 {
		t.Errorf("Unexpected geometry %+v", g)
	}
	if !g.Material.DoubleSided || g.Material.Shading != ShadingLambert {
		t.Errorf("Default material should be double-sided Lambert, got %+v", g.Material)
	}
}
