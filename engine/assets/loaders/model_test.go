package loaders

import (
	"strings"
	"testing"

	"github.com/spaghettifunk/featherwing/engine/math"
)

const quadWithNormals = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl feather
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuadIsFanTriangulated(t *testing.T) {
	configs, err := ParseOBJ(strings.NewReader(quadWithNormals), "quad")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("Expected 1 geometry, got %d", len(configs))
	}
	g := configs[0]
	if g.Name != "quad" || g.MaterialName != "feather" {
		t.Errorf("Unexpected name/material %q/%q", g.Name, g.MaterialName)
	}
	if len(g.Indices) != 6 {
		t.Fatalf("Expected 2 triangles, got %d indices", len(g.Indices))
	}
	if len(g.Vertices) != 4 {
		t.Errorf("Shared corners should be deduplicated, got %d vertices", len(g.Vertices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i := range want {
		if g.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", g.Indices, want)
		}
	}
	if g.Vertices[2].Texcoord != math.NewVec2(1, 1) {
		t.Errorf("Unexpected texcoord %+v", g.Vertices[2].Texcoord)
	}
	if g.MinExtents != math.NewVec3(0, 0, 0) || g.MaxExtents != math.NewVec3(1, 1, 0) || g.Center != math.NewVec3(0.5, 0.5, 0) {
		t.Errorf("Unexpected extents %+v %+v %+v", g.MinExtents, g.MaxExtents, g.Center)
	}
}

func TestParseOBJNegativeIndicesAndGeneratedNormals(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 0 1
f -3 -1 -2
`
	configs, err := ParseOBJ(strings.NewReader(src), "tri")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	g := configs[0]
	if g.Name != "tri_0" {
		t.Errorf("Unnamed geometry should be numbered, got %q", g.Name)
	}
	if len(g.Vertices) != 3 || len(g.Indices) != 3 {
		t.Fatalf("Unexpected sizes %d/%d", len(g.Vertices), len(g.Indices))
	}
	if g.Vertices[1].Position != math.NewVec3(0, 0, 1) {
		t.Errorf("-1 should resolve to the last vertex, got %+v", g.Vertices[1].Position)
	}
	// (0,0,1) x (1,0,0) = (0,1,0)
	for i, v := range g.Vertices {
		if !v.Normal.Compare(math.NewVec3(0, 1, 0), 1e-6) {
			t.Errorf("Vertex %d normal = %+v, want +Y", i, v.Normal)
		}
	}
}

func TestParseOBJMultipleObjects(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
o first
f 1 2 3
o second
f 1 3 2
`
	configs, err := ParseOBJ(strings.NewReader(src), "pair")
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(configs) != 2 || configs[0].Name != "first" || configs[1].Name != "second" {
		t.Fatalf("Expected geometries first and second, got %d", len(configs))
	}
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"index out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":         "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"short face":         "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":          "v 0 zero 0\n",
		"no faces":           "v 0 0 0\n",
	}
	for name, src := range cases {
		if _, err := ParseOBJ(strings.NewReader(src), name); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
