package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ files into geometry configs, one per
// object or group.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	configs, err := ParseOBJ(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMesh,
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(configs)),
		Data:     configs,
	}, nil
}

func (ml *ModelLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return fmt.Errorf("model loader: nil resource")
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}

// faceVert holds zero based indices into the position, texcoord and normal
// pools. -1 marks an absent component.
type faceVert struct {
	pos, tex, norm int
}

type objGeometry struct {
	name     string
	material string
	faces    [][]faceVert
}

type objState struct {
	positions []math.Vec3
	texcoords []math.Vec2
	normals   []math.Vec3

	geometries []*objGeometry
	current    *objGeometry
	material   string
}

func (s *objState) geometry() *objGeometry {
	if s.current == nil {
		s.startGeometry("")
	}
	return s.current
}

func (s *objState) startGeometry(name string) {
	// reuse an object header that has no faces yet
	if s.current != nil && len(s.current.faces) == 0 {
		if name != "" {
			s.current.name = name
		}
		return
	}
	s.current = &objGeometry{name: name, material: s.material}
	s.geometries = append(s.geometries, s.current)
}

// ParseOBJ decodes triangles, quads and larger convex polygons. Polygons are
// fan triangulated. Missing normals are generated per face.
func ParseOBJ(r io.Reader, name string) ([]*metadata.GeometryConfig, error) {
	state := &objState{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		ident, vals := fields[0], fields[1:]

		switch ident {
		case "v", "vn":
			v, err := parseVec3(vals)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if ident == "v" {
				state.positions = append(state.positions, v)
			} else {
				state.normals = append(state.normals, v)
			}
		case "vt":
			if len(vals) < 2 {
				return nil, fmt.Errorf("line %d: vt needs 2 components", lineNo)
			}
			u, err := strconv.ParseFloat(vals[0], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			v, err := strconv.ParseFloat(vals[1], 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			state.texcoords = append(state.texcoords, math.NewVec2(float32(u), float32(v)))
		case "f":
			if len(vals) < 3 {
				return nil, fmt.Errorf("line %d: a face needs at least 3 vertices", lineNo)
			}
			face := make([]faceVert, len(vals))
			for i, s := range vals {
				fv, err := state.parseFaceVert(s)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face[i] = fv
			}
			g := state.geometry()
			g.faces = append(g.faces, face)
		case "o", "g":
			state.startGeometry(strings.Join(vals, " "))
		case "usemtl":
			state.material = strings.Join(vals, " ")
			if state.current != nil && len(state.current.faces) > 0 && state.current.material != state.material {
				state.startGeometry(state.current.name)
			}
			state.geometry().material = state.material
		case "mtllib", "s":
			// material libraries and smoothing groups are not used
		default:
			core.LogDebug("obj: '%s' not parsed", ident)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var configs []*metadata.GeometryConfig
	for i, g := range state.geometries {
		if len(g.faces) == 0 {
			continue
		}
		gname := g.name
		if gname == "" {
			gname = fmt.Sprintf("%s_%d", name, i)
		}
		configs = append(configs, state.build(gname, g))
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return configs, nil
}

func parseVec3(vals []string) (math.Vec3, error) {
	if len(vals) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(vals))
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(vals[i], 32)
		if err != nil {
			return math.Vec3{}, err
		}
		out[i] = float32(f)
	}
	return math.NewVec3(out[0], out[1], out[2]), nil
}

// resolveIndex turns a one based, possibly negative OBJ index into a zero
// based one.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d available)", i, count)
	}
}

func (s *objState) parseFaceVert(token string) (faceVert, error) {
	parts := strings.Split(token, "/")
	fv := faceVert{tex: -1, norm: -1}
	var err error
	if fv.pos, err = resolveIndex(parts[0], len(s.positions)); err != nil {
		return fv, err
	}
	if fv.pos < 0 {
		return fv, fmt.Errorf("face vertex '%s' has no position", token)
	}
	if len(parts) > 1 {
		if fv.tex, err = resolveIndex(parts[1], len(s.texcoords)); err != nil {
			return fv, err
		}
	}
	if len(parts) > 2 {
		if fv.norm, err = resolveIndex(parts[2], len(s.normals)); err != nil {
			return fv, err
		}
	}
	return fv, nil
}

func (s *objState) build(name string, g *objGeometry) *metadata.GeometryConfig {
	hasNormals := true
	for _, face := range g.faces {
		for _, fv := range face {
			if fv.norm < 0 {
				hasNormals = false
			}
		}
	}

	cfg := &metadata.GeometryConfig{Name: name, MaterialName: g.material}
	lookup := make(map[faceVert]uint32)
	emit := func(fv faceVert) uint32 {
		if hasNormals {
			if idx, ok := lookup[fv]; ok {
				return idx
			}
		}
		v := math.Vertex3D{Position: s.positions[fv.pos]}
		if fv.tex >= 0 {
			v.Texcoord = s.texcoords[fv.tex]
		}
		if fv.norm >= 0 {
			v.Normal = s.normals[fv.norm]
		}
		idx := uint32(len(cfg.Vertices))
		cfg.Vertices = append(cfg.Vertices, v)
		if hasNormals {
			lookup[fv] = idx
		}
		return idx
	}

	for _, face := range g.faces {
		for i := 1; i+1 < len(face); i++ {
			cfg.Indices = append(cfg.Indices, emit(face[0]), emit(face[i]), emit(face[i+1]))
		}
	}
	if !hasNormals {
		math.GeometryGenerateNormals(cfg.Vertices, cfg.Indices)
	}

	ext, center := math.GeometryExtents(cfg.Vertices)
	cfg.MinExtents = ext.Min
	cfg.MaxExtents = ext.Max
	cfg.Center = center
	return cfg
}
