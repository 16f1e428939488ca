// Package snapshot draws a scene on the CPU and encodes the result as PNG or
// WebP. It is the headless stand-in for an on-screen view: flat shaded
// triangles with a depth buffer, a stroked polyline for curves and a small
// text overlay.
package snapshot

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/spaghettifunk/featherwing/engine/core"
	"github.com/spaghettifunk/featherwing/engine/math"
	"github.com/spaghettifunk/featherwing/engine/renderer/components"
	"github.com/spaghettifunk/featherwing/engine/renderer/metadata"
	"github.com/spaghettifunk/featherwing/engine/scene"
)

const (
	DefaultLineSamples = 50
	// clip-space w below this is treated as behind the camera
	nearW float32 = 1e-5
)

type Options struct {
	Width  int
	Height int
	// Each output pixel averages Supersample x Supersample rendered ones.
	Supersample int
	// Light that reaches every surface regardless of orientation, in [0,1].
	Ambient     float32
	LineColour  color.RGBA
	LineWidth   float32
	LineSamples int
	TextColour  color.RGBA
}

func DefaultOptions() Options {
	return Options{
		Width:       640,
		Height:      360,
		Supersample: 2,
		Ambient:     0.25,
		LineColour:  color.RGBA{R: 0xff, A: 0xff},
		LineWidth:   1.5,
		LineSamples: DefaultLineSamples,
		TextColour:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: snapshot size %dx%d", core.ErrInvalidConfig, o.Width, o.Height)
	}
	if o.Supersample < 1 || o.Supersample > 8 {
		return fmt.Errorf("%w: snapshot supersample %d not in [1,8]", core.ErrInvalidConfig, o.Supersample)
	}
	if o.Ambient < 0 || o.Ambient > 1 {
		return fmt.Errorf("%w: snapshot ambient %v not in [0,1]", core.ErrInvalidConfig, o.Ambient)
	}
	return nil
}

// Curve is anything that can be sampled into a polyline.
type Curve interface {
	Points(divisions int) []math.Vec3
}

// Frame is everything one snapshot shows.
type Frame struct {
	Scene  *scene.Scene
	Camera *components.Camera
	// Optional polyline drawn over the shaded geometry.
	Curve Curve
	// Optional text lines in the top left corner.
	Caption []string
}

type Renderer struct {
	opts Options
	fb   *FrameBuffer
	// Triangles rasterised by the last Render call.
	LastTriangleCount int
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.LineSamples <= 0 {
		opts.LineSamples = DefaultLineSamples
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		opts: opts,
		fb:   NewFrameBuffer(opts.Width*opts.Supersample, opts.Height*opts.Supersample),
	}, nil
}

func (r *Renderer) Options() Options {
	return r.opts
}

// Resize changes the output size. Non-positive sizes are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.opts.Width, r.opts.Height = width, height
	r.fb = NewFrameBuffer(width*r.opts.Supersample, height*r.opts.Supersample)
}

// Render draws f and returns a freshly allocated image of the output size.
func (r *Renderer) Render(f Frame) *image.RGBA {
	r.LastTriangleCount = 0
	bg := math.NewVec4(0, 0, 0, 1)
	if f.Scene != nil {
		bg = f.Scene.Background
	}
	r.fb.Clear(bg)

	if f.Camera == nil {
		f.Camera = components.NewCamera()
	}
	viewProj := f.Camera.ViewProjection()

	if f.Scene != nil {
		f.Scene.Each(func(n *scene.Node) bool {
			if n.Visible && n.Geometry != nil {
				r.drawNode(n, viewProj, f.Scene.Light)
			}
			return true
		})
	}

	src := r.fb.Image()
	if f.Curve != nil {
		r.strokeCurve(src, f.Curve, viewProj)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	if r.opts.Supersample == 1 {
		copy(out.Pix, src.Pix)
	} else {
		draw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	if len(f.Caption) > 0 {
		r.drawCaption(out, f.Caption)
	}
	return out
}

type screenVertex struct {
	x, y, z float32
}

// project maps a world-space point to screen pixels. ok is false behind the camera.
func (r *Renderer) project(p math.Vec3, m math.Mat4) (screenVertex, bool) {
	clip := p.ToVec4(1).Transform(m)
	if clip.W <= nearW {
		return screenVertex{}, false
	}
	inv := 1 / clip.W
	nx, ny, nz := clip.X*inv, clip.Y*inv, clip.Z*inv
	return screenVertex{
		x: (nx*0.5 + 0.5) * float32(r.fb.Width),
		y: (1 - (ny*0.5 + 0.5)) * float32(r.fb.Height),
		z: nz,
	}, true
}

func (r *Renderer) drawNode(n *scene.Node, viewProj math.Mat4, light *metadata.DirectionalLight) {
	g := n.Geometry
	world := n.Transform.GetWorld()
	mvp := world.Mul(viewProj)

	material := g.Material
	if material == nil {
		material = metadata.DefaultMaterial()
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if i0 >= len(g.Vertices) || i1 >= len(g.Vertices) || i2 >= len(g.Vertices) {
			continue
		}
		p0, p1, p2 := g.Vertices[i0].Position, g.Vertices[i1].Position, g.Vertices[i2].Position

		s0, ok0 := r.project(p0, mvp)
		s1, ok1 := r.project(p1, mvp)
		s2, ok2 := r.project(p2, mvp)
		// Trivial clip: drop triangles touching the space behind the camera.
		if !ok0 || !ok1 || !ok2 {
			continue
		}

		// front faces are counter-clockwise in NDC, negative area once y points down
		area := (s1.x-s0.x)*(s2.y-s0.y) - (s1.y-s0.y)*(s2.x-s0.x)
		if area == 0 || (!material.DoubleSided && area > 0) {
			continue
		}

		w0, w1, w2 := p0.Transform(world), p1.Transform(world), p2.Transform(world)
		normal := w1.Sub(w0).Cross(w2.Sub(w0)).Normalize()
		c := r.shade(material, light, normal)

		r.fillTriangle(s0, s1, s2, area, c)
		r.LastTriangleCount++
	}
}

// shade computes the flat colour of a face with the given world normal.
func (r *Renderer) shade(m *metadata.Material, light *metadata.DirectionalLight, normal math.Vec3) [3]uint8 {
	base := m.DiffuseColour
	if m.Shading == metadata.ShadingUnlit || light == nil {
		return [3]uint8{toByte(base.X), toByte(base.Y), toByte(base.Z)}
	}

	toLight := light.Direction().MulScalar(-1)
	d := normal.Dot(toLight)
	if m.DoubleSided && d < 0 {
		d = -d
	}
	if d < 0 {
		d = 0
	}
	direct := d * light.Intensity
	amb := r.opts.Ambient
	return [3]uint8{
		toByte(base.X * (amb + direct*light.Colour.X)),
		toByte(base.Y * (amb + direct*light.Colour.Y)),
		toByte(base.Z * (amb + direct*light.Colour.Z)),
	}
}

func edge(a, b screenVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// fillTriangle rasterises with edge functions evaluated at pixel centres.
func (r *Renderer) fillTriangle(s0, s1, s2 screenVertex, area float32, c [3]uint8) {
	w, h := float32(r.fb.Width-1), float32(r.fb.Height-1)
	minX := int(math.Clamp(min(s0.x, s1.x, s2.x), 0, w))
	maxX := int(math.Clamp(max(s0.x, s1.x, s2.x)+1, 0, w))
	minY := int(math.Clamp(min(s0.y, s1.y, s2.y), 0, h))
	maxY := int(math.Clamp(max(s0.y, s1.y, s2.y)+1, 0, h))

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			b0 := edge(s1, s2, px, py) * inv
			b1 := edge(s2, s0, px, py) * inv
			b2 := edge(s0, s1, px, py) * inv
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			z := b0*s0.z + b1*s1.z + b2*s2.z
			if z < -1 || z > 1 {
				continue
			}
			r.fb.set(x, y, z, c)
		}
	}
}

// strokeCurve draws the sampled curve as a chain of thin quads.
func (r *Renderer) strokeCurve(dst *image.RGBA, curve Curve, viewProj math.Mat4) {
	points := curve.Points(r.opts.LineSamples)
	half := r.opts.LineWidth * float32(r.opts.Supersample) * 0.5
	if half <= 0 {
		half = 0.5
	}

	z := vector.NewRasterizer(r.fb.Width, r.fb.Height)
	z.DrawOp = draw.Over
	segments := 0
	for i := 0; i+1 < len(points); i++ {
		a, okA := r.project(points[i], viewProj)
		b, okB := r.project(points[i+1], viewProj)
		if !okA || !okB {
			continue
		}
		dx, dy := b.x-a.x, b.y-a.y
		length := math.NewVec3(dx, dy, 0).Length()
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		z.MoveTo(a.x+nx, a.y+ny)
		z.LineTo(b.x+nx, b.y+ny)
		z.LineTo(b.x-nx, b.y-ny)
		z.LineTo(a.x-nx, a.y-ny)
		z.ClosePath()
		segments++
	}
	if segments == 0 {
		return
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(r.opts.LineColour), image.Point{})
}

func (r *Renderer) drawCaption(dst *image.RGBA, lines []string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.opts.TextColour),
		Face: face,
	}
	lineHeight := face.Metrics().Height
	dot := fixed.Point26_6{X: fixed.I(4), Y: face.Metrics().Ascent + fixed.I(4)}
	for _, line := range lines {
		d.Dot = dot
		d.DrawString(line)
		dot.Y += lineHeight
	}
}
