package snapshot

import (
	"image"
	stdmath "math"

	"github.com/spaghettifunk/featherwing/engine/math"
)

// FrameBuffer holds the render target as flat slices.
type FrameBuffer struct {
	Width  int
	Height int
	// RGBA interleaved, opaque, len = W*H*4
	Colour []uint8
	// NDC depth per pixel, smaller is closer, len = W*H
	Depth []float32
}

func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Colour: make([]uint8, w*h*4),
		Depth:  make([]float32, w*h),
	}
}

// Clear fills the colour buffer with bg and resets the depth buffer.
func (fb *FrameBuffer) Clear(bg math.Vec4) {
	r, g, b := toByte(bg.X), toByte(bg.Y), toByte(bg.Z)
	for i := 0; i < len(fb.Colour); i += 4 {
		fb.Colour[i] = r
		fb.Colour[i+1] = g
		fb.Colour[i+2] = b
		fb.Colour[i+3] = 0xff
	}
	inf := float32(stdmath.Inf(1))
	for i := range fb.Depth {
		fb.Depth[i] = inf
	}
}

func (fb *FrameBuffer) set(x, y int, z float32, c [3]uint8) {
	idx := y*fb.Width + x
	if z >= fb.Depth[idx] {
		return
	}
	fb.Depth[idx] = z
	p := idx * 4
	fb.Colour[p] = c[0]
	fb.Colour[p+1] = c[1]
	fb.Colour[p+2] = c[2]
}

// Image wraps the colour buffer without copying. Every pixel is opaque so
// the premultiplied and straight forms agree.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Colour,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

func toByte(v float32) uint8 {
	v = math.Clamp(v, 0, 1)
	return uint8(v*255 + 0.5)
}
