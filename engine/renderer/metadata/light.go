package metadata

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spaghettifunk/featherwing/engine/math"
)

/**
 * @brief A light infinitely far away shining from Position towards Target.
 */
type DirectionalLight struct {
	Colour    math.Vec4
	Intensity float32
	Position  math.Vec3
	Target    math.Vec3
}

// NewDirectionalLightHSL builds a light whose colour is given as hue, saturation
// and lightness, all in [0,1].
func NewDirectionalLightHSL(h, s, l, intensity float32, position, target math.Vec3) *DirectionalLight {
	c := colorful.Hsl(float64(h)*360, float64(s), float64(l)).Clamped()
	return &DirectionalLight{
		Colour:    math.NewVec4(float32(c.R), float32(c.G), float32(c.B), 1),
		Intensity: intensity,
		Position:  position,
		Target:    target,
	}
}

// Direction is the unit vector the light travels along.
func (l *DirectionalLight) Direction() math.Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}
