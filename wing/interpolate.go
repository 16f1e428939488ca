package wing

import (
	"github.com/spaghettifunk/featherwing/engine/math"
)

// Blend returns a new point set where point i is down[i] at phase 0 and
// up[i] at phase 1. up and down must have the same length.
func Blend(up, down ControlPointSet, phase float32) ControlPointSet {
	out := make(ControlPointSet, len(down))
	for i := range down {
		out[i] = math.LerpVec3(down[i], up[i], phase)
	}
	return out
}

// Interpolate fits a centripetal Catmull-Rom curve through Blend(up, down, phase).
func Interpolate(up, down ControlPointSet, phase float32) (*math.CatmullRomCurve, error) {
	return math.NewCatmullRomCurve(Blend(up, down, phase))
}
