package wing

import (
	stdmath "math"

	"github.com/spaghettifunk/featherwing/engine/math"
)

// Phase maps elapsed milliseconds onto the wing pose in [0,1]: a triangle wave
// of the given period eased with smootherstep. 0 is the down pose, 1 the up pose.
func Phase(elapsedMS, periodMS float64) float32 {
	raw := stdmath.Mod(elapsedMS, periodMS)
	if raw < 0 {
		raw += periodMS
	}
	raw /= periodMS
	return float32(math.Smootherstep(math.Triangle(raw)))
}
