package math

// Triangle folds a sawtooth value x in [0,1] into a triangle wave that rises
// from 0 at x=0 to 1 at x=0.5 and falls back to 0 at x=1.
func Triangle[T ~float32 | ~float64](x T) T {
	if x < 0.5 {
		return x * 2
	}
	return (1 - x) * 2
}

// Smootherstep is the quintic 6x^5 - 15x^4 + 10x^3. It maps [0,1] onto [0,1]
// with zero first and second derivatives at both ends.
func Smootherstep[T ~float32 | ~float64](x T) T {
	return x * x * x * (x*(x*6-15) + 10)
}
