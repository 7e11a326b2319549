package common

import "maze.io/x/math32"

// ParabolicPeak fits a parabola through three equally spaced points centred
// on y0 and returns the vertex offset relative to the centre together with
// the interpolated height. The offset is clamped to [-0.5, 0.5]; a flat or
// inverted neighbourhood yields offset 0 and y0.
func ParabolicPeak(ym1, y0, yp1 float32) (offset, value float32) {
	a := (ym1 - 2*y0 + yp1) / 2
	b := (yp1 - ym1) / 2

	if a >= 0 {
		// not a maximum
		return 0, y0
	}

	offset = -b / (2 * a)
	if math32.IsNaN(offset) {
		return 0, y0
	}
	offset = max(-0.5, min(0.5, offset))

	return offset, y0 + b*offset + a*offset*offset
}

// LinearAt samples data at a fractional index, clamping to the ends.
func LinearAt(data []float32, x float32) float32 {
	if len(data) == 0 {
		return 0
	}
	if x <= 0 {
		return data[0]
	}
	last := float32(len(data) - 1)
	if x >= last {
		return data[len(data)-1]
	}

	i := int(math32.Floor(x))
	frac := x - float32(i)
	return data[i]*(1-frac) + data[i+1]*frac
}
