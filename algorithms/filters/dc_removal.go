package filters

// RemoveMean subtracts the arithmetic mean from every sample in place and
// returns the mean that was removed. No state is kept between frames.
func RemoveMean(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}

	var sum float32
	for _, s := range samples {
		sum += s
	}
	mean := sum / float32(len(samples))

	if mean == 0 {
		return 0
	}
	for i := range samples {
		samples[i] -= mean
	}
	return mean
}
