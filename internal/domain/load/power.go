package load

import "math"

// normalizedPower is the fourth root of the mean fourth power of the rolling
// window average. Streams shorter than the window fall back to the mean.
func normalizedPower(samples []float32, window int) float64 {
	if len(samples) == 0 {
		return 0
	}
	if len(samples) < window {
		return mean(samples)
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += float64(samples[i])
	}

	total := 0.0
	count := 0
	for i := window - 1; i < len(samples); i++ {
		if i >= window {
			sum += float64(samples[i]) - float64(samples[i-window])
		}
		rolling := sum / float64(window)
		total += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(total/float64(count), 0.25)
}

func mean(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s)
	}
	return sum / float64(len(samples))
}
