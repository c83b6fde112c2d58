package mapper

import "math"

// freeSpaceConstant is the free-space path loss constant for distances in
// metres and frequencies in MHz.
const freeSpaceConstant = 27.55

// EstimateDistance converts a received signal strength (dBm) at the given
// frequency (MHz) into metres using the free-space path loss model.
// A frequency <= 0 yields +Inf or NaN; callers that need a finite value must
// check for it.
func EstimateDistance(frequency, signal float64) float64 {
	exp := (freeSpaceConstant - 20*math.Log10(frequency) - signal) / 20
	return math.Pow(10, exp)
}
