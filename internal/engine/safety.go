// internal/engine/safety.go
package engine

import (
	"math"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// zExtreme bounds the inverse normal at the clamped tails.
const zExtreme = 3.5

// SafetyStock converts the target service level (or a manual weeks-of-cover
// target) into a safety-stock quantity.
//
// STATISTICAL: ceil(z(serviceLevel) * stdDev * sqrt(leadTimeDays)).
// WEEKS_OF_COVER: ceil(avgDaily * 7 * weeksOfCover).
func SafetyStock(serviceLevel, stdDev, leadTimeDays float64, strategy domain.SafetyStockStrategy, avgDaily, weeksOfCover float64) int {
	if strategy == domain.StrategyWeeksOfCover {
		return int(math.Ceil(avgDaily * 7 * weeksOfCover))
	}
	z := inverseNormalCDF(serviceLevel)
	return int(math.Ceil(z * stdDev * math.Sqrt(leadTimeDays)))
}

// inverseNormalCDF approximates the standard normal quantile with the
// Abramowitz-Stegun 26.2.23 rational polynomial. The error is below 4.5e-4,
// which is ample for service levels. Probabilities at or beyond the [0,1]
// bounds map to +/-3.5.
func inverseNormalCDF(p float64) float64 {
	if p <= 0 {
		return -zExtreme
	}
	if p >= 1 {
		return zExtreme
	}

	q := p
	if q > 0.5 {
		q = 1 - q
	}

	t := math.Sqrt(-2 * math.Log(q))
	z := t - (2.515517+0.802853*t+0.010328*t*t)/
		(1+1.432788*t+0.189269*t*t+0.001308*t*t*t)

	if p < 0.5 {
		return -z
	}
	return z
}
