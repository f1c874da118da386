// Package progress derives key-result percentages, OKR status, and
// aggregate statistics from stored data. Everything here is a pure function
// of its inputs; nothing is cached and nothing fails — missing or degenerate
// input degrades to zero values.
package progress

import (
	"math"

	"okrhub/api/internal/store"
)

// Percent is the raw completion percentage of a key result, uncapped so a
// caller can surface overachievement. A non-positive target reads as 0
// rather than dividing by zero.
func Percent(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(current / target * 100))
}

// CappedPercent caps Percent at 100. Every aggregation and display path
// uses the capped value.
func CappedPercent(current, target float64) int {
	p := Percent(current, target)
	if p > 100 {
		return 100
	}
	return p
}

// MilestoneCurrent rolls weighted stage progress up into the owning key
// result's current value: round(Σ progress × weight / 100).
func MilestoneCurrent(stages []store.MilestoneStage) int {
	total := 0.0
	for _, stage := range stages {
		total += float64(stage.Progress) * float64(stage.Weight) / 100
	}
	return int(math.Round(total))
}

// Overall is the mean capped percentage across an OKR's key results, 0 when
// there are none.
func Overall(keyResults []store.KeyResult) float64 {
	if len(keyResults) == 0 {
		return 0
	}
	sum := 0.0
	for _, keyResult := range keyResults {
		sum += float64(CappedPercent(keyResult.Current, keyResult.Target))
	}
	return sum / float64(len(keyResults))
}

// Clamp bounds a progress or weight value to [0, 100].
func Clamp(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
