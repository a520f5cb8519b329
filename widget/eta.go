package widget

import (
	"fmt"
	"math"
	"time"
)

// ETA labels
const (
	ETACalculating = "Calculating..."
	ETAAlmostDone  = "Almost done"
	ETACompleted   = "Completed"
)

// FormatETA estimates the time remaining from the elapsed time and the
// completed percentage: remaining = elapsed/pct*100 - elapsed.
func FormatETA(elapsed time.Duration, percentage float64) string {
	if elapsed <= 0 || percentage <= 0 {
		return ETACalculating
	}

	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	remainingMs := elapsedMs/percentage*100 - elapsedMs

	if remainingMs < 1000 {
		return ETAAlmostDone
	}
	if remainingMs < 60000 {
		return fmt.Sprintf("%ds", int(math.Ceil(remainingMs/1000)))
	}
	return fmt.Sprintf("%dmin", int(math.Ceil(remainingMs/60000)))
}
