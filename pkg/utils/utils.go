package utils

import (
	"fmt"
	"time"
)

// FormatClock renders d as HH:MM:SS. Hours are not wrapped at 24 and
// negative durations are rendered as their absolute value.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
