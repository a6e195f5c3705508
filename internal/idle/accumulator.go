package idle

import "time"

// Episode is a closed span during which the pointer did not move
type Episode struct {
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration // EndedAt-StartedAt plus the detection bias
}

// Accumulator tracks the open idle episode and the lifetime idle total.
// It is not safe for concurrent use; the Detector guards it.
type Accumulator struct {
	bias      time.Duration
	total     time.Duration
	startedAt *time.Time
	closed    int
}

// NewAccumulator returns an accumulator that adds bias to every closed
// episode. The detector passes its checking interval: the sample that
// opened the episode may already have been stale by up to one interval.
func NewAccumulator(bias time.Duration) *Accumulator {
	return &Accumulator{bias: bias}
}

// Open starts an episode at the given time. It returns false and keeps
// the original start if an episode is already open.
func (a *Accumulator) Open(at time.Time) bool {
	if a.startedAt != nil {
		return false
	}
	a.startedAt = &at
	return true
}

// Close ends the open episode at the given time and folds its duration
// into the total. Closing when nothing is open is a no-op.
func (a *Accumulator) Close(at time.Time) (Episode, bool) {
	if a.startedAt == nil {
		return Episode{}, false
	}

	start := *a.startedAt
	elapsed := at.Sub(start)
	if elapsed < 0 {
		// clock stepped backwards; keep the total non-decreasing
		elapsed = 0
	}

	ep := Episode{
		StartedAt: start,
		EndedAt:   at,
		Duration:  elapsed + a.bias,
	}

	a.total += ep.Duration
	a.closed++
	a.startedAt = nil
	return ep, true
}

// IsOpen reports whether an episode is in progress
func (a *Accumulator) IsOpen() bool {
	return a.startedAt != nil
}

// Total returns the idle time of all closed episodes
func (a *Accumulator) Total() time.Duration {
	return a.total
}

// Closed returns the number of closed episodes
func (a *Accumulator) Closed() int {
	return a.closed
}
