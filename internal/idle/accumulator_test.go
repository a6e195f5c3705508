package idle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorBias(t *testing.T) {
	t0 := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		bias     time.Duration
		elapsed  time.Duration
		expected time.Duration
	}{
		{"scenario from two minute checker", 2 * time.Minute, 150 * time.Second, 270 * time.Second},
		{"closed at the same instant", 2 * time.Minute, 0, 2 * time.Minute},
		{"long episode", 2 * time.Minute, 3 * time.Hour, 3*time.Hour + 2*time.Minute},
		{"sub second", time.Second, 400 * time.Millisecond, 1400 * time.Millisecond},
		{"clock went backwards", 2 * time.Minute, -time.Minute, 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccumulator(tt.bias)
			require.True(t, a.Open(t0))

			ep, ok := a.Close(t0.Add(tt.elapsed))
			require.True(t, ok)
			assert.Equal(t, tt.expected, ep.Duration)
			assert.Equal(t, t0, ep.StartedAt)
			assert.Equal(t, tt.expected, a.Total())
		})
	}
}

func TestAccumulatorCloseIsIdempotent(t *testing.T) {
	t0 := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)
	a := NewAccumulator(time.Minute)

	_, ok := a.Close(t0)
	assert.False(t, ok, "closing with nothing open")
	assert.Zero(t, a.Total())

	require.True(t, a.Open(t0))
	_, ok = a.Close(t0.Add(time.Minute))
	require.True(t, ok)
	total := a.Total()

	_, ok = a.Close(t0.Add(time.Hour))
	assert.False(t, ok)
	assert.Equal(t, total, a.Total())
	assert.Equal(t, 1, a.Closed())
}

func TestAccumulatorOpenKeepsFirstStart(t *testing.T) {
	t0 := time.Date(2024, 11, 10, 9, 0, 0, 0, time.UTC)
	a := NewAccumulator(0)

	require.True(t, a.Open(t0))
	assert.False(t, a.Open(t0.Add(time.Minute)))
	assert.True(t, a.IsOpen())

	ep, ok := a.Close(t0.Add(2 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, ep.Duration)
	assert.False(t, a.IsOpen())
}
