package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameClockInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second/30, NewFrameClock(30).Interval())
	assert.Equal(t, time.Second/30, NewFrameClock(0).Interval(), "non-positive fps falls back to 30")
	assert.Equal(t, 10*time.Millisecond, NewFrameClock(100).Interval())
}

func TestFrameClockTicksIncrease(t *testing.T) {
	t.Parallel()

	c := NewFrameClock(200)
	defer c.Close()

	ticks := c.Tick()
	var last int64 = -1
	for i := 0; i < 3; i++ {
		select {
		case tick := <-ticks:
			assert.Greater(t, tick, last)
			last = tick
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for tick")
		}
	}
}

func TestFrameClockCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c := NewFrameClock(30)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestFakeClockStep(t *testing.T) {
	t.Parallel()

	c := NewFakeClock()
	c.Step(3)

	ticks := c.Tick()
	assert.Equal(t, int64(0), <-ticks)
	assert.Equal(t, int64(1), <-ticks)
	assert.Equal(t, int64(2), <-ticks)
}
