package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameTimesEmitCadence(t *testing.T) {
	times := &FrameTimes{EmitEvery: 3}

	var emits []bool
	for i := 0; i < 6; i++ {
		emits = append(emits, times.Tick())
	}

	assert.Equal(t, []bool{false, false, true, false, false, true}, emits)
	assert.Equal(t, uint64(6), times.FrameCount)
}

func TestFrameTimesFPS(t *testing.T) {
	times := &FrameTimes{AverageDuration: time.Second / 4}
	assert.InDelta(t, 4.0, times.FPS(), 1e-9)
}

func TestFrameTimesTracksMax(t *testing.T) {
	times := &FrameTimes{}
	times.observe(3 * time.Millisecond)
	times.observe(9 * time.Millisecond)
	times.observe(5 * time.Millisecond)

	assert.Equal(t, 9*time.Millisecond, times.MaxDuration)
	assert.Equal(t, 5*time.Millisecond, times.Delta)
}
