package engine

import (
	"time"
)

// avgWindow is the number of frames the moving average spans.
const avgWindow = 64

// FrameTimes tracks frame pacing with a windowed moving average and tells
// the loop when its periodic stats line is due.
type FrameTimes struct {
	FrameCount      uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration

	// Delta is the time between the two most recent frames.
	Delta time.Duration

	// EmitEvery is the stats emission cadence in frames; zero means 60.
	EmitEvery uint64

	lastTime time.Time
}

// FPS returns the average frame rate over the window.
func (t *FrameTimes) FPS() float64 {
	return 1.0 / t.AverageDuration.Seconds()
}

// Tick records a frame boundary and reports whether stats should be
// emitted this frame.
func (t *FrameTimes) Tick() bool {
	now := time.Now()

	if t.FrameCount > 0 {
		t.observe(now.Sub(t.lastTime))
	}

	t.lastTime = now
	t.FrameCount++

	every := t.EmitEvery
	if every == 0 {
		every = 60
	}

	return t.FrameCount%every == 0
}

func (t *FrameTimes) observe(d time.Duration) {
	t.Delta = d
	t.MaxDuration = max(t.MaxDuration, d)

	if t.FrameCount < avgWindow/2 {
		t.AverageDuration = d
	} else {
		t.AverageDuration = ((avgWindow - 1)*t.AverageDuration + d) / avgWindow
	}
}
