package sim

import "time"

// Clock tracks the monotonic elapsed time and frame counter the pipeline
// driver's per-frame contract requires as input. It has no ECS resource
// wiring of its own; the driver owns one directly.
type Clock struct {
	start      time.Time
	last       time.Time
	Elapsed    time.Duration
	Dt         float64
	FrameCount uint64
}

// NewClock starts a clock at the current wall time.
func NewClock() *Clock {
	now := time.Now()
	return &Clock{start: now, last: now}
}

// Tick advances the clock by one frame and returns the new frame count.
// Dt is clamped to a 10fps floor so a stalled renderer cannot hand the
// heat/force passes an exploding timestep on resume.
func (c *Clock) Tick() uint64 {
	now := time.Now()
	dt := now.Sub(c.last).Seconds()
	if dt > 0.1 {
		dt = 0.1
	}
	c.Dt = dt
	c.last = now
	c.Elapsed = now.Sub(c.start)
	c.FrameCount++
	return c.FrameCount
}
