package timing

import (
	"log/slog"
	"time"
)

// maxLag is how far behind schedule the limiter may fall before it gives up
// catching up and restarts the schedule from now.
const maxLag = 5 * time.Millisecond

// AdaptiveLimiter schedules frames on an absolute timeline so sleep
// overshoot does not accumulate.
type AdaptiveLimiter struct {
	frameTime time.Duration
	next      time.Time
	frames    int64
	resyncs   int64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return newAdaptiveLimiter(FrameDuration(), time.Now, time.Sleep)
}

func newAdaptiveLimiter(frameTime time.Duration, now func() time.Time, sleep func(time.Duration)) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frameTime: frameTime,
		next:      now(),
		now:       now,
		sleep:     sleep,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	wait := a.next.Sub(now)

	switch {
	case wait > 0:
		a.sleep(wait)
	case wait < -maxLag:
		a.resyncs++
		if a.resyncs%60 == 1 {
			slog.Debug("Frame pacing behind schedule", "lag_ms", -wait.Milliseconds(), "resyncs", a.resyncs)
		}
		a.next = now
	}

	a.next = a.next.Add(a.frameTime)
	a.frames++
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.frames = 0
}

// Frames returns the frames paced since the last Reset.
func (a *AdaptiveLimiter) Frames() int64 { return a.frames }
