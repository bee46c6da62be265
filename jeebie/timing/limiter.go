// Package timing paces emulation to the DMG's real frame rate for
// interactive hosts. The core itself never waits on wall-clock time.
package timing

import (
	"time"

	"github.com/valerio/go-jeebie-core/jeebie/video"
)

// Limiter controls frame pacing.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns
	// immediately when running behind.
	WaitForNextFrame()

	// Reset drops accumulated timing state, e.g. after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// CPUFrequency is the DMG master clock in Hz.
const CPUFrequency = 4194304

// TargetFPS is the DMG frame rate, about 59.73 Hz.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(video.FrameDots)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
