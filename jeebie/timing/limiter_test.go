package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func TestTargetFPS(t *testing.T) {
	assert.InDelta(t, 59.7275, TargetFPS(), 0.0001)
	assert.InDelta(t, 16742706, FrameDuration().Nanoseconds(), 1)
}

func TestAdaptiveLimiter(t *testing.T) {
	const frame = 10 * time.Millisecond

	testCases := []struct {
		desc  string
		work  []time.Duration // emulation time spent before each wait
		slept []time.Duration
	}{
		{
			desc:  "first frame is due immediately",
			work:  []time.Duration{0},
			slept: nil,
		},
		{
			desc:  "sleeps the remainder of each frame",
			work:  []time.Duration{0, 4 * time.Millisecond, 7 * time.Millisecond},
			slept: []time.Duration{6 * time.Millisecond, 3 * time.Millisecond},
		},
		{
			desc:  "small lag is caught up",
			work:  []time.Duration{0, 13 * time.Millisecond, 2 * time.Millisecond},
			slept: []time.Duration{5 * time.Millisecond},
		},
		{
			desc:  "large lag restarts the schedule",
			work:  []time.Duration{0, 30 * time.Millisecond, 1 * time.Millisecond},
			slept: []time.Duration{9 * time.Millisecond},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0)}
			l := newAdaptiveLimiter(frame, clock.Now, clock.Sleep)

			for _, w := range tC.work {
				clock.now = clock.now.Add(w)
				l.WaitForNextFrame()
			}
			assert.Equal(t, tC.slept, clock.slept)
			assert.Equal(t, int64(len(tC.work)), l.Frames())
		})
	}
}

func TestAdaptiveLimiter_Reset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := newAdaptiveLimiter(10*time.Millisecond, clock.Now, clock.Sleep)
	l.WaitForNextFrame()

	// a long pause must not be caught up afterwards
	clock.now = clock.now.Add(time.Second)
	l.Reset()
	l.WaitForNextFrame()
	assert.Empty(t, clock.slept)
	assert.Equal(t, int64(1), l.Frames())
}

func TestNoOpLimiter(t *testing.T) {
	l := NewNoOpLimiter()
	l.WaitForNextFrame()
	l.Reset()
}
