package events

import "sync/atomic"

// Queue buffers events in a channel so another goroutine can consume them
// without blocking the emulation loop. When the buffer is full new events are
// dropped and counted.
type Queue struct {
	events  chan Event
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to bufferSize events.
func NewQueue(bufferSize int) *Queue {
	return &Queue{events: make(chan Event, bufferSize)}
}

func (q *Queue) Observe(e Event) {
	select {
	case q.events <- e:
	default:
		q.dropped.Add(1)
	}
}

// Events exposes the channel for consumers that select on it.
func (q *Queue) Events() <-chan Event {
	return q.events
}

// Drain returns every buffered event without blocking.
func (q *Queue) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-q.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Dropped returns how many events did not fit in the buffer.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
