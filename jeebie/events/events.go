package events

import (
	"fmt"
	"strings"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

// Kind represents the different types of events emitted by the core
type Kind int

const (
	InstructionExecuted Kind = iota
	InterruptServiced
	ModeChanged
	FrameCompleted
)

func (k Kind) String() string {
	switch k {
	case InstructionExecuted:
		return "instruction"
	case InterruptServiced:
		return "interrupt"
	case ModeChanged:
		return "mode"
	case FrameCompleted:
		return "frame"
	default:
		return "unknown"
	}
}

// AllKinds lists every event kind.
var AllKinds = []Kind{InstructionExecuted, InterruptServiced, ModeChanged, FrameCompleted}

// ParseKinds parses a comma separated list of kind names. "all" selects
// every kind.
func ParseKinds(list string) ([]Kind, error) {
	var kinds []Kind
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "all" {
			return AllKinds, nil
		}
		found := false
		for _, k := range AllKinds {
			if k.String() == name {
				kinds = append(kinds, k)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown event kind %q", name)
		}
	}
	return kinds, nil
}

// Event is a single observation. Only the fields relevant to Kind are set.
type Event struct {
	Kind  Kind
	Cycle uint64 // total clock cycles when the event fired

	// InstructionExecuted
	PC     uint16
	Opcode uint16
	Name   string

	// InterruptServiced
	Interrupt addr.Interrupt

	// ModeChanged
	Mode video.Mode
	Line uint8

	// FrameCompleted
	Frame uint64
}

// Observer receives events synchronously from the emulation loop. It must
// not call back into the core.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

// Multi fans events out to every non-nil observer, in order.
func Multi(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}
