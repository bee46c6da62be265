package events

import (
	"context"
	"log/slog"
)

// LogObserver writes events to a structured logger at Debug level. Kinds not
// in the filter are skipped before any attributes are built.
type LogObserver struct {
	logger *slog.Logger
	kinds  [FrameCompleted + 1]bool
}

// NewLogObserver logs the given kinds, or every kind when none are given.
func NewLogObserver(logger *slog.Logger, kinds ...Kind) *LogObserver {
	o := &LogObserver{logger: logger}
	if len(kinds) == 0 {
		kinds = []Kind{InstructionExecuted, InterruptServiced, ModeChanged, FrameCompleted}
	}
	for _, k := range kinds {
		if k >= 0 && int(k) < len(o.kinds) {
			o.kinds[k] = true
		}
	}
	return o
}

func (o *LogObserver) Observe(e Event) {
	if e.Kind < 0 || int(e.Kind) >= len(o.kinds) || !o.kinds[e.Kind] {
		return
	}
	if !o.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	switch e.Kind {
	case InstructionExecuted:
		o.logger.Debug("Executed", "cycle", e.Cycle, "pc", hex16(e.PC), "opcode", hex16(e.Opcode), "name", e.Name)
	case InterruptServiced:
		o.logger.Debug("Interrupt serviced", "cycle", e.Cycle, "interrupt", e.Interrupt.String(), "return", hex16(e.PC))
	case ModeChanged:
		o.logger.Debug("PPU mode changed", "cycle", e.Cycle, "mode", e.Mode.String(), "line", e.Line)
	case FrameCompleted:
		o.logger.Debug("Frame completed", "cycle", e.Cycle, "frame", e.Frame)
	}
}

// hex16 defers formatting until the handler actually renders the value.
type hex16 uint16

func (h hex16) LogValue() slog.Value {
	const digits = "0123456789ABCDEF"
	b := []byte{'0', 'x', digits[h>>12&0xF], digits[h>>8&0xF], digits[h>>4&0xF], digits[h&0xF]}
	return slog.StringValue(string(b))
}
