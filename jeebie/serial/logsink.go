package serial

import (
	"log/slog"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/bit"
)

// transferCycles is the time an internally clocked byte takes on DMG.
const transferCycles = 4096

// Port is a serial device connected to SB/SC. Implementations only ever see
// addr.SB and addr.SC.
type Port interface {
	Write(address uint16, value uint8)
	Read(address uint16) uint8
	Tick(cycles int)
}

// LogSink is a serial device with nobody on the other end. Outgoing bytes are
// logged as text lines, handy for test programs that print over serial.
type LogSink struct {
	requestInterrupt func()
	sb, sc           uint8
	transferActive   bool
	countdown        int
	logger           *slog.Logger

	immediate bool
	defaultRX uint8 // shifted in from the disconnected peer

	line []byte
	sent []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after 4096 cycles instead of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) LogSinkOption {
	return func(s *LogSink) { s.logger = logger }
}

// NewLogSink creates a new logging serial device. requestInterrupt is called
// when a transfer completes.
func NewLogSink(requestInterrupt func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		requestInterrupt: requestInterrupt,
		immediate:        true,
		defaultRX:        0xFF,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

func (s *LogSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		// unused bits read as 1
		return s.sc | 0x7E
	default:
		panic("serial.LogSink: invalid read address")
	}
}

func (s *LogSink) Tick(cycles int) {
	if !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
	}
}

// Output returns every byte sent so far.
func (s *LogSink) Output() []byte {
	return s.sent
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// start bit and internal clock, an external clock never ticks without a peer
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	s.sent = append(s.sent, b)
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}
	s.transferActive = true
	s.countdown = transferCycles
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	s.countdown = 0
	if s.requestInterrupt != nil {
		s.requestInterrupt()
	}
}
