package events

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

func TestKind_String(t *testing.T) {
	testCases := []struct {
		kind Kind
		want string
	}{
		{InstructionExecuted, "instruction"},
		{InterruptServiced, "interrupt"},
		{ModeChanged, "mode"},
		{FrameCompleted, "frame"},
		{Kind(42), "unknown"},
	}
	for _, tC := range testCases {
		t.Run(tC.want, func(t *testing.T) {
			assert.Equal(t, tC.want, tC.kind.String())
		})
	}
}

func TestParseKinds(t *testing.T) {
	testCases := []struct {
		list    string
		want    []Kind
		wantErr bool
	}{
		{list: "instruction", want: []Kind{InstructionExecuted}},
		{list: "frame, interrupt", want: []Kind{FrameCompleted, InterruptServiced}},
		{list: "all", want: AllKinds},
		{list: "mode,all", want: AllKinds},
		{list: "instruction,bogus", wantErr: true},
		{list: "", wantErr: true},
	}
	for _, tC := range testCases {
		t.Run(tC.list, func(t *testing.T) {
			got, err := ParseKinds(tC.list)
			if tC.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
}

func TestMulti(t *testing.T) {
	var got []string
	first := ObserverFunc(func(e Event) { got = append(got, "first:"+e.Kind.String()) })
	second := ObserverFunc(func(e Event) { got = append(got, "second:"+e.Kind.String()) })

	Multi(first, nil, second).Observe(Event{Kind: FrameCompleted})
	assert.Equal(t, []string{"first:frame", "second:frame"}, got)

	// a single observer is returned as is
	single := Multi(nil, first)
	_, isMulti := single.(multiObserver)
	assert.False(t, isMulti)

	assert.NotPanics(t, func() { Multi().Observe(Event{}) })
}

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	q.Observe(Event{Kind: ModeChanged, Mode: video.VBlank, Line: 144})
	q.Observe(Event{Kind: FrameCompleted, Frame: 1})
	q.Observe(Event{Kind: FrameCompleted, Frame: 2})

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())

	drained := q.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, video.VBlank, drained[0].Mode)
	assert.Equal(t, uint64(1), drained[1].Frame)
	assert.Empty(t, q.Drain())

	q.Observe(Event{Kind: InterruptServiced})
	e := <-q.Events()
	assert.Equal(t, InterruptServiced, e.Kind)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	o := NewLogObserver(logger, InstructionExecuted, InterruptServiced)
	o.Observe(Event{Kind: InstructionExecuted, Cycle: 4, PC: 0x0100, Opcode: 0xCB7C, Name: "BIT 7,H"})
	o.Observe(Event{Kind: InterruptServiced, Cycle: 24, PC: 0x0150, Interrupt: addr.TimerInterrupt})
	o.Observe(Event{Kind: FrameCompleted, Frame: 1})

	out := buf.String()
	assert.Contains(t, out, "pc=0x0100")
	assert.Contains(t, out, "opcode=0xCB7C")
	assert.Contains(t, out, `name="BIT 7,H"`)
	assert.Contains(t, out, "interrupt=Timer")
	assert.NotContains(t, out, "Frame completed", "filtered out")
}

func TestLogObserver_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewLogObserver(logger).Observe(Event{Kind: FrameCompleted, Frame: 3})
	assert.Empty(t, buf.String())
}
