package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_Recent(t *testing.T) {
	lb := NewLogBuffer(3)
	for i, level := range []slog.Level{slog.LevelInfo, slog.LevelDebug, slog.LevelWarn, slog.LevelInfo} {
		lb.Add(LogEntry{Level: level, Message: string(rune('a' + i))})
	}

	testCases := []struct {
		desc  string
		n     int
		level slog.Level
		want  []string
	}{
		{"oldest entry dropped", 10, slog.LevelDebug, []string{"d", "c", "b"}},
		{"limited", 2, slog.LevelDebug, []string{"d", "c"}},
		{"filtered", 10, slog.LevelWarn, []string{"c"}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var got []string
			for _, e := range lb.Recent(tC.n, tC.level) {
				got = append(got, e.Message)
			}
			assert.Equal(t, tC.want, got)
		})
	}

	assert.Empty(t, NewLogBuffer(4).Recent(10, slog.LevelDebug))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo))

	logger.Debug("hidden")
	logger.With("rom", "tetris").WithGroup("cpu").Info("Loaded", "pc", 0x100)

	entries := lb.Recent(10, slog.LevelDebug)
	require.Len(t, entries, 1)
	assert.Equal(t, "Loaded rom=tetris cpu.pc=256", entries[0].Message)
	assert.Equal(t, slog.LevelInfo, entries[0].Level)
}

func TestLogEntry_String(t *testing.T) {
	at := time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, "13:04:05 [WRN] slow", LogEntry{Time: at, Level: slog.LevelWarn, Message: "slow"}.String())
	assert.Equal(t, "13:04:05 [DBG] x", LogEntry{Time: at, Level: slog.LevelDebug - 4, Message: "x"}.String())
}
