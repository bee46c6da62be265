package headless_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-jeebie-core/jeebie/backend"
	"github.com/valerio/go-jeebie-core/jeebie/backend/headless"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		frame := video.NewFrameBuffer()
		for i := range 3 {
			events, err := h.Update(frame)
			assert.NoError(t, err)

			if i < 2 {
				assert.Empty(t, events)
			} else {
				require.Len(t, events, 1)
				assert.Equal(t, backend.ActionQuit, events[0].Action)
				assert.Equal(t, backend.Press, events[0].Type)
			}
		}
		assert.Equal(t, 3, h.Frames())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("test pattern mode", func(t *testing.T) {
		h := headless.New(1, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test", TestPattern: true}))

		events, err := h.Update(video.NewFrameBuffer())
		assert.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, backend.ActionQuit, events[0].Action)
	})

	t.Run("unlimited frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{}))
		for range 100 {
			events, err := h.Update(video.NewFrameBuffer())
			require.NoError(t, err)
			require.Empty(t, events)
		}
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := t.TempDir()
	config, err := headless.CreateSnapshotConfig(2, dir, "roms/tetris.gb", 2)
	require.NoError(t, err)
	assert.True(t, config.Enabled)
	assert.Equal(t, "tetris", config.ROMName)

	h := headless.New(5, config)
	require.NoError(t, h.Init(backend.BackendConfig{}))
	for range 5 {
		_, err := h.Update(video.NewFrameBuffer())
		require.NoError(t, err)
	}

	// every second frame plus the last one
	assert.Equal(t, []string{
		filepath.Join(dir, "tetris_frame_2.png"),
		filepath.Join(dir, "tetris_frame_4.png"),
		filepath.Join(dir, "tetris_frame_5.png"),
	}, h.Snapshots())
	for _, path := range h.Snapshots() {
		assert.FileExists(t, path)
	}
}

func TestCreateSnapshotConfig_Disabled(t *testing.T) {
	config, err := headless.CreateSnapshotConfig(0, "", "", 0)
	require.NoError(t, err)
	assert.False(t, config.Enabled)
	assert.Empty(t, config.Directory)
	assert.Equal(t, 1, config.Scale)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
