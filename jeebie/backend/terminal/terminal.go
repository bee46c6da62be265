package terminal

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-jeebie-core/jeebie/backend"
	"github.com/valerio/go-jeebie-core/jeebie/cpu"
	"github.com/valerio/go-jeebie-core/jeebie/debug"
	"github.com/valerio/go-jeebie-core/jeebie/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// two pixel rows per cell using the upper half block
	screenRows    = height / 2
	dividerX      = width
	panelX        = dividerX + 2
	registerLines = 10
	minTermWidth  = width + 1
	minTermHeight = screenRows + 2
	logBufferSize = 200
)

// keyTimeout is how long a key stays pressed after its last terminal event.
// Terminals only report key repeats, never releases.
const keyTimeout = 100 * time.Millisecond

// Backend renders frames with tcell, two pixels per character cell.
type Backend struct {
	screen   tcell.Screen
	config   backend.BackendConfig
	logs     *LogBuffer
	logLevel slog.Level
	signals  chan os.Signal

	keyStates  map[backend.Action]time.Time // last event per held game key
	activeKeys map[backend.Action]bool      // keys reported pressed last update
	pending    []backend.InputEvent         // non-game actions since last update

	currentFrame *video.FrameBuffer
	now          func() time.Time
}

// New creates a terminal backend drawing on the process terminal.
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a backend drawing on screen. A nil screen means the
// process terminal, created on Init.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		screen:     screen,
		logLevel:   slog.LevelInfo,
		keyStates:  make(map[backend.Action]time.Time),
		activeKeys: make(map[backend.Action]bool),
		now:        time.Now,
	}
}

// Init initializes the screen and redirects slog into the log panel.
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logs = NewLogBuffer(logBufferSize)
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logs, slog.LevelDebug)))

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update renders a frame and returns the input collected since the last call.
// Snapshot and debug toggle actions are handled here as well as reported.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	select {
	case <-t.signals:
		t.pending = append(t.pending, backend.InputEvent{Action: backend.ActionQuit, Type: backend.Press})
	default:
	}

	events := t.expireKeys(now)
	events = append(events, t.pending...)
	t.pending = nil

	t.currentFrame = frame
	for _, e := range events {
		t.handleAction(e.Action)
	}

	t.render(frame)
	t.screen.Show()
	return events, nil
}

// Cleanup restores the terminal.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

// SetDebugProvider attaches the emulator shown in the debug panel. The
// emulator is usually created after Init so it logs into the panel.
func (t *Backend) SetDebugProvider(p backend.DebugProvider) {
	t.config.DebugProvider = p
}

func (t *Backend) handleAction(act backend.Action) {
	switch act {
	case backend.ActionSnapshot:
		debug.TakeSnapshot(t.currentFrame, max(t.config.Scale, 1))
	case backend.ActionDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		slog.Info("Debug panel toggled", "enabled", t.config.ShowDebug)
	}
}

// tcellKeyNames converts tcell keys to the names used by the default key map
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() != tcell.KeyRune {
		return tcellKeyNames[ev.Key()]
	}
	if ev.Rune() == ' ' {
		return "Space"
	}
	return string(ev.Rune())
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.pending = append(t.pending, backend.InputEvent{Action: backend.ActionQuit, Type: backend.Press})
		return
	}

	act, ok := backend.GetDefaultMapping(keyName(ev))
	if !ok {
		return
	}

	if _, game := act.JoypadKey(); !game {
		t.pending = append(t.pending, backend.InputEvent{Action: act, Type: backend.Press})
		return
	}

	// one direction at a time, like a physical d-pad
	if act.IsDirection() {
		for held := range t.keyStates {
			if held.IsDirection() {
				delete(t.keyStates, held)
			}
		}
	}
	t.keyStates[act] = now
}

// expireKeys turns held-key timestamps into press and release transitions.
func (t *Backend) expireKeys(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	active := make(map[backend.Action]bool, len(t.keyStates))

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		active[act] = true
		if !t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: backend.Press})
		}
	}
	for act := range t.activeKeys {
		if !active[act] {
			events = append(events, backend.InputEvent{Action: act, Type: backend.Release})
		}
	}
	t.activeKeys = active

	slices.SortFunc(events, func(a, b backend.InputEvent) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Action, b.Action))
	})
	return events
}

func (t *Backend) render(frame *video.FrameBuffer) {
	t.screen.Clear()

	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawFrame(frame)

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	t.drawText(1, 0, width-1, " "+t.config.Title+" ", title)
	t.drawText(0, termHeight-1, termWidth, " F9=snapshot F10=debug SPACE=pause Q=quit ", tcell.StyleDefault)

	if termWidth <= panelX {
		return
	}
	border := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := range termHeight - 1 {
		t.screen.SetContent(dividerX, y, '│', nil, border)
	}

	panelWidth := termWidth - panelX
	logsY := 0
	if t.config.ShowDebug && t.config.DebugProvider != nil {
		t.drawRegisters(panelWidth)
		logsY = registerLines + 1
	}
	t.drawLogs(logsY, panelWidth, termHeight-1-logsY)
}

func shadeStyleColor(shade uint8) tcell.Color {
	r, g, b, _ := video.ShadeColor(shade).RGBA()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// drawFrame draws the frame starting on row 1, below the title.
func (t *Backend) drawFrame(frame *video.FrameBuffer) {
	if frame == nil {
		return
	}
	for y := 0; y < height; y += 2 {
		for x := range width {
			top := frame.GetShade(uint(x), uint(y))
			bottom := frame.GetShade(uint(x), uint(y+1))
			style := tcell.StyleDefault.Foreground(shadeStyleColor(top)).Background(shadeStyleColor(bottom))
			t.screen.SetContent(x, y/2+1, '▀', nil, style)
		}
	}
}

func (t *Backend) drawRegisters(panelWidth int) {
	c := t.config.DebugProvider.CPU()
	peek := t.config.DebugProvider.Peek

	ime := "OFF"
	if c.GetIME() {
		ime = "ON"
	}
	next := uint16(peek(c.GetPC()))
	if next == 0xCB {
		next = 0xCB00 | uint16(peek(c.GetPC()+1))
	}

	lines := []string{
		fmt.Sprintf("A: 0x%02X  F: 0x%02X  %s", c.GetA(), c.GetF(), c.GetFlagString()),
		fmt.Sprintf("B: 0x%02X  C: 0x%02X", c.GetB(), c.GetC()),
		fmt.Sprintf("D: 0x%02X  E: 0x%02X", c.GetD(), c.GetE()),
		fmt.Sprintf("H: 0x%02X  L: 0x%02X", c.GetH(), c.GetL()),
		fmt.Sprintf("SP: 0x%04X  PC: 0x%04X", c.GetSP(), c.GetPC()),
		fmt.Sprintf("IME: %s  IE: 0x%02X  IF: 0x%02X", ime, peek(0xFFFF), peek(0xFF0F)),
		fmt.Sprintf("Halted: %t", c.IsHalted()),
		fmt.Sprintf("Cycles: %d", c.GetCycles()),
		fmt.Sprintf("Frame: %d", t.config.DebugProvider.FrameCount()),
		fmt.Sprintf("Next: %s", cpu.Mnemonic(next)),
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		t.drawText(panelX, i, panelWidth, line, style)
	}
}

func (t *Backend) drawLogs(startY, panelWidth, rows int) {
	if rows <= 0 {
		return
	}
	styles := map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorBlue),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	}
	for i, entry := range t.logs.Recent(rows, t.logLevel) {
		t.drawText(panelX, startY+i, panelWidth, entry.String(), styles[entry.Level])
	}
}

// drawText writes text at (x, y), truncated to maxWidth cells.
func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
