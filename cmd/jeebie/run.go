package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-jeebie-core/jeebie"
	"github.com/valerio/go-jeebie-core/jeebie/addr"
	"github.com/valerio/go-jeebie-core/jeebie/backend"
	"github.com/valerio/go-jeebie-core/jeebie/backend/headless"
	"github.com/valerio/go-jeebie-core/jeebie/backend/terminal"
	"github.com/valerio/go-jeebie-core/jeebie/debug"
	"github.com/valerio/go-jeebie-core/jeebie/events"
	"github.com/valerio/go-jeebie-core/jeebie/memory"
	"github.com/valerio/go-jeebie-core/jeebie/script"
	"github.com/valerio/go-jeebie-core/jeebie/timing"
)

// maxFlatROMSize is the largest image that fits 0x0000-0x7FFF unbanked.
const maxFlatROMSize = 0x8000

type runConfig struct {
	bootPath string
	romPath  string
	headless bool
	frames   int

	snapshotInterval int
	snapshotDir      string
	snapshotScale    int

	until    string
	maxSteps int
	trace    []events.Kind

	dumpStart, dumpEnd uint16
	dump               bool
	state              bool

	haltBug bool
	debug   bool
}

func configFromContext(c *cli.Context) (runConfig, error) {
	cfg := runConfig{
		bootPath:         c.String("boot"),
		romPath:          c.String("rom"),
		headless:         c.Bool("headless"),
		frames:           c.Int("frames"),
		snapshotInterval: c.Int("snapshot-interval"),
		snapshotDir:      c.String("snapshot-dir"),
		snapshotScale:    c.Int("snapshot-scale"),
		until:            c.String("until"),
		maxSteps:         c.Int("max-steps"),
		state:            c.Bool("state"),
		haltBug:          !c.Bool("no-halt-bug"),
		debug:            c.Bool("debug"),
	}
	if cfg.romPath == "" && c.NArg() > 0 {
		cfg.romPath = c.Args().First()
	}

	if list := c.String("trace"); list != "" {
		kinds, err := events.ParseKinds(list)
		if err != nil {
			return cfg, fmt.Errorf("invalid --trace: %w", err)
		}
		cfg.trace = kinds
	}

	if r := c.String("dump"); r != "" {
		start, end, err := parseRange(r)
		if err != nil {
			return cfg, fmt.Errorf("invalid --dump: %w", err)
		}
		cfg.dumpStart, cfg.dumpEnd, cfg.dump = start, end, true
	}

	if cfg.snapshotScale < 1 {
		return cfg, errors.New("--snapshot-scale must be at least 1")
	}
	return cfg, nil
}

// parseRange parses "START-END" with hexadecimal addresses.
func parseRange(s string) (uint16, uint16, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("expected START-END, got %q", s)
	}
	start, err := strconv.ParseUint(strings.TrimPrefix(from, "0x"), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad start address: %w", err)
	}
	end, err := strconv.ParseUint(strings.TrimPrefix(to, "0x"), 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad end address: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("range end 0x%04X before start 0x%04X", end, start)
	}
	return uint16(start), uint16(end), nil
}

func setupLogging(debugEnabled bool) {
	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func runEmulator(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	setupLogging(cfg.debug || len(cfg.trace) > 0)

	if !cfg.headless && !term.IsTerminal(int(os.Stdout.Fd())) {
		slog.Info("stdout is not a terminal, running headless")
		cfg.headless = true
	}

	var b backend.Backend
	if cfg.headless {
		if cfg.frames <= 0 && cfg.until == "" {
			return errors.New("headless mode requires --frames or --until")
		}
		snapshots, err := headless.CreateSnapshotConfig(cfg.snapshotInterval, cfg.snapshotDir, cfg.romPath, cfg.snapshotScale)
		if err != nil {
			return err
		}
		b = headless.New(cfg.frames, snapshots)
	} else {
		b = terminal.New()
	}

	// the backend may replace the default logger, so it is set up first
	if err := b.Init(backend.BackendConfig{
		Title:     "Jeebie",
		Scale:     cfg.snapshotScale,
		ShowDebug: cfg.debug,
	}); err != nil {
		return err
	}
	defer b.Cleanup()

	emu, err := newEmulator(cfg)
	if err != nil {
		return err
	}
	if t, ok := b.(*terminal.Backend); ok {
		t.SetDebugProvider(emu)
	}

	if cfg.until != "" {
		if err := runUntil(emu, cfg.until, cfg.maxSteps); err != nil {
			return err
		}
	}

	if !cfg.headless || cfg.frames > 0 {
		if err := runLoop(emu, b, limiterFor(cfg)); err != nil {
			return err
		}
	}

	if cfg.dump {
		if err := debug.Dump(os.Stdout, emu, cfg.dumpStart, cfg.dumpEnd); err != nil {
			return err
		}
	}
	if cfg.state {
		return dumpState(os.Stdout, emu)
	}
	return nil
}

// dumpState prints the I/O registers and every OAM entry against the
// current scanline.
func dumpState(w io.Writer, emu *jeebie.DMG) error {
	if err := debug.DumpRegisters(w, emu); err != nil {
		return err
	}
	height := 8
	if emu.Peek(addr.LCDC)&0x04 != 0 {
		height = 16
	}
	oam := debug.ExtractOAMData(emu, int(emu.Peek(addr.LY)), height)
	_, err := fmt.Fprintln(w, oam.Format())
	return err
}

func limiterFor(cfg runConfig) timing.Limiter {
	if cfg.headless {
		return timing.NewNoOpLimiter()
	}
	return timing.NewAdaptiveLimiter()
}

func newEmulator(cfg runConfig) (*jeebie.DMG, error) {
	opts := []jeebie.Option{jeebie.WithHaltBug(cfg.haltBug)}
	if len(cfg.trace) > 0 {
		opts = append(opts, jeebie.WithObserver(events.NewLogObserver(slog.Default(), cfg.trace...)))
	}

	if cfg.romPath != "" {
		data, err := os.ReadFile(cfg.romPath)
		if err != nil {
			return nil, fmt.Errorf("reading ROM: %w", err)
		}
		if len(data) > maxFlatROMSize {
			return nil, fmt.Errorf("unsupported ROM %s: %d bytes, only unbanked 32 KiB images are supported", cfg.romPath, len(data))
		}
		slog.Info("Loaded ROM", "path", cfg.romPath, "bytes", len(data))
		opts = append(opts, jeebie.WithCartridge(memory.NewFlatROM(data)))
	}

	if cfg.bootPath == "" {
		return jeebie.NewWithDummyBoot(opts...), nil
	}
	return jeebie.NewWithFile(cfg.bootPath, opts...)
}

func runUntil(emu *jeebie.DMG, expr string, maxSteps int) error {
	cond, err := script.Compile(expr)
	if err != nil {
		return err
	}
	defer cond.Close()

	steps, ok := emu.RunUntil(cond.Check, maxSteps)
	if err := cond.Err(); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("condition %q not met after %d steps", expr, steps)
	}

	c := emu.CPU()
	slog.Info("Condition met",
		"condition", expr,
		"steps", steps,
		"cycles", emu.Cycles(),
		"pc", fmt.Sprintf("0x%04X", c.GetPC()),
		"af", fmt.Sprintf("0x%04X", c.GetAF()),
		"bc", fmt.Sprintf("0x%04X", c.GetBC()),
		"de", fmt.Sprintf("0x%04X", c.GetDE()),
		"hl", fmt.Sprintf("0x%04X", c.GetHL()),
		"sp", fmt.Sprintf("0x%04X", c.GetSP()))
	return nil
}

// runLoop runs a frame, presents it and applies input until the backend
// asks to quit.
func runLoop(emu *jeebie.DMG, b backend.Backend, limiter timing.Limiter) error {
	paused := false
	for {
		if !paused {
			emu.RunUntilFrame()
		}

		input, err := b.Update(emu.Frame())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		for _, act := range backend.Dispatch(input, emu) {
			switch act {
			case backend.ActionQuit:
				return nil
			case backend.ActionPause:
				paused = !paused
				limiter.Reset()
				slog.Info("Pause toggled", "paused", paused)
			}
		}

		limiter.WaitForNextFrame()
	}
}
