package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A cycle accurate DMG core"
	app.Usage = "jeebie [options] [ROM file]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "boot",
			Usage: "Path to a 256 byte boot image (default: built-in image jumping to 0x0100)",
		},
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to a 32 KiB ROM image without memory banking",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display, implied when stdout is not a terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "snapshot-scale",
			Usage: "Integer upscaling factor for snapshots",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "until",
			Usage: `Lua condition to run until before anything else, e.g. "pc == 0x0150"`,
		},
		cli.IntFlag{
			Name:  "max-steps",
			Usage: "Step limit for --until (0 = unlimited)",
			Value: 10_000_000,
		},
		cli.StringFlag{
			Name:  "trace",
			Usage: "Log core events at debug level: comma separated instruction,interrupt,mode,frame or all",
		},
		cli.StringFlag{
			Name:  "dump",
			Usage: `Hex dump an address range on exit, e.g. "C000-C0FF"`,
		},
		cli.BoolFlag{
			Name:  "state",
			Usage: "Print I/O registers and the OAM table on exit",
		},
		cli.BoolFlag{
			Name:  "no-halt-bug",
			Usage: "Disable the HALT bug emulation",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging and the debug panel",
		},
	}
	app.Action = runEmulator
	return app
}
