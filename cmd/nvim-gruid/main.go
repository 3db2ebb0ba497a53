// Command nvim-gruid is the CLI entry point: it parses flags, decides how
// to reach an editor instance, picks a reference Driver, and runs the
// AppWindow main loop (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"github.com/anaseto/nvim-gruid/app"
	"github.com/anaseto/nvim-gruid/drivers/sdldriver"
	"github.com/anaseto/nvim-gruid/drivers/tcelldriver"
	"github.com/anaseto/nvim-gruid/grid"
	"github.com/anaseto/nvim-gruid/nvimapi"
)

const clientVersion = "0.1"

// exit codes per spec.md §6: 0 on normal exit, nonzero on startup failure.
const (
	exitOK = iota
	exitUsage
	exitStartup
)

// defaultCols/defaultRows is the initial base-grid size attached with,
// before any driver-reported resize arrives.
const (
	defaultCols = 80
	defaultRows = 24
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("nvim-gruid", flag.ContinueOnError)
	var (
		nvimPath    = fs.String("nvim", "nvim", "editor binary to launch")
		rtp         = fs.String("rtp", "", "runtime files path forwarded via set runtimepath+=")
		nvimArgs    = fs.String("nvim-args", "", "additional arguments forwarded to the editor, shell-parsed")
		noStdinBool = fs.Bool("no-stdin", false, "ignore piped stdin even when present")
		driverName  = fs.String("driver", "tcell", "reference Driver to use: tcell or sdl")
		newInst     = fs.Bool("new", false, "do not attach to an existing instance")
		showVers    = fs.Bool("version", false, "print the version and exit")
	)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *showVers {
		fmt.Println("nvim-gruid " + clientVersion)
		return exitOK
	}

	cfg := app.Config{
		NvimPath: *nvimPath,
		Rtp:      *rtp,
		Width:    defaultCols,
		Height:   defaultRows,
		Options: nvimapi.UIAttachOptions{
			RGB:          true,
			ExtLineGrid:  true,
			ExtMultigrid: true,
			ExtPopupmenu: true,
			ExtMessages:  true,
		},
	}

	var err error
	cfg.NvimArgs, err = splitShellArgs(*nvimArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nvim-gruid: -nvim-args: %v\n", err)
		return exitUsage
	}

	if !*noStdinBool {
		if fi, statErr := os.Stdin.Stat(); statErr == nil && fi.Mode()&os.ModeCharDevice == 0 {
			cfg.Stdin = os.Stdin
		}
	}

	if !*newInst {
		if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" {
			conn, dialErr := net.Dial("unix", addr)
			if dialErr != nil {
				fmt.Fprintf(os.Stderr, "nvim-gruid: attaching to %s: %v\n", addr, dialErr)
				return exitStartup
			}
			cfg.Conn = conn
		}
	}

	switch *driverName {
	case "tcell":
		cfg.Driver = tcelldriver.NewDriver(tcelldriver.Config{})
		cfg.Metrics = tcelldriver.CellMetrics()
	case "sdl":
		shaper, shaperErr := defaultShaper()
		if shaperErr != nil {
			fmt.Fprintf(os.Stderr, "nvim-gruid: loading default font: %v\n", shaperErr)
			return exitStartup
		}
		cfg.Metrics = shaper.Metrics()
		cfg.Driver = sdldriver.NewDriver(sdldriver.Config{
			Shaper: shaper,
			Width:  defaultCols,
			Height: defaultRows,
		})
		cfg.FontLoader = func(guifont string, linespace int) (*grid.Shaper, error) {
			return defaultShaper()
		}
	default:
		fmt.Fprintf(os.Stderr, "nvim-gruid: unknown -driver %q (want tcell or sdl)\n", *driverName)
		return exitUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := app.New(cfg)
	if err := a.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "nvim-gruid: %v\n", err)
		return exitStartup
	}
	return exitOK
}

// defaultShaper loads the embedded Go Mono face as sdldriver's fallback
// font, mirroring the teacher's own examples/pager and examples/label
// tile-drawer setup (opentype.Parse(gomono.TTF) + opentype.NewFace), since
// guifont-driven loading of an arbitrary system font file is toolkit-level
// scope this module does not take on (spec.md §1).
func defaultShaper() (*grid.Shaper, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 16, DPI: 72})
	if err != nil {
		return nil, fmt.Errorf("building font face: %w", err)
	}
	return grid.NewShaper(face)
}

// splitShellArgs performs minimal POSIX-ish shell word splitting: fields
// separated by whitespace, with single- and double-quoted spans kept
// intact. No example in the pack pulls in a shell-word-splitting library,
// and this flag's only consumer is exec.Command's argv, so a small
// hand-rolled splitter is used instead of adding an unrelated dependency
// for it (see DESIGN.md).
func splitShellArgs(s string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		inWord bool
		quote  rune
	)
	flush := func() {
		if inWord {
			fields = append(fields, cur.String())
			cur.Reset()
			inWord = false
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			inWord = true
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	flush()
	return fields, nil
}
