package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime/debug"
	"sort"
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/cursor"
	"github.com/anaseto/nvim-gruid/grid"
	"github.com/anaseto/nvim-gruid/input"
	"github.com/anaseto/nvim-gruid/messages"
	"github.com/anaseto/nvim-gruid/nvimapi"
	"github.com/anaseto/nvim-gruid/popupmenu"
	"github.com/anaseto/nvim-gruid/redraw"
	"github.com/anaseto/nvim-gruid/rpc"
	"github.com/anaseto/nvim-gruid/shell"
)

// resizeDebounce collapses bursts of widget-resize notifications into a
// single nvim_ui_try_resize_grid call (spec.md §4.12: "fixed debounce, ≈30
// ms").
const resizeDebounce = 30 * time.Millisecond

// FontLoader turns an observed guifont spec and linespace (spec.md §6's
// "Options observed") into a glyph shaper. It is supplied by the Driver's
// side of the split, since rasterizing a font face is toolkit-level work
// out of this module's scope (spec.md §1).
type FontLoader func(guifont string, linespace int) (*grid.Shaper, error)

// Config configures a new App.
type Config struct {
	NvimPath string   // editor binary, e.g. "nvim"
	NvimArgs []string // additional args forwarded to the subprocess
	Rtp      string   // if set, applied via "set runtimepath+=" after attach

	Width, Height int // initial base-grid size, in cells
	Metrics       grid.Metrics // initial font metrics, supplied by the driver's loaded face
	Options       nvimapi.UIAttachOptions

	Driver     Driver
	FontLoader FontLoader // optional; nil disables font-change re-shaping

	// Stdin, if set, is duplicated as an extra file descriptor on the
	// subprocess (spec.md §6: "its file descriptor is duplicated and
	// passed to the editor so the editor can read piped content"). The
	// tty/--no-stdin decision of whether to set this belongs to
	// cmd/nvim-gruid, not App.
	Stdin *os.File

	// Conn, if set, is used as the msgpack-RPC transport in place of
	// spawning NvimPath as a subprocess. cmd/nvim-gruid sets this to
	// attach to an already-running editor instead of starting a fresh
	// one (spec.md §6's "--new" flag implies this is the default
	// behavior when a running instance is reachable).
	Conn io.ReadWriteCloser

	Logger *log.Logger
}

// App is the AppWindow component.
type App struct {
	cfg    Config
	logger *log.Logger

	// CatchPanics recovers a panic from the main loop or driver code,
	// logs it, and still closes the driver before Start returns. Defaults
	// to true; set to false to let a panic propagate instead.
	CatchPanics bool

	cmd    *exec.Cmd
	client *rpc.Client
	api    *nvimapi.Binding

	colors    *colortable.Table
	shell     *shell.Shell
	cursor    *cursor.Cursor
	popupmenu *popupmenu.Popupmenu
	messages  *messages.Messages
	router    *input.Router
	pointer   *input.PointerState

	metrics      grid.Metrics
	guifont      string
	linespace    int
	fontLoader   FontLoader
	mouseEnabled bool
	title, icon  string
	showmode     []messages.Chunk
	showcmd      []messages.Chunk
	ruler        []messages.Chunk
	cursorGrid   int

	owner ownerGuard

	msgsCh chan Msg // the Start loop's message channel; timers post back onto it

	// pendingResize is the most recently requested base-grid size not yet
	// sent to the editor, debounced by resizeDebounce.
	pendingResize *MsgResize
	resizeTimer   *time.Timer
}

// New creates an App from cfg. Defaults: CatchPanics true, an
// ext_linegrid-only attach if Options is the zero value is the caller's
// responsibility (ext_linegrid is required by spec.md §6, but App does not
// silently force it on, to keep Config an honest mirror of what is sent).
func New(cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	pmenu := popupmenu.New()
	s := shell.New()
	s.SetPopupmenu(pmenu)
	a := &App{
		cfg:        cfg,
		logger:     cfg.Logger,
		colors:     colortable.New(),
		shell:      s,
		cursor:     cursor.New(),
		popupmenu:  pmenu,
		messages:   messages.New(nil),
		router:     input.New(),
		pointer:    input.NewPointerState(),
		fontLoader:  cfg.FontLoader,
		cursorGrid:  1,
		metrics:     cfg.Metrics,
		CatchPanics: true,
	}
	return a
}

// Start spawns the editor subprocess, attaches the UI, and runs the main
// loop until ctx is canceled, the subprocess exits, or an unrecoverable
// error occurs (spec.md §4.12, generalized from the teacher's App.Start).
func (a *App) Start(ctx context.Context) (err error) {
	a.owner = newOwnerGuard()

	var codec *rpc.Codec
	if a.cfg.Conn != nil {
		codec = rpc.NewCodec(a.cfg.Conn)
	} else {
		args := append([]string{"--embed"}, a.cfg.NvimArgs...)
		a.cmd = exec.Command(a.cfg.NvimPath, args...)
		a.cmd.Stderr = os.Stderr
		if a.cfg.Stdin != nil {
			a.cmd.ExtraFiles = []*os.File{a.cfg.Stdin}
		}
		stdin, err := a.cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("app: stdin pipe: %w", err)
		}
		stdout, err := a.cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("app: stdout pipe: %w", err)
		}
		if err := a.cmd.Start(); err != nil {
			return fmt.Errorf("app: spawning %s: %w", a.cfg.NvimPath, err)
		}
		codec = rpc.NewCodec(rwPair{r: stdout, w: stdin})
	}
	a.client = rpc.NewClient(codec)
	a.api = nvimapi.New(a.client)

	if a.cfg.Driver != nil {
		if err := a.cfg.Driver.Init(); err != nil {
			if a.cmd != nil {
				a.cmd.Process.Kill()
			}
			return fmt.Errorf("app: driver init: %w", err)
		}
	}

	var (
		msgs     = make(chan Msg, 16)
		errs     = make(chan error, 1)
		polldone = make(chan struct{})
	)
	a.msgsCh = msgs

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.CatchPanics {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("app: %v", r)
				a.logger.Printf("caught panic: %v\n%s", r, debug.Stack())
			}
			a.closeDriver()
		}()
	} else {
		defer a.closeDriver()
	}

	go func() {
		defer close(polldone)
		serveErr := a.client.Serve(ctx, rpcHandler{app: a, msgs: msgs})
		if serveErr != nil {
			select {
			case errs <- serveErr:
			case <-ctx.Done():
			}
		}
	}()

	if a.cfg.Driver != nil {
		go func() {
			if pollErr := a.cfg.Driver.PollMsgs(ctx, msgs); pollErr != nil {
				select {
				case errs <- pollErr:
				case <-ctx.Done():
				}
			}
		}()
	}

	msgs <- MsgInit{}

	for {
		select {
		case <-ctx.Done():
			<-polldone
			return err
		case rerr := <-errs:
			cancel()
			<-polldone
			return rerr
		case msg := <-msgs:
			if msg == nil {
				continue
			}
			if _, ok := msg.(msgEnd); ok {
				cancel()
				<-polldone
				return err
			}
			a.handle(ctx, msg, time.Now())
		}
	}
}

func (a *App) closeDriver() {
	if a.cfg.Driver != nil {
		a.cfg.Driver.Close()
	}
	if a.resizeTimer != nil {
		a.resizeTimer.Stop()
	}
}

// rwPair adapts a subprocess's separate stdin/stdout pipes to the single
// io.ReadWriter rpc.Codec expects.
type rwPair struct {
	r io.Reader
	w io.Writer
}

func (p rwPair) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p rwPair) Write(b []byte) (int, error) { return p.w.Write(b) }

// rpcHandler adapts inbound notifications/requests to Msg values on msgs,
// per rpc.Handler (spec.md §4.2's inbound dispatch contract).
type rpcHandler struct {
	app  *App
	msgs chan<- Msg
}

func (h rpcHandler) HandleNotification(method string, params []interface{}) {
	if method != "redraw" {
		return
	}
	// Blocking send: dropping a redraw batch would corrupt grid/multigrid
	// state (spec.md §5 forbids reordering or skipping within the
	// notification stream), so backpressure here is correct, not a bug.
	h.msgs <- MsgRedraw{Params: params}
}

func (h rpcHandler) HandleRequest(method string, params []interface{}, reply func(result, errVal interface{})) {
	// The editor never issues requests to this client in the covered
	// protocol surface (spec.md §4.3); decline politely rather than hang
	// the caller.
	reply(nil, "method not supported: "+method)
}

// handle applies one Msg to App state, issuing RPC calls and flushing the
// scene graph to the driver as appropriate.
func (a *App) handle(ctx context.Context, msg Msg, now time.Time) {
	switch m := msg.(type) {
	case MsgInit:
		a.attach(ctx)

	case MsgRedraw:
		events, derr := redraw.Decode(m.Params)
		if derr != nil {
			a.logger.Printf("redraw decode: %v", derr)
			return
		}
		flushed, resizes := a.applyEvents(events, now)
		for _, r := range resizes {
			if err := a.api.UITryResizeGrid(ctx, r.Grid, r.Cols, r.Rows); err != nil {
				a.logger.Printf("nvim_ui_try_resize_grid(%d): %v", r.Grid, err)
			}
		}
		if flushed {
			a.flushScene(now)
		}

	case MsgKey:
		if s := a.router.EncodeKey(m.Event); s != "" {
			if _, err := a.api.Input(ctx, s); err != nil {
				a.logger.Printf("nvim_input: %v", err)
			}
		}

	case MsgComposed:
		if s := a.router.EncodeComposed(m.Text); s != "" {
			if _, err := a.api.Input(ctx, s); err != nil {
				a.logger.Printf("nvim_input: %v", err)
			}
		}

	case MsgPointer:
		if ev, ok := a.pointer.Translate(m.Grid, m.Button, m.Pressed, grid.FixedFromInt(int(m.X)), grid.FixedFromInt(int(m.Y)), m.Mod, a.metrics); ok {
			mod := input.ModString(ev.Mod)
			if err := a.api.InputMouse(ctx, ev.Button.String(), ev.Action, mod, ev.Grid, ev.Row, ev.Col); err != nil {
				a.logger.Printf("nvim_input_mouse: %v", err)
			}
		}

	case MsgWheel:
		ev := a.pointer.TranslateWheel(m.Grid, m.Dir, m.Mod, grid.FixedFromInt(int(m.X)), grid.FixedFromInt(int(m.Y)), a.metrics)
		mod := input.ModString(ev.Mod)
		if err := a.api.InputMouse(ctx, ev.Button.String(), ev.Action, mod, ev.Grid, ev.Row, ev.Col); err != nil {
			a.logger.Printf("nvim_input_mouse: %v", err)
		}

	case MsgResize:
		a.queueResize(m)

	case msgResizeTimeout:
		a.fireResize(ctx)

	case MsgError:
		a.logger.Printf("driver error: %v", m.Err)
	}
}

func (a *App) attach(ctx context.Context) {
	w, h := a.cfg.Width, a.cfg.Height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	a.shell.SetMetrics(a.metrics)
	a.shell.SetBaseSize(a.metrics.ColToX(w).Round(), a.metrics.RowToY(h).Round())
	a.shell.Grid(1, w, h)

	if err := a.api.SetClientInfo(ctx, "nvim-gruid", "0.1"); err != nil {
		a.logger.Printf("nvim_set_client_info: %v", err)
	}
	if err := a.api.UIAttach(ctx, w, h, a.cfg.Options); err != nil {
		a.logger.Printf("nvim_ui_attach: %v", err)
		return
	}
	if a.cfg.Rtp != "" {
		if err := a.api.Command(ctx, "set runtimepath+="+a.cfg.Rtp); err != nil {
			a.logger.Printf("set runtimepath: %v", err)
		}
	}
}

// queueResize debounces a base-grid resize: repeated MsgResize values
// within resizeDebounce collapse into the single latest call (spec.md
// §4.12). The timer callback only posts msgResizeTimeout back onto the
// Start loop's channel; it never touches App state itself, since the
// pending-call table and Shell are owned exclusively by that goroutine
// (spec.md §5).
func (a *App) queueResize(m MsgResize) {
	a.pendingResize = &m
	if a.resizeTimer != nil {
		a.resizeTimer.Stop()
	}
	msgs := a.msgsCh
	a.resizeTimer = time.AfterFunc(resizeDebounce, func() {
		select {
		case msgs <- msgResizeTimeout{}:
		default:
		}
	})
}

func (a *App) fireResize(ctx context.Context) {
	if a.pendingResize == nil {
		return
	}
	m := *a.pendingResize
	a.pendingResize = nil
	a.shell.SetBaseSize(a.metrics.ColToX(m.Cols).Round(), a.metrics.RowToY(m.Rows).Round())
	if err := a.api.UITryResizeGrid(ctx, 1, m.Cols, m.Rows); err != nil {
		a.logger.Printf("nvim_ui_try_resize_grid(1): %v", err)
	}
}

// flushScene assembles the z-ordered scene graph for every visible window
// plus the cursor node and hands it to the driver (spec.md §5's flush
// barrier: "no rendered frame reflects a partial batch").
func (a *App) flushScene(now time.Time) {
	a.cursor.Tick(now)
	nodes, _ := a.shell.Flush(a.colors, now)
	scene := a.composeScene(nodes)
	if cw := a.shell.Window(a.cursorGrid); cw != nil && !a.shell.Busy() {
		ox, oy := grid.FixedFromInt(cw.Placement.X), grid.FixedFromInt(cw.Placement.Y)
		for _, n := range a.cursor.Render(a.colors, a.metrics, now) {
			scene = append(scene, translate(n, ox, oy))
		}
	}
	if a.cfg.Driver != nil {
		a.cfg.Driver.Flush(scene)
	}
}

// composeScene offsets every grid's local render nodes by its window
// placement and orders windows by z-index, the module's analogue of the
// teacher's App.computeFrame (ui.go), generalized from a single grid to
// Shell's multi-grid map.
func (a *App) composeScene(nodes map[int][]grid.RenderNode) []grid.RenderNode {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		zi := a.shell.Window(ids[i]).Placement.ZIndex
		zj := a.shell.Window(ids[j]).Placement.ZIndex
		if zi != zj {
			return zi < zj
		}
		return ids[i] < ids[j]
	})
	var scene []grid.RenderNode
	for _, id := range ids {
		w := a.shell.Window(id)
		ox, oy := grid.FixedFromInt(w.Placement.X), grid.FixedFromInt(w.Placement.Y)
		for _, n := range nodes[id] {
			scene = append(scene, translate(n, ox, oy))
		}
	}
	return scene
}

func translate(n grid.RenderNode, ox, oy grid.Fixed) grid.RenderNode {
	n.Rect.X += ox
	n.Rect.Y += oy
	return n
}

// Popupmenu exposes the Popupmenu component for a driver that renders the
// completion list itself (spec.md §1: widget text rendering is out of this
// module's scope beyond the data model).
func (a *App) Popupmenu() *popupmenu.Popupmenu { return a.popupmenu }

// Messages exposes the Messages component for the same reason.
func (a *App) Messages() *messages.Messages { return a.messages }

// Title returns the last set_title value.
func (a *App) Title() string { return a.title }

// AssertOwner panics if called from a goroutine other than the one that
// called Start, per spec.md §5's single-owner contract on the pending-call
// table and writer. Production code never calls this; it exists so tests
// can catch an accidental cross-goroutine call into App.
func (a *App) AssertOwner() { a.owner.assertOwner() }
