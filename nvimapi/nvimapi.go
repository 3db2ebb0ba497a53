// Package nvimapi implements the ApiBinding component: a closed set of
// typed wrappers over rpc.Client, one per remote procedure this client
// uses (spec.md §4.3). Each method serializes its arguments to an array
// and delegates to Client.Call; deprecated remote methods are not bound.
package nvimapi

import (
	"context"

	"github.com/anaseto/nvim-gruid/rpc"
)

// ExtHandle is an opaque extension-typed handle (Window/Buffer/Tabpage),
// compared only by identity (spec.md §4.3).
type ExtHandle struct {
	TypeID int8
	Data   []byte
}

// DecodeExtHandle converts a raw msgpack extension value into an
// ExtHandle. vmihailenco/msgpack surfaces unregistered extension types as
// type id + payload bytes; this is kept opaque per spec.md's "compared by
// identity, client does not interpret their contents".
func DecodeExtHandle(typeID int8, data []byte) ExtHandle {
	return ExtHandle{TypeID: typeID, Data: data}
}

// UIAttachOptions is the typed options structure passed to nvim_ui_attach,
// enumerating the UI features this client implements (spec.md §4.3/§6).
type UIAttachOptions struct {
	RGB            bool
	ExtLineGrid    bool
	ExtMultigrid   bool
	ExtPopupmenu   bool
	ExtCmdline     bool
	ExtMessages    bool
	ExtTermColors  bool
}

func (o UIAttachOptions) toParams() map[string]interface{} {
	m := map[string]interface{}{
		"rgb":           o.RGB,
		"ext_linegrid":  o.ExtLineGrid,
	}
	if o.ExtMultigrid {
		m["ext_multigrid"] = true
	}
	if o.ExtPopupmenu {
		m["ext_popupmenu"] = true
	}
	if o.ExtCmdline {
		m["ext_cmdline"] = true
	}
	if o.ExtMessages {
		m["ext_messages"] = true
	}
	if o.ExtTermColors {
		m["ext_termcolors"] = true
	}
	return m
}

// Binding is the ApiBinding component.
type Binding struct {
	client *rpc.Client
}

// New wraps client with the typed nvim_* method surface.
func New(client *rpc.Client) *Binding {
	return &Binding{client: client}
}

// UIAttach issues nvim_ui_attach(width, height, options) (spec.md §4.12).
func (b *Binding) UIAttach(ctx context.Context, width, height int, opts UIAttachOptions) error {
	_, err := b.client.Call(ctx, "nvim_ui_attach", []interface{}{width, height, opts.toParams()})
	return err
}

// UIDetach issues nvim_ui_detach.
func (b *Binding) UIDetach(ctx context.Context) error {
	_, err := b.client.Call(ctx, "nvim_ui_detach", []interface{}{})
	return err
}

// UITryResizeGrid issues nvim_ui_try_resize_grid(grid, width, height).
// Package app debounces the calls for the base grid and sends those for
// floating grids right away (spec.md §4.12).
func (b *Binding) UITryResizeGrid(ctx context.Context, grid, width, height int) error {
	_, err := b.client.Call(ctx, "nvim_ui_try_resize_grid", []interface{}{grid, width, height})
	return err
}

// UISetOption issues nvim_ui_set_option(name, value).
func (b *Binding) UISetOption(ctx context.Context, name string, value interface{}) error {
	_, err := b.client.Call(ctx, "nvim_ui_set_option", []interface{}{name, value})
	return err
}

// Input issues nvim_input(keys) and returns the number of bytes the editor
// reports having processed.
func (b *Binding) Input(ctx context.Context, keys string) (int, error) {
	res, err := b.client.Call(ctx, "nvim_input", []interface{}{keys})
	if err != nil {
		return 0, err
	}
	n, _ := toInt(res)
	return n, nil
}

// InputMouse issues nvim_input_mouse(button, action, modifier, grid, row,
// col) (spec.md §4.11).
func (b *Binding) InputMouse(ctx context.Context, button, action, modifier string, grid, row, col int) error {
	_, err := b.client.Call(ctx, "nvim_input_mouse", []interface{}{button, action, modifier, grid, row, col})
	return err
}

// Command issues nvim_command(cmd), used by AppWindow to apply the
// `--rtp`-derived startup command (spec.md §6).
func (b *Binding) Command(ctx context.Context, cmd string) error {
	_, err := b.client.Call(ctx, "nvim_command", []interface{}{cmd})
	return err
}

// GetApiInfo issues nvim_get_api_info and returns the raw result. Nothing in
// this module calls it; ExtHandle values are not checked against the type
// ids it reports.
func (b *Binding) GetApiInfo(ctx context.Context) (interface{}, error) {
	return b.client.Call(ctx, "nvim_get_api_info", []interface{}{})
}

// SetClientInfo issues nvim_set_client_info, identifying this front-end to
// the editor.
func (b *Binding) SetClientInfo(ctx context.Context, name, version string) error {
	_, err := b.client.Call(ctx, "nvim_set_client_info", []interface{}{
		name,
		map[string]interface{}{"major": 0, "minor": 1},
		"ui",
		map[string]interface{}{},
		map[string]interface{}{},
	})
	return err
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
