package app

import (
	"context"

	"github.com/anaseto/nvim-gruid/grid"
)

// Driver handles both user input and rendering, the external GPU-rendering
// collaborator spec.md §1 places out of scope for this module beyond its
// interface shape (generalized from the teacher's Driver in ui.go).
type Driver interface {
	// Init prepares the driver so its other methods may be called.
	Init() error

	// PollMsgs is a subscription for input messages; it returns an error
	// only on a non-recoverable driver failure and must honor ctx
	// cancellation.
	PollMsgs(ctx context.Context, msgs chan<- Msg) error

	// Flush renders one assembled scene graph: grid content, offset and
	// z-ordered by window placement, followed by the cursor node. Popupmenu
	// and Messages are not part of the scene graph (they are toolkit text
	// widgets out of spec.md §1's scope); a driver wanting to draw them
	// reads popupmenu.Popupmenu/messages.Messages directly from App.
	Flush(nodes []grid.RenderNode)

	// Close releases driver resources. Redundant calls are ignored.
	Close()
}
