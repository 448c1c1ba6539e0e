package room

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDragInProgress is returned when beginning a drag during another
	ErrDragInProgress = errors.New("drag already in progress")

	// ErrNotDraggable is returned for destroyed or detached nodes
	ErrNotDraggable = errors.New("node can't be dragged")
)

// DragState of a DragController
type DragState int

const (
	DragIdle DragState = iota
	Dragging
)

// DropResult says how a drag ended
type DropResult int

const (
	DropNone DropResult = iota
	DropInteracted
	DropConsumed
	DropHeld
	DropSeated
	DropPlaced
	DropDiscarded
	DropReverted
	DropDestroyed
)

var dropNames = []string{"none", "interacted", "consumed", "held", "seated", "placed", "discarded", "reverted", "destroyed"}

func (d DropResult) String() string {
	if int(d) < len(dropNames) {
		return dropNames[d]
	}
	return "unknown"
}

// PointerPhase of a pointer event
type PointerPhase int

const (
	PointerPress PointerPhase = iota
	PointerMove
	PointerRelease
)

// Pointer is one frame of input in screen space
type Pointer struct {
	Pos   Vec3
	Phase PointerPhase
}

// DragController moves one node at a time with the pointer, keeps its
// placement outline up to date and resolves where it lands.
type DragController struct {
	world    *World
	scroller Scroller

	state  DragState
	node   *Node
	offset Vec3

	// where the drag began, for Cancel
	startParent *Node
	startPos    Vec3
}

// NewDragController returns an idle controller dragging over `s`
func NewDragController(w *World, s Scroller) *DragController {
	return &DragController{world: w, scroller: s}
}

func (d *DragController) State() DragState { return d.state }
func (d *DragController) Target() *Node { return d.node }

// Handle routes one pointer event: a press on `target` begins a drag,
// moves update it & a release ends it.
func (d *DragController) Handle(p Pointer, target *Node, dt time.Duration) (DropResult, error) {
	switch p.Phase {
	case PointerPress:
		if target == nil {
			return DropNone, nil
		}
		return DropNone, d.Begin(target, p.Pos)
	case PointerMove:
		d.Move(p.Pos, dt)
	case PointerRelease:
		return d.End(p.Pos), nil
	}
	return DropNone, nil
}

// Begin picks n up at screen point `pointer`. Held items are taken from
// their holder and seated actors stand up first.
func (d *DragController) Begin(n *Node, pointer Vec3) error {
	if d.state == Dragging {
		return ErrDragInProgress
	}
	if n == nil || n.destroyed {
		return ErrNotDraggable
	}

	moved := false
	if n.held() {
		n.Holdable.holder.Release()
		moved = true
	}
	if n.Actor != nil && (n.Actor.posture != Standing || n.Actor.seat != nil) {
		n.Actor.Stand()
		moved = true
	}
	if n.parent == nil {
		return fmt.Errorf("%w: %s is detached", ErrNotDraggable, n.name)
	}
	if moved {
		d.refresh(n)
	}

	if n.Placement != nil {
		if d.world.validator.Validate(n) {
			n.Placement.remember(n)
		}
		n.Placement.dragging = true
	}

	p := d.scroller.ScreenToWorld(pointer)
	d.offset = n.local.Sub(n.parent.ToLocal(p))
	d.startParent, d.startPos = n.parent, n.local
	d.node, d.state = n, Dragging

	n.applyOrder(d.world.cfg.DraggingOrder)
	return nil
}

// Move follows the pointer, returning if the current spot is valid.
func (d *DragController) Move(pointer Vec3, dt time.Duration) bool {
	if d.state != Dragging {
		return false
	}
	n := d.node
	if n.destroyed || n.parent == nil {
		d.reset()
		return false
	}

	p := d.scroller.ScreenToWorld(pointer)
	n.local = n.parent.ToLocal(p).Add(d.offset)
	d.clamp(n)

	valid := d.world.validator.Validate(n)
	d.scroller.Nudge(pointer, dt)
	return valid
}

// clamp keeps the full visual extent of n inside its room, give or take
// the configured margin.
func (d *DragController) clamp(n *Node) {
	r := n.Room()
	if r == nil {
		return
	}
	limits := r.Bounds().Expand(d.world.cfg.ClampMargin)
	shift := limits.ClampInside(n.VisualBounds())
	if shift.Equal(Vec3{}) {
		return
	}
	n.SetWorldPosition(n.WorldPosition().Add(shift))
}

// End drops the node at screen point `pointer`. Drop targets are tried in
// priority order: interaction target, actor's hand, seat, room, bin. If
// none takes it the node reverts to its last valid spot, or is destroyed
// if it never had one. Anything not left in a hand gets the resting render
// order back.
func (d *DragController) End(pointer Vec3) DropResult {
	if d.state != Dragging {
		return DropNone
	}
	n := d.node
	defer d.reset()

	if n.Placement != nil {
		n.Placement.dragging = false
	}
	if n.destroyed {
		return DropNone
	}

	result := d.resolve(n, d.scroller.ScreenToWorld(pointer))
	if !n.destroyed {
		if !n.held() {
			n.applyOrder(d.world.cfg.RestingOrder)
		}
		d.world.validator.Clear(n)
	}
	return result
}

// Cancel aborts the drag, putting the node back where it was picked up.
func (d *DragController) Cancel() {
	if d.state != Dragging {
		return
	}
	n := d.node
	defer d.reset()

	if n.Placement != nil {
		n.Placement.dragging = false
	}
	if n.destroyed {
		return
	}
	if d.startParent != nil && !d.startParent.destroyed {
		if n.parent != d.startParent {
			n.SetParent(d.startParent, false)
		}
		n.local = d.startPos
	}
	n.applyOrder(d.world.cfg.RestingOrder)
	d.world.validator.Clear(n)
}

func (d *DragController) reset() {
	d.state = DragIdle
	d.node = nil
	d.startParent = nil
	d.offset = Vec3{}
}

func (d *DragController) resolve(n *Node, p Vec3) DropResult {
	targets := d.world.nodesAt(p, n)

	for _, t := range targets {
		if t.Interactable == nil || !t.Interactable.Accepts(n) {
			continue
		}
		if t.Interactable.Interact(n) {
			d.world.remove(n)
			return DropConsumed
		}
		if n.Placement != nil {
			n.Placement.remember(n)
		}
		d.commit(n)
		return DropInteracted
	}

	if n.Holdable != nil {
		for _, a := range d.world.actorsAt(p, n) {
			if a.Hold(n) {
				d.commit(n)
				return DropHeld
			}
		}
	}

	if n.Actor != nil {
		for _, t := range targets {
			if t.Seat != nil && n.Actor.Sit(t.Seat) {
				d.commit(n)
				return DropSeated
			}
		}
	}

	if r := d.world.RoomAt(p); r != nil {
		if d.place(n, r) {
			return DropPlaced
		}
	}

	for _, t := range targets {
		if t.Discard {
			d.world.remove(n)
			return DropDiscarded
		}
	}

	if n.Placement == nil {
		// non placeables have no validity, they go back where they started
		if d.startParent != nil && !d.startParent.destroyed {
			n.SetParent(d.startParent, false)
			n.local = d.startPos
			return DropReverted
		}
	} else if n.Placement.revert(n) {
		d.world.validator.Validate(n)
		d.refresh(n)
		return DropReverted
	}

	d.world.remove(n)
	return DropDestroyed
}

// place moves n into room r if the spot is valid, undoing the move if not
func (d *DragController) place(n *Node, r *Room) bool {
	prevParent, prevPos := n.parent, n.local
	if n.parent != r.root {
		n.SetParent(r.root, true)
	}

	if !d.world.validator.Validate(n) {
		n.SetParent(prevParent, false)
		n.local = prevPos
		return false
	}

	if n.Placement != nil {
		n.Placement.remember(n)
	}
	d.commit(n)
	return true
}

// commit registers n with whatever room it now lives in and saves
func (d *DragController) commit(n *Node) {
	r := n.Room()
	if r == nil || !n.tracked {
		return
	}
	if err := r.registry.NotifyChanged(n, true); err != nil {
		d.world.log.Printf("error: saving %s: %v", n.name, err)
	}
}

// refresh re-captures n's record without saving
func (d *DragController) refresh(n *Node) {
	r := n.Room()
	if r == nil || !n.tracked {
		return
	}
	if err := r.registry.NotifyChanged(n, false); err != nil {
		d.world.log.Printf("warning: refreshing %s: %v", n.name, err)
	}
}
