package room

// ZoneType is the category of placeable a zone accepts, or that an item
// requires.
type ZoneType int

const (
	ZoneNone ZoneType = iota
	ZoneFloor
	ZoneWall
	ZoneSurface

	// ZoneBoth items may sit in any zone, but still collide.
	ZoneBoth

	// ZoneFree is the wildcard: zone & overlap rules don't apply.
	ZoneFree
)

var zoneNames = map[ZoneType]string{
	ZoneNone:    "none",
	ZoneFloor:   "floor",
	ZoneWall:    "wall",
	ZoneSurface: "surface",
	ZoneBoth:    "both",
	ZoneFree:    "free",
}

func (z ZoneType) String() string {
	if s, ok := zoneNames[z]; ok {
		return s
	}
	return "unknown"
}

// ParseZoneType reads a zone name as written in catalogs & config
func ParseZoneType(s string) (ZoneType, bool) {
	for z, name := range zoneNames {
		if name == s {
			return z, true
		}
	}
	return ZoneNone, false
}

// accepts returns if a zone of type z takes an item requiring `item`
func (z ZoneType) accepts(item ZoneType) bool {
	if item == ZoneBoth || item == ZoneFree {
		return true
	}
	return z == item
}

// Placement marks a node as placeable: subject to zone & overlap rules and
// to depth sorting.
type Placement struct {
	Allowed ZoneType

	dragging bool

	// revert baseline, set whenever the item is confirmed valid
	hasBaseline bool
	baseParent  *Node
	basePos     Vec3
}

// HasBaseline returns if the item has ever been validly placed
func (p *Placement) HasBaseline() bool {
	return p.hasBaseline
}

func (p *Placement) remember(n *Node) {
	p.hasBaseline = true
	p.baseParent = n.parent
	p.basePos = n.local
}

// revert moves n back to its baseline. False if there is none, or the
// baseline parent has since gone.
func (p *Placement) revert(n *Node) bool {
	if !p.hasBaseline || p.baseParent == nil || p.baseParent.destroyed {
		return false
	}
	if n.parent != p.baseParent {
		n.SetParent(p.baseParent, false)
	}
	n.local = p.basePos
	return true
}

// AsPlaceable makes a tracked, placeable item requiring zone type z
func AsPlaceable(z ZoneType) NodeOption {
	return func(n *Node) {
		n.Placement = &Placement{Allowed: z}
		n.tracked = true
	}
}

// Zone marks a sub region of a room accepting one category of item
type Zone struct {
	Type ZoneType
}

// AsZone makes the node a zone of type z
func AsZone(z ZoneType) NodeOption {
	return func(n *Node) { n.Zone = &Zone{Type: z} }
}

// Holdable items can be put in an actor's hand
type Holdable struct {
	TwoHanded bool
	holder    *Actor
}

// Holder returns the actor holding this item (or nil)
func (h *Holdable) Holder() *Actor {
	return h.holder
}

// AsHoldable lets actors grab the node
func AsHoldable(twoHanded bool) NodeOption {
	return func(n *Node) { n.Holdable = &Holdable{TwoHanded: twoHanded} }
}

// Interactable drop targets get first refusal on anything dropped on them.
type Interactable interface {
	// Accepts returns if this target wants the dropped item
	Accepts(item *Node) bool

	// Interact hands the item over. Returns true if the item was consumed
	// and should be destroyed.
	Interact(item *Node) bool
}

// WithInteraction makes the node an interaction target
func WithInteraction(i Interactable) NodeOption {
	return func(n *Node) { n.Interactable = i }
}

// AsDiscard makes the node a bin: items dropped on it are deleted
func AsDiscard() NodeOption {
	return func(n *Node) { n.Discard = true }
}

// SeatKind distinguishes chairs from beds
type SeatKind int

const (
	SeatChair SeatKind = iota
	SeatBed
)

// Seat is something an actor can be dropped on to sit or sleep
type Seat struct {
	Kind SeatKind

	// SitPoint is where the actor's pivot snaps to, local to the seat.
	SitPoint Vec3

	node     *Node
	occupant *Actor
}

// Occupant returns the actor on the seat (or nil)
func (s *Seat) Occupant() *Actor {
	return s.occupant
}

// AsSeat makes the node a chair or bed
func AsSeat(kind SeatKind, sitPoint Vec3) NodeOption {
	return func(n *Node) { n.Seat = &Seat{Kind: kind, SitPoint: sitPoint, node: n} }
}

// Posture of an actor
type Posture int

const (
	Standing Posture = iota
	Sitting
	Sleeping
)

// defaultHeldOrder is used for actors outside any room
const defaultHeldOrder = 100

// Actor is a character: it can hold one item in its hand and sit or sleep
// on seats.
type Actor struct {
	// GrabZone is local to the actor; items dropped inside are held.
	GrabZone Rect

	node    *Node
	hand    *Node
	held    *Node
	seat    *Seat
	posture Posture
}

// AsActor makes the node a character with a hand part named "hand" at
// handOffset and a grab zone.
func AsActor(grab Rect, handOffset Vec3) NodeOption {
	return func(n *Node) {
		a := &Actor{GrabZone: grab, node: n}
		a.hand = n.AddPart("hand", NewNode("hand", WithPosition(handOffset)))
		n.Actor = a
	}
}

func (a *Actor) Node() *Node { return a.node }
func (a *Actor) Held() *Node { return a.held }
func (a *Actor) Posture() Posture { return a.posture }
func (a *Actor) Seat() *Seat { return a.seat }

// InGrabZone returns if world point p falls in the grab zone
func (a *Actor) InGrabZone(p Vec3) bool {
	return a.node.worldRect(a.GrabZone).Contains(p)
}

// Hold puts item in the hand, dropping anything already held back into
// the room. The item takes the configured held order, the depth sorter
// leaves it alone from then on. Returns false if the item can't be held.
func (a *Actor) Hold(item *Node) bool {
	if item.Holdable == nil || item == a.node {
		return false
	}
	if a.held != nil && a.held != item {
		a.Release()
	}
	if h := item.Holdable.holder; h != nil && h != a {
		h.Release()
	}
	item.SetParent(a.hand, false)
	item.local = Vec3{}
	item.Holdable.holder = a
	a.held = item
	item.applyOrder(a.heldOrder())
	return true
}

func (a *Actor) heldOrder() int {
	if r := a.node.Room(); r != nil && r.world != nil {
		return r.world.cfg.HeldOrder
	}
	return defaultHeldOrder
}

// Release lets go of the held item, moving it to the actor's room root
// (or the actor's parent) keeping its world position.
func (a *Actor) Release() *Node {
	item := a.held
	if item == nil {
		return nil
	}
	a.held = nil
	item.Holdable.holder = nil

	dest := a.node.parent
	if r := a.node.Room(); r != nil {
		dest = r.root
	}
	item.SetParent(dest, true)
	return item
}

// Sit the actor on s. A bed puts the actor to sleep. Returns false if the
// seat is taken by someone else.
func (a *Actor) Sit(s *Seat) bool {
	if s.occupant != nil && s.occupant != a {
		return false
	}
	a.leaveSeat()
	a.node.SetParent(s.node, false)
	a.node.local = s.SitPoint
	s.occupant = a
	a.seat = s
	if s.Kind == SeatBed {
		a.posture = Sleeping
	} else {
		a.posture = Sitting
	}
	return true
}

// Stand wakes / stands the actor up, placing it in the seat's room at its
// current world position.
func (a *Actor) Stand() {
	if a.seat == nil {
		a.posture = Standing
		return
	}
	dest := a.seat.node.parent
	if r := a.seat.node.Room(); r != nil {
		dest = r.root
	}
	a.leaveSeat()
	if dest != nil {
		a.node.SetParent(dest, true)
	}
}

func (a *Actor) leaveSeat() {
	if a.seat != nil && a.seat.occupant == a {
		a.seat.occupant = nil
	}
	a.seat = nil
	a.posture = Standing
}
