package room

import (
	"github.com/google/uuid"
)

// Outline is the validity indicator drawn around a placeable while it's
// being moved.
type Outline int

const (
	OutlineNone Outline = iota
	OutlineValid
	OutlineInvalid
)

func (o Outline) String() string {
	switch o {
	case OutlineValid:
		return "valid"
	case OutlineInvalid:
		return "invalid"
	}
	return "none"
}

// Node is a live object handle: a minimal 2D scene graph node with a
// transform relative to its parent, collision & visual bounds and a fixed
// set of capabilities assigned at construction.
//
// Nodes are not safe for concurrent use.
type Node struct {
	key  uuid.UUID
	name string

	parent   *Node
	children []*Node
	parts    map[string]*Node

	local    Vec3
	rotation float64
	scale    Vec3

	// bounds are collision bounds, visual the full drawn extent. Both are
	// relative to the node pivot and unscaled.
	bounds Rect
	visual Rect

	order   int
	outline Outline

	template  string
	tracked   bool
	anchored  bool
	destroyed bool

	// State is the live custom state that gets persisted with the record.
	State *Properties

	// Capabilities, nil when the node doesn't have them.
	Placement    *Placement
	Zone         *Zone
	Holdable     *Holdable
	Interactable Interactable
	Actor        *Actor
	Seat         *Seat
	Discard      bool

	appearance Visual

	room *Room     // set on a room's root node only
	reg  *Registry // registry currently tracking this node
}

// NodeOption configures a node at construction time
type NodeOption func(*Node)

// NewNode returns a detached node named `name`
func NewNode(name string, opts ...NodeOption) *Node {
	n := &Node{
		key:   uuid.New(),
		name:  name,
		scale: One,
		parts: map[string]*Node{},
		State: NewProperties(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// WithPosition sets the parent-local position
func WithPosition(p Vec3) NodeOption {
	return func(n *Node) { n.local = p }
}

// WithScale sets the local scale
func WithScale(s Vec3) NodeOption {
	return func(n *Node) { n.scale = s }
}

// WithRotation sets the orientation in degrees
func WithRotation(deg float64) NodeOption {
	return func(n *Node) { n.rotation = deg }
}

// WithSize sets collision bounds of (w,h) centred on the pivot
func WithSize(w, h float64) NodeOption {
	return func(n *Node) { n.bounds = RectAt(0, 0, w, h) }
}

// WithBounds sets collision bounds relative to the pivot
func WithBounds(r Rect) NodeOption {
	return func(n *Node) { n.bounds = r }
}

// WithVisualBounds sets the drawn extent, when it differs from the
// collision bounds (eg. a lamp whose shade hangs over its base).
func WithVisualBounds(r Rect) NodeOption {
	return func(n *Node) { n.visual = r }
}

// WithOrder sets the initial render order
func WithOrder(o int) NodeOption {
	return func(n *Node) { n.order = o }
}

// Tracked marks a node as one that registers itself with its room.
func Tracked() NodeOption {
	return func(n *Node) { n.tracked = true }
}

// Anchored marks UI style nodes whose anchoring/sizing metadata is
// persisted in custom state.
func Anchored() NodeOption {
	return func(n *Node) { n.anchored = true }
}

// WithState seeds the custom state
func WithState(p *Properties) NodeOption {
	return func(n *Node) { n.State = p.Clone() }
}

func (n *Node) Key() uuid.UUID { return n.key }
func (n *Node) Name() string { return n.name }
func (n *Node) SetName(name string) { n.name = name }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Template() string { return n.template }
func (n *Node) IsTracked() bool { return n.tracked }
func (n *Node) Destroyed() bool { return n.destroyed }
func (n *Node) Order() int { return n.order }
func (n *Node) Outline() Outline { return n.outline }
func (n *Node) Local() Vec3 { return n.local }
func (n *Node) Rotation() float64 { return n.rotation }
func (n *Node) Scale() Vec3 { return n.scale }
func (n *Node) Appearance() Visual { return n.appearance }

// Children returns a copy of the child list, safe to range over while the
// tree changes.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) SetLocal(p Vec3) { n.local = p }
func (n *Node) SetRotation(deg float64) { n.rotation = deg }
func (n *Node) SetScale(s Vec3) { n.scale = s }

// Add attaches child under n keeping its local transform
func (n *Node) Add(child *Node) *Node {
	child.SetParent(n, false)
	return child
}

// AddPart attaches child and registers it under `name` in the parts map.
func (n *Node) AddPart(name string, child *Node) *Node {
	n.Add(child)
	n.parts[name] = child
	return child
}

// Part returns a registered part by name (or nil)
func (n *Node) Part(name string) *Node {
	return n.parts[name]
}

// Child returns a direct child by name (or nil)
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Path follows a chain of direct child names from n.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// SetParent moves n under p. If keepWorld the world position is preserved,
// otherwise the local transform is kept as-is. A nil parent detaches.
func (n *Node) SetParent(p *Node, keepWorld bool) {
	world := n.WorldPosition()

	if n.parent != nil {
		siblings := n.parent.children
		for i, c := range siblings {
			if c == n {
				n.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}

	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}

	if keepWorld {
		n.SetWorldPosition(world)
	}
}

// Descendants returns every node below n, parents before children.
func (n *Node) Descendants() []*Node {
	out := []*Node{}
	var walk func(*Node)
	walk = func(c *Node) {
		for _, k := range c.children {
			out = append(out, k)
			walk(k)
		}
	}
	walk(n)
	return out
}

// IsAncestorOf returns if n is somewhere above o
func (n *Node) IsAncestorOf(o *Node) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// WorldScale is the product of every scale from the root down
func (n *Node) WorldScale() Vec3 {
	if n.parent == nil {
		return n.scale
	}
	return n.parent.WorldScale().Mul(n.scale)
}

// WorldPosition is the pivot in world space
func (n *Node) WorldPosition() Vec3 {
	if n.parent == nil {
		return n.local
	}
	return n.parent.WorldPosition().Add(n.local.Mul(n.parent.WorldScale()))
}

// SetWorldPosition sets the local position so the pivot lands on p
func (n *Node) SetWorldPosition(p Vec3) {
	if n.parent == nil {
		n.local = p
		return
	}
	n.local = n.parent.ToLocal(p)
}

// ToLocal projects a world point into n's local space
func (n *Node) ToLocal(p Vec3) Vec3 {
	return p.Sub(n.WorldPosition()).Div(n.WorldScale())
}

// ToWorld projects a point in n's local space into world space
func (n *Node) ToWorld(p Vec3) Vec3 {
	return n.WorldPosition().Add(p.Mul(n.WorldScale()))
}

func (n *Node) worldRect(r Rect) Rect {
	s := n.WorldScale()
	p := n.WorldPosition()
	out := Rect{MinX: r.MinX * s.X, MinY: r.MinY * s.Y, MaxX: r.MaxX * s.X, MaxY: r.MaxY * s.Y}
	// negative scale flips
	if out.MinX > out.MaxX {
		out.MinX, out.MaxX = out.MaxX, out.MinX
	}
	if out.MinY > out.MaxY {
		out.MinY, out.MaxY = out.MaxY, out.MinY
	}
	return out.Translate(p)
}

// WorldBounds are the collision bounds in world space
func (n *Node) WorldBounds() Rect {
	return n.worldRect(n.bounds)
}

// VisualBounds is the full drawn extent in world space: the node's own
// visual rect (or collision bounds) joined with every sub visual.
func (n *Node) VisualBounds() Rect {
	own := n.visual
	if own.Empty() {
		own = n.bounds
	}
	out := n.worldRect(own)
	for _, c := range n.children {
		if c.independent() {
			continue
		}
		out = out.Union(c.VisualBounds())
	}
	return out
}

// independent returns if a node manages its own order & outline, rather
// than following the node it's attached to.
func (n *Node) independent() bool {
	if n.Holdable != nil && n.Holdable.holder != nil {
		return true
	}
	return n.Placement != nil
}

// held returns if this node is currently in an actor's hand
func (n *Node) held() bool {
	return n.Holdable != nil && n.Holdable.holder != nil
}

// dragging returns if this node is the subject of a drag
func (n *Node) dragging() bool {
	return n.Placement != nil && n.Placement.dragging
}

// applyOrder writes order to n and its sub visuals, skipping anything that
// manages its own order. Returns the number of nodes actually changed.
func (n *Node) applyOrder(order int) int {
	changed := 0
	if n.order != order {
		n.order = order
		changed++
	}
	for _, c := range n.children {
		if c.independent() {
			continue
		}
		changed += c.applyOrder(order)
	}
	return changed
}

// setOutline writes the indicator to n and its stacked sub visuals
func (n *Node) setOutline(o Outline) {
	n.outline = o
	for _, c := range n.children {
		if c.independent() {
			continue
		}
		c.setOutline(o)
	}
}

// Room returns the room whose root this node lives under (or nil)
func (n *Node) Room() *Room {
	for p := n; p != nil; p = p.parent {
		if p.room != nil {
			return p.room
		}
	}
	return nil
}

// Registered returns if a registry currently tracks this node
func (n *Node) Registered() bool {
	return n.reg != nil
}

// Destroy removes n (and everything below it) from the tree. Registered
// nodes are unregistered as they go.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	for _, c := range n.Children() {
		c.Destroy()
	}
	n.destroyed = true

	if n.Holdable != nil && n.Holdable.holder != nil {
		n.Holdable.holder.held = nil
		n.Holdable.holder = nil
	}
	if n.Actor != nil {
		n.Actor.leaveSeat()
	}
	if n.reg != nil {
		n.reg.Unregister(n)
	}
	n.SetParent(nil, false)
}
