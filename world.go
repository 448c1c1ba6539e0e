package room

import (
	"log"
	"sort"
	"time"
)

// World is the service object shared by every room of one save slot: it
// owns the snapshot store, template loader, logger, scheduler, validator &
// depth sorter. Construct one and pass it around; there are no globals.
//
// A World and everything hanging off it is driven from a single frame
// loop and is not safe for concurrent use.
type World struct {
	cfg      *Config
	store    Store
	loader   Loader
	resolver VisualResolver
	log      *log.Logger

	sched     *Scheduler
	validator *Validator
	sorter    *DepthSorter

	rooms   map[string]*Room
	names   []string
	overlay *Node

	quitting bool
}

// WorldOption configures optional World collaborators
type WorldOption func(*World)

// WithLogger sets where warnings & errors are written
func WithLogger(l *log.Logger) WorldOption {
	return func(w *World) { w.log = l }
}

// WithLoader sets the template loader used to respawn records
func WithLoader(l Loader) WorldOption {
	return func(w *World) { w.loader = l }
}

// WithResolver sets the asset lookup for visual overrides
func WithResolver(r VisualResolver) WorldOption {
	return func(w *World) { w.resolver = r }
}

// NewWorld returns a world persisting through `store`.
func NewWorld(cfg *Config, store Store, opts ...WorldOption) *World {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	w := &World{
		cfg:       cfg,
		store:     store,
		loader:    NewCatalog(),
		resolver:  nopResolver{},
		log:       defaultLogger(),
		sched:     NewScheduler(),
		validator: NewValidator(),
		sorter:    NewDepthSorter(cfg.RestingOrder),
		rooms:     map[string]*Room{},
		overlay:   NewNode("overlay"),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *World) Name() string { return w.cfg.World }
func (w *World) Config() *Config { return w.cfg }
func (w *World) Store() Store { return w.store }
func (w *World) Logger() *log.Logger { return w.log }
func (w *World) Scheduler() *Scheduler { return w.sched }
func (w *World) Validator() *Validator { return w.validator }
func (w *World) Sorter() *DepthSorter { return w.sorter }
func (w *World) ShuttingDown() bool { return w.quitting }

// Overlay is a root for drop targets that live outside every room, eg.
// the bin on the HUD.
func (w *World) Overlay() *Node {
	return w.overlay
}

// NewRoom creates (or returns the existing) room called name covering
// `bounds` in world space.
func (w *World) NewRoom(name string, bounds Rect) *Room {
	if r, ok := w.rooms[name]; ok {
		return r
	}
	r := newRoom(w, name, bounds)
	w.rooms[name] = r
	w.names = append(w.names, name)
	return r
}

// Room returns a room by name (or nil)
func (w *World) Room(name string) *Room {
	return w.rooms[name]
}

// Rooms returns every room in creation order
func (w *World) Rooms() []*Room {
	out := make([]*Room, 0, len(w.names))
	for _, n := range w.names {
		out = append(out, w.rooms[n])
	}
	return out
}

// RoomAt returns the first room whose bounds hold world point p
func (w *World) RoomAt(p Vec3) *Room {
	for _, r := range w.Rooms() {
		if r.Bounds().Contains(p) {
			return r
		}
	}
	return nil
}

// Tick advances one frame: deferred work runs, then every active room is
// depth sorted. Returns the number of render orders rewritten.
func (w *World) Tick(dt time.Duration) int {
	w.sched.Advance(dt)

	changed := 0
	for _, r := range w.Rooms() {
		if r.active {
			changed += w.sorter.Sort(r)
		}
	}
	return changed
}

// Save persists every active room
func (w *World) Save() error {
	for _, r := range w.Rooms() {
		if !r.active {
			continue
		}
		if err := r.registry.SaveAll(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown saves, then tears every room down. Unregistration is a no-op
// from here on so teardown doesn't rewrite records mid-way.
func (w *World) Shutdown() error {
	err := w.Save()
	w.quitting = true
	for _, r := range w.Rooms() {
		r.root.Destroy()
		r.active = false
	}
	w.overlay.Destroy()
	return err
}

// ToggleOpen flips a node's open flag and saves straight away.
func (w *World) ToggleOpen(n *Node) error {
	open, _ := n.State.Bool(KeyIsOpen)
	n.State.SetBool(KeyIsOpen, !open)
	if n.reg == nil {
		return nil
	}
	return n.reg.NotifyChanged(n, true)
}

// SetTemperature records a node's temperature and saves straight away.
func (w *World) SetTemperature(n *Node, value float64) error {
	n.State.SetFloat(KeyTemperature, value)
	if n.reg == nil {
		return nil
	}
	return n.reg.NotifyChanged(n, true)
}

// remove deletes a node: registered nodes via their registry (which
// saves), anything else is just destroyed.
func (w *World) remove(n *Node) {
	if n.reg != nil {
		if err := n.reg.Delete(n); err != nil {
			w.log.Printf("error: deleting %s: %v", n.name, err)
		}
		return
	}
	n.Destroy()
}

// nodesAt returns every live node whose bounds hold world point p,
// topmost render order first. `exclude` and everything below it is
// skipped.
func (w *World) nodesAt(p Vec3, exclude *Node) []*Node {
	found := []*Node{}
	consider := func(n *Node) {
		if n.destroyed || n == exclude || (exclude != nil && exclude.IsAncestorOf(n)) {
			return
		}
		if b := n.WorldBounds(); !b.Empty() && b.Contains(p) {
			found = append(found, n)
		}
	}

	roots := []*Node{w.overlay}
	for _, r := range w.Rooms() {
		roots = append(roots, r.root)
	}
	for _, root := range roots {
		consider(root)
		for _, n := range root.Descendants() {
			consider(n)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].order > found[j].order
	})
	return found
}

// actorsAt returns actors whose grab zone holds world point p
func (w *World) actorsAt(p Vec3, exclude *Node) []*Actor {
	found := []*Actor{}
	for _, r := range w.Rooms() {
		for _, n := range r.root.Descendants() {
			if n.Actor == nil || n.destroyed || n == exclude {
				continue
			}
			if n.Actor.InGrabZone(p) {
				found = append(found, n.Actor)
			}
		}
	}
	return found
}
