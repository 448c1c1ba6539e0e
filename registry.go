package room

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotRegistered is returned when a node can't be (or isn't) tracked
	ErrNotRegistered = errors.New("node not registered")

	// ErrNoStore is returned when saving a room of a world without a store
	ErrNoStore = errors.New("no snapshot store")
)

// Registry maps live nodes of one room to their records, in registration
// order.
type Registry struct {
	room    *Room
	entries map[uuid.UUID]*entry
	order   []*entry
}

type entry struct {
	node   *Node
	record *Record
}

func newRegistry(r *Room) *Registry {
	return &Registry{room: r, entries: map[uuid.UUID]*entry{}}
}

// Len returns the number of tracked nodes
func (g *Registry) Len() int {
	return len(g.order)
}

// Entries returns tracked nodes in registration order
func (g *Registry) Entries() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, e := range g.order {
		out = append(out, e.node)
	}
	return out
}

// Lookup returns a copy of the record tracked for n
func (g *Registry) Lookup(n *Node) (*Record, bool) {
	e, ok := g.entries[n.key]
	if !ok {
		return nil, false
	}
	return e.record.Clone(), true
}

// Records captures & returns copies of every tracked record, in order
func (g *Registry) Records() []*Record {
	out := make([]*Record, 0, len(g.order))
	for _, e := range g.order {
		g.capture(e.node, e.record)
		out = append(out, e.record.Clone())
	}
	return out
}

// Register starts tracking n. While reconciling, a cached record with the
// same identity is claimed and applied to n. During caching a miss means
// n was deleted in an earlier session: n is destroyed and false returned.
// Otherwise the node's current state is captured as a fresh record.
//
// Registering a node tracked by another room moves it here and saves the
// room it left; registering it again in the same room just refreshes its
// identity.
func (g *Registry) Register(n *Node) bool {
	if n == nil || n.destroyed {
		return false
	}

	id, ok := g.room.identityOf(n)
	if !ok {
		g.room.world.log.Printf("warning: %s is not inside room %s, not registering", n.name, g.room.name)
		return false
	}

	if prev := n.reg; prev != nil && prev != g {
		prev.remove(n)
		if err := prev.SaveAll(); err != nil {
			g.room.world.log.Printf("error: saving room %s after %s left: %v", prev.room.name, n.name, err)
		}
	}
	if e, ok := g.entries[n.key]; ok {
		e.record.Identity = id
		return true
	}

	if g.room.cache != nil {
		if rec := g.room.cache.take(id); rec != nil {
			g.adopt(n, rec)
			return true
		}
		if g.room.phase == PhaseCaching {
			g.room.world.log.Printf("warning: %s has no saved record, it was deleted, removing", id)
			n.Destroy()
			return false
		}
	}

	rec := NewRecord(id)
	g.capture(n, rec)
	g.insert(n, rec)
	return true
}

// adopt applies rec to n and tracks the pair
func (g *Registry) adopt(n *Node, rec *Record) {
	if id, ok := g.room.identityOf(n); ok {
		rec.Identity = id
	}
	g.apply(n, rec)
	g.insert(n, rec)
}

func (g *Registry) insert(n *Node, rec *Record) {
	e := &entry{node: n, record: rec}
	g.entries[n.key] = e
	g.order = append(g.order, e)
	n.reg = g
}

// Unregister stops tracking n. It's a no-op once the world is shutting
// down so teardown leaves the saved state alone.
func (g *Registry) Unregister(n *Node) {
	if g.room.world.quitting {
		return
	}
	g.remove(n)
}

func (g *Registry) remove(n *Node) {
	e, ok := g.entries[n.key]
	if !ok {
		return
	}
	delete(g.entries, n.key)
	for i, o := range g.order {
		if o == e {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if n.reg == g {
		n.reg = nil
	}
}

// NotifyChanged re-captures n's record, registering it first if needed,
// and optionally saves the room.
func (g *Registry) NotifyChanged(n *Node, save bool) error {
	e, ok := g.entries[n.key]
	if !ok {
		if !g.Register(n) {
			return fmt.Errorf("%w: %s", ErrNotRegistered, n.name)
		}
		e = g.entries[n.key]
	}
	g.capture(n, e.record)

	if !save {
		return nil
	}
	return g.SaveAll()
}

// SaveAll captures every tracked node and writes the room's records into
// the snapshot, replacing what was there for this room only. Records
// still waiting in a reconcile cache are written too so an early save
// can't lose them.
func (g *Registry) SaveAll() error {
	store := g.room.world.store
	if store == nil {
		return ErrNoStore
	}

	recs := g.Records()
	if g.room.cache != nil {
		for _, r := range g.room.cache.pending() {
			recs = append(recs, r.Clone())
		}
	}

	doc := store.Load()
	doc.Replace(g.room.Prefix(), recs)
	return store.Save(doc)
}

// Delete removes n for good: it's untracked, destroyed and the room saved.
func (g *Registry) Delete(n *Node) error {
	if _, ok := g.entries[n.key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, n.name)
	}
	g.remove(n)
	n.Destroy()
	return g.SaveAll()
}

// apply writes a record's fields onto a live node
func (g *Registry) apply(n *Node, rec *Record) {
	n.local = rec.Position
	n.rotation = rec.Rotation
	n.scale = rec.Scale
	if n.scale == (Vec3{}) {
		n.scale = One
	}

	if rec.State != nil {
		n.State = rec.State.Clone()
	} else {
		n.State = NewProperties()
	}

	if n.anchored {
		if x, ok := n.State.Float(KeyAnchoredX); ok {
			n.local.X = x
		}
		if y, ok := n.State.Float(KeyAnchoredY); ok {
			n.local.Y = y
		}
		w, wok := n.State.Float(KeyWidth)
		h, hok := n.State.Float(KeyHeight)
		if wok && hok {
			n.bounds = RectAt(0, 0, w, h)
		}
	}

	if v, ok := decodeVisual(n.State); ok {
		g.room.world.restoreAppearance(n, v, 0)
	}
}

// capture writes a live node's fields into its record. The identity is
// recomputed while n is still below this room's root.
func (g *Registry) capture(n *Node, rec *Record) {
	if id, ok := g.room.identityOf(n); ok {
		rec.Identity = id
	}
	rec.Position = n.local
	rec.Rotation = n.rotation
	rec.Scale = n.scale
	rec.Template = n.template

	st := n.State.Clone()
	if n.anchored {
		st.SetFloat(KeyAnchoredX, n.local.X)
		st.SetFloat(KeyAnchoredY, n.local.Y)
		st.SetFloat(KeyWidth, n.bounds.Width())
		st.SetFloat(KeyHeight, n.bounds.Height())
	}
	// a visual that never resolved keeps its saved provenance in State
	if n.appearance != nil {
		encodeVisual(n.appearance, st)
	}
	rec.State = st
}
