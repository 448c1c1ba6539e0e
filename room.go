package room

// Room is a bounded container owning a set of placed objects. It has a
// root node, a registry and runs reconciliation when activated.
type Room struct {
	world    *World
	name     string
	root     *Node
	registry *Registry

	phase  Phase
	cache  *reconcileCache
	active bool
}

func newRoom(w *World, name string, bounds Rect) *Room {
	r := &Room{world: w, name: name}
	r.root = NewNode(name,
		WithPosition(bounds.Center()),
		WithSize(bounds.Width(), bounds.Height()),
	)
	r.root.room = r
	r.registry = newRegistry(r)
	return r
}

func (r *Room) Name() string { return r.name }
func (r *Room) World() *World { return r.world }
func (r *Room) Root() *Node { return r.root }
func (r *Room) Registry() *Registry { return r.registry }
func (r *Room) Phase() Phase { return r.phase }
func (r *Room) Active() bool { return r.active }

// Prefix is the identity prefix every record of this room starts with
func (r *Room) Prefix() string {
	return RoomPrefix(r.world.Name(), r.name)
}

// Bounds of the room in world space
func (r *Room) Bounds() Rect {
	return r.root.WorldBounds()
}

// Activate reconciles the room against the snapshot: the cache is loaded,
// authored content registers (claiming cached records or being pruned as
// zombies), then unclaimed records are respawned.
func (r *Room) Activate() int {
	r.BeginReconcile()
	r.RegisterAuthored()
	spawned := r.FinalizeReconcile()
	r.active = true
	return spawned
}

// Deactivate saves the room and stops depth sorting it
func (r *Room) Deactivate() error {
	err := r.registry.SaveAll()
	r.active = false
	return err
}

// RegisterAuthored registers every tracked node already under the root,
// parents before children.
func (r *Room) RegisterAuthored() {
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children() {
			if c.destroyed {
				continue
			}
			if c.tracked && !c.Registered() {
				if !r.registry.Register(c) {
					// zombie, the subtree went with it
					continue
				}
			}
			walk(c)
		}
	}
	walk(r.root)
}

// Add places n under the room root (keeping its local transform) and
// registers it if tracked. Use this for items arriving after activation.
func (r *Room) Add(n *Node) bool {
	r.root.Add(n)
	if !n.tracked {
		return true
	}
	return r.registry.Register(n)
}

// identityOf walks from n up to (not including) the root, returning
// "<world>/<room>/<ancestors>/<name>". False if n isn't below the root.
func (r *Room) identityOf(n *Node) (string, bool) {
	if n == r.root {
		return "", false
	}
	segs := []string{}
	for p := n; p != nil; p = p.parent {
		if p == r.root {
			for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
				segs[i], segs[j] = segs[j], segs[i]
			}
			return Identity(append([]string{r.world.Name(), r.name}, segs...)...), true
		}
		segs = append(segs, p.name)
	}
	return "", false
}

// Overlapping returns live nodes in the room (root included) whose
// collision bounds overlap `area`. n, its subtree and its ancestors are
// skipped.
func (r *Room) Overlapping(n *Node, area Rect) []*Node {
	out := []*Node{}
	consider := func(o *Node) {
		if o == n || o.destroyed {
			return
		}
		if n != nil && (n.IsAncestorOf(o) || o.IsAncestorOf(n)) {
			return
		}
		if o.WorldBounds().Overlaps(area) {
			out = append(out, o)
		}
	}
	consider(r.root)
	for _, o := range r.root.Descendants() {
		consider(o)
	}
	return out
}

// Placeables returns every live placeable node in the room
func (r *Room) Placeables() []*Node {
	out := []*Node{}
	for _, n := range r.root.Descendants() {
		if n.Placement != nil && !n.destroyed {
			out = append(out, n)
		}
	}
	return out
}
