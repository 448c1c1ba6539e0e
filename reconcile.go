package room

// Phase of a room's reconciliation
type Phase int

const (
	// PhaseIdle is normal running: a registration miss captures a fresh
	// record.
	PhaseIdle Phase = iota

	// PhaseCaching is while authored content registers against the cached
	// snapshot: a miss means the object was deleted in a previous session.
	PhaseCaching

	// PhaseSpawning is while unclaimed records are recreated
	PhaseSpawning
)

func (p Phase) String() string {
	switch p {
	case PhaseCaching:
		return "caching"
	case PhaseSpawning:
		return "spawning"
	}
	return "idle"
}

// reconcileCache holds a room's saved records keyed by identity. Several
// records may share an identity (eg. two "Apple"s on the floor), they're
// claimed first come first served.
type reconcileCache struct {
	queues map[string][]*Record
	order  []string
}

func newReconcileCache(recs []*Record) *reconcileCache {
	c := &reconcileCache{queues: map[string][]*Record{}}
	for _, r := range recs {
		if _, ok := c.queues[r.Identity]; !ok {
			c.order = append(c.order, r.Identity)
		}
		c.queues[r.Identity] = append(c.queues[r.Identity], r)
	}
	return c
}

// take removes & returns the next record for identity (or nil)
func (c *reconcileCache) take(identity string) *Record {
	q := c.queues[identity]
	if len(q) == 0 {
		return nil
	}
	c.queues[identity] = q[1:]
	return q[0]
}

// pending returns every unclaimed record in document order
func (c *reconcileCache) pending() []*Record {
	out := []*Record{}
	for _, id := range c.order {
		out = append(out, c.queues[id]...)
	}
	return out
}

// BeginReconcile loads the room's records into the cache and switches
// registration into caching mode. If the snapshot has never seen this
// room there is nothing to reconcile against and every registration
// captures a fresh record.
func (r *Room) BeginReconcile() {
	if r.phase != PhaseIdle {
		r.world.log.Printf("warning: room %s already reconciling (%s)", r.name, r.phase)
		return
	}

	r.cache = nil
	if r.world.store != nil {
		doc := r.world.store.Load()
		if doc.Known(r.Prefix()) {
			recs := doc.WithPrefix(r.Prefix())
			for i, rec := range recs {
				recs[i] = rec.Clone()
			}
			r.cache = newReconcileCache(recs)
		}
	}
	r.phase = PhaseCaching
}

// FinalizeReconcile respawns every record no authored object claimed, then
// drops the cache. Registrations after this always capture fresh records.
// Returns the number of objects spawned.
func (r *Room) FinalizeReconcile() int {
	if r.phase != PhaseCaching {
		return 0
	}
	r.phase = PhaseSpawning

	spawned := 0
	if r.cache != nil {
		for _, id := range r.cache.order {
			// records are taken one at a time so a spawned template whose own
			// tracked parts claim queued records doesn't double spawn them
			for rec := r.cache.take(id); rec != nil; rec = r.cache.take(id) {
				if r.spawn(rec) {
					spawned++
				}
			}
		}
	}

	r.cache = nil
	r.phase = PhaseIdle
	return spawned
}

// spawn recreates one object from its record
func (r *Room) spawn(rec *Record) bool {
	if !rec.Respawnable() {
		r.world.log.Printf("warning: %s has no template and can't be recreated, skipping", rec.Identity)
		return false
	}
	if r.world.loader == nil {
		r.world.log.Printf("error: no loader, can't recreate %s", rec.Identity)
		return false
	}

	n, err := r.world.loader.Load(rec.Template)
	if err != nil {
		r.world.log.Printf("error: recreating %s: %v", rec.Identity, err)
		return false
	}
	n.name = rec.Name()
	n.template = rec.Template
	n.tracked = true

	parent := r.root
	if path := parentPath(rec.Identity, r.Prefix()); len(path) > 0 {
		if p := r.root.Path(path...); p != nil {
			parent = p
		} else {
			r.world.log.Printf("warning: parent of %s is gone, placing it in the room", rec.Identity)
		}
	}
	parent.Add(n)

	r.registry.adopt(n, rec)

	// saved while in someone's hand, or sitting / sleeping
	if a := parent.parent; a != nil && a.Actor != nil && a.Actor.hand == parent {
		a.Actor.Hold(n)
	}
	if n.Actor != nil && parent.Seat != nil {
		n.Actor.Sit(parent.Seat)
	}

	// tracked parts inside the template claim their own records, if any
	for _, c := range n.Descendants() {
		if c.tracked && !c.Registered() && !c.destroyed {
			r.registry.Register(c)
		}
	}
	return true
}
