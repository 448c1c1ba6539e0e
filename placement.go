package room

// Validator decides if a placeable sits in a legal spot and keeps its
// outline in step with the answer.
type Validator struct{}

// NewValidator returns a Validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks n against its room & updates its outline. Nodes that
// aren't placeable are always valid and keep their outline.
//
// A placeable is valid when it overlaps at least one zone accepting its
// type and no other placed item. Free items are always valid and never
// collide with anything.
func (v *Validator) Validate(n *Node) bool {
	if n.Placement == nil {
		return true
	}
	ok := v.check(n)
	if ok {
		n.setOutline(OutlineValid)
	} else {
		n.setOutline(OutlineInvalid)
	}
	return ok
}

// Clear removes the outline from n and its sub visuals
func (v *Validator) Clear(n *Node) {
	n.setOutline(OutlineNone)
}

func (v *Validator) check(n *Node) bool {
	allowed := n.Placement.Allowed
	if allowed == ZoneFree {
		return true
	}

	r := n.Room()
	if r == nil {
		return false
	}

	zone := false
	for _, o := range r.Overlapping(n, n.WorldBounds()) {
		if o.Zone != nil && o.Zone.Type.accepts(allowed) {
			zone = true
		}
		if v.collides(o) {
			return false
		}
	}
	return zone
}

// collides returns if o is a placed item that blocks others
func (v *Validator) collides(o *Node) bool {
	if o.Placement == nil || o.Placement.Allowed == ZoneFree {
		return false
	}
	return !o.dragging() && !o.held()
}
