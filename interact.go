package room

import (
	"math"
	"strconv"
)

const (
	// KeyConsumable marks an item an Eater will take
	KeyConsumable = "consumable"

	// KeyBites is how many bites an item has had, KeyBiteStages how many
	// it takes to finish (default 1).
	KeyBites      = "bites"
	KeyBiteStages = "bite_stages"

	// KeyEaten counts items an Eater has finished
	KeyEaten = "eaten"

	// KeyStoredIn names the container an item was put in
	KeyStoredIn = "stored_in"
)

// Eater is an interaction target that takes one bite out of consumable
// items dropped on it. The item is consumed on its final bite.
type Eater struct {
	node *Node
}

// AsEater makes the node eat consumable items dropped on it
func AsEater() NodeOption {
	return func(n *Node) { n.Interactable = &Eater{node: n} }
}

// Accepts implements Interactable
func (e *Eater) Accepts(item *Node) bool {
	ok, _ := item.State.Bool(KeyConsumable)
	return ok
}

// Interact implements Interactable
func (e *Eater) Interact(item *Node) bool {
	bites, _ := item.State.Int(KeyBites)
	stages, ok := item.State.Int(KeyBiteStages)
	if !ok || stages < 1 {
		stages = 1
	}

	bites++
	item.State.SetInt(KeyBites, bites)
	if bites < stages {
		return false
	}

	eaten, _ := e.node.State.Int(KeyEaten)
	e.node.State.SetInt(KeyEaten, eaten+1)
	return true
}

// Container is an interaction target with slots. While open, items dropped
// on it snap into the nearest free slot.
type Container struct {
	node  *Node
	slots []*Node
}

// AsContainer makes the node a container with the given slot positions,
// local to the node. Slots are added as parts "slot0", "slot1" ...
func AsContainer(slots ...Vec3) NodeOption {
	return func(n *Node) {
		c := &Container{node: n}
		for i, p := range slots {
			name := "slot" + strconv.Itoa(i)
			c.slots = append(c.slots, n.AddPart(name, NewNode(name, WithPosition(p))))
		}
		n.Interactable = c
	}
}

// Slots returns the slot nodes in order
func (c *Container) Slots() []*Node {
	return append([]*Node{}, c.slots...)
}

// Open returns if the container currently takes items
func (c *Container) Open() bool {
	open, _ := c.node.State.Bool(KeyIsOpen)
	return open
}

// Accepts implements Interactable
func (c *Container) Accepts(item *Node) bool {
	if !c.Open() || (item.Placement == nil && item.Holdable == nil) {
		return false
	}
	return c.free(item.WorldPosition()) != nil
}

// Interact implements Interactable. The item is never consumed.
func (c *Container) Interact(item *Node) bool {
	slot := c.free(item.WorldPosition())
	if slot == nil {
		return false
	}
	item.SetParent(slot, false)
	item.local = Vec3{}
	item.State.SetString(KeyStoredIn, c.node.name)
	return false
}

// free returns the empty slot nearest world point p (or nil)
func (c *Container) free(p Vec3) *Node {
	var best *Node
	dist := math.Inf(1)
	for _, s := range c.slots {
		if len(s.children) > 0 {
			continue
		}
		w := s.WorldPosition()
		d := math.Hypot(w.X-p.X, w.Y-p.Y)
		if d < dist {
			best, dist = s, d
		}
	}
	return best
}
