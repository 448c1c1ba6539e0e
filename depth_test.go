package room

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortPair(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	a := r.Root().Add(placeable("A", ZoneFloor, Vec3{X: 0, Y: -10}))
	b := r.Root().Add(placeable("B", ZoneFloor, Vec3{X: 5, Y: -20}))

	changed := env.world.Sorter().Sort(r)

	assert.Equal(t, 2, changed)
	assert.Equal(t, 20, a.Order())
	assert.Equal(t, 21, b.Order())
	assert.Equal(t, 0, env.world.Sorter().Sort(r))
}

func TestSortClusters(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	a := r.Root().Add(placeable("A", ZoneFloor, Vec3{X: 0, Y: -10}))
	b := r.Root().Add(placeable("B", ZoneFloor, Vec3{X: 15, Y: -20}))
	c := r.Root().Add(placeable("C", ZoneFloor, Vec3{X: 30, Y: -30}))
	d := r.Root().Add(placeable("D", ZoneFloor, Vec3{X: 80, Y: -40}))

	env.world.Sorter().Sort(r)

	// a & c don't touch, but b chains them together
	assert.Equal(t, 20, a.Order())
	assert.Equal(t, 21, b.Order())
	assert.Equal(t, 22, c.Order())
	assert.Equal(t, 20, d.Order())
}

func TestSortTieBreak(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	front := r.Root().Add(placeable("A", ZoneFloor, Vec3{X: 0, Y: -20, Z: 0}))
	back := r.Root().Add(placeable("B", ZoneFloor, Vec3{X: 5, Y: -20, Z: 1}))
	named := r.Root().Add(placeable("C", ZoneFloor, Vec3{X: 10, Y: -20, Z: 0}))

	env.world.Sorter().Sort(r)

	assert.Equal(t, 20, back.Order())
	assert.Equal(t, 21, front.Order())
	assert.Equal(t, 22, named.Order())
}

func TestSortSkipsDragged(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	a := r.Root().Add(placeable("A", ZoneFloor, Vec3{X: 0, Y: -10}))
	b := r.Root().Add(placeable("B", ZoneFloor, Vec3{X: 5, Y: -20}))
	b.applyOrder(1000)
	b.Placement.dragging = true

	env.world.Sorter().Sort(r)

	assert.Equal(t, 20, a.Order())
	assert.Equal(t, 1000, b.Order())
}

func TestSortSubVisualsFollow(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	a := r.Root().Add(placeable("A", ZoneFloor, Vec3{X: 0, Y: -10}))
	b := r.Root().Add(placeable("B", ZoneFloor, Vec3{X: 5, Y: -20}))
	cushion := b.Add(NewNode("cushion", WithSize(10, 4)))

	kid := r.Root().Add(NewNode("Kid", AsActor(RectAt(0, 0, 30, 30), Vec3{Y: 10}), WithSize(10, 30)))
	kid.SetParent(b, false)
	apple := env.item("Items/Apple", Vec3{})
	kid.Actor.Hold(apple)

	env.world.Sorter().Sort(r)

	assert.Equal(t, 20, a.Order())
	assert.Equal(t, 21, b.Order())
	assert.Equal(t, 21, cushion.Order())
	assert.Equal(t, 21, kid.Order())
	assert.Equal(t, 100, apple.Order())
}

func TestSortDrawsLowerItemsOnTop(t *testing.T) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	rng := rand.New(rand.NewSource(7))

	items := []*Node{}
	for i := 0; i < 40; i++ {
		at := Vec3{X: rng.Float64()*180 - 90, Y: rng.Float64()*80 - 40}
		items = append(items, r.Root().Add(placeable(fmt.Sprintf("Item%d", i), ZoneFloor, at)))
	}

	env.world.Sorter().Sort(r)

	for i, a := range items {
		for _, b := range items[i+1:] {
			if !a.WorldBounds().Overlaps(b.WorldBounds()) {
				continue
			}
			ay, by := a.WorldPosition().Y, b.WorldPosition().Y
			switch {
			case ay > by:
				assert.True(t, a.Order() < b.Order(), "%s should draw behind %s", a.Name(), b.Name())
			case ay < by:
				assert.True(t, a.Order() > b.Order(), "%s should draw behind %s", b.Name(), a.Name())
			}
		}
	}
	assert.Equal(t, 0, env.world.Sorter().Sort(r))
}
