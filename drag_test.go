package room

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScroller never pans: screen & world space are the same
type fixedScroller struct {
	nudges int
}

func (f *fixedScroller) ScreenToWorld(p Vec3) Vec3 { return p }
func (f *fixedScroller) Nudge(pointer Vec3, dt time.Duration) { f.nudges++ }

func newDragEnv(t *testing.T) (*testEnv, *Room, *DragController) {
	env := newTestEnv(nil)
	r := env.room("Room1")
	r.Activate()
	return env, r, NewDragController(env.world, &fixedScroller{})
}

func savedRecord(env *testEnv, id string) *Record {
	for _, rec := range env.store.Load().WithPrefix("World1/Room1/") {
		if rec.Identity == id {
			return rec
		}
	}
	return nil
}

func kid(at Vec3) *Node {
	return NewNode("Kid", AsActor(RectAt(0, 0, 30, 40), Vec3{X: 5, Y: 5}), WithSize(10, 30), WithPosition(at))
}

func TestDragPlaceSaves(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	require.True(t, r.Add(chair))
	saves := env.store.Saves

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	assert.Equal(t, Dragging, d.State())
	assert.Equal(t, chair, d.Target())
	assert.Equal(t, 1000, chair.Order())

	assert.True(t, d.Move(Vec3{X: 50, Y: -30}, time.Millisecond))
	assert.Equal(t, OutlineValid, chair.Outline())

	result := d.End(Vec3{X: 50, Y: -30})

	assert.Equal(t, DropPlaced, result)
	assert.Equal(t, DragIdle, d.State())
	assert.Equal(t, 20, chair.Order())
	assert.Equal(t, OutlineNone, chair.Outline())
	assert.Equal(t, saves+1, env.store.Saves)

	rec := savedRecord(env, "World1/Room1/Chair")
	require.NotNil(t, rec)
	assert.Equal(t, Vec3{X: 50, Y: -30}, rec.Position)
}

func TestDragKeepsGrabOffset(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)

	require.Nil(t, d.Begin(chair, Vec3{X: 5, Y: -20}))
	d.Move(Vec3{X: 25, Y: -20}, time.Millisecond)

	assert.Equal(t, Vec3{X: 20, Y: -25}, chair.Local())
}

func TestDragRevertsInvalidDrop(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)
	saves := env.store.Saves

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	assert.False(t, d.Move(Vec3{Y: 25}, time.Millisecond))
	assert.Equal(t, OutlineInvalid, chair.Outline())

	result := d.End(Vec3{Y: 25})

	assert.Equal(t, DropReverted, result)
	assert.Equal(t, Vec3{Y: -25}, chair.Local())
	assert.Equal(t, OutlineNone, chair.Outline())
	assert.Equal(t, 20, chair.Order())
	assert.Equal(t, saves, env.store.Saves)
	assert.False(t, chair.Destroyed())
}

func TestDragDestroysWithoutValidSpot(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: 25})
	r.Add(chair)
	require.Nil(t, r.Registry().SaveAll())
	require.Len(t, env.store.Load().WithPrefix(r.Prefix()), 1)

	require.Nil(t, d.Begin(chair, Vec3{Y: 25}))
	assert.False(t, chair.Placement.HasBaseline())

	result := d.End(Vec3{Y: 25})

	assert.Equal(t, DropDestroyed, result)
	assert.True(t, chair.Destroyed())
	assert.Equal(t, 0, r.Registry().Len())
	assert.Len(t, env.store.Load().WithPrefix(r.Prefix()), 0)
}

func TestDragDiscard(t *testing.T) {
	env, r, d := newDragEnv(t)
	env.world.Overlay().Add(NewNode("Bin", AsDiscard(), WithSize(40, 40), WithPosition(Vec3{X: 300})))
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	result := d.End(Vec3{X: 300})

	assert.Equal(t, DropDiscarded, result)
	assert.True(t, chair.Destroyed())
	assert.Len(t, env.store.Load().WithPrefix(r.Prefix()), 0)
}

func TestDragClampsToRoom(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	valid := d.Move(Vec3{X: 150, Y: -25}, time.Millisecond)

	// room edge is x=100, the margin lets the visual hang 10 over
	assert.True(t, valid)
	assert.Equal(t, Vec3{X: 100, Y: -25}, chair.Local())
}

func TestDragOrderFollowsSubVisuals(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	cushion := chair.Add(NewNode("cushion", WithSize(10, 4)))
	r.Add(chair)

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	assert.Equal(t, 1000, cushion.Order())

	d.End(Vec3{Y: -25})
	assert.Equal(t, 20, cushion.Order())
}

func TestDragHold(t *testing.T) {
	env, r, d := newDragEnv(t)
	k := r.Root().Add(kid(Vec3{X: 50, Y: -25}))
	apple := env.item("Items/Apple", Vec3{X: -80, Y: -30})
	r.Add(apple)

	require.Nil(t, d.Begin(apple, Vec3{X: -80, Y: -30}))
	result := d.End(Vec3{X: 50, Y: -25})

	assert.Equal(t, DropHeld, result)
	assert.Equal(t, k.Actor, apple.Holdable.Holder())
	assert.Equal(t, apple, k.Actor.Held())
	assert.Equal(t, k.Part("hand"), apple.Parent())
	assert.Equal(t, 100, apple.Order())
	assert.NotNil(t, savedRecord(env, "World1/Room1/Kid/hand/Apple"))

	// picking it up again takes it out of the hand
	require.Nil(t, d.Begin(apple, Vec3{X: 55, Y: -20}))
	assert.Nil(t, k.Actor.Held())
	assert.Equal(t, r.Root(), apple.Parent())
	assert.Equal(t, Vec3{X: 55, Y: -20}, apple.WorldPosition())

	d.Cancel()
	assert.Equal(t, DragIdle, d.State())
	assert.Equal(t, r.Root(), apple.Parent())
}

func TestDragSeat(t *testing.T) {
	_, r, d := newDragEnv(t)
	bed := r.Root().Add(NewNode("Bed", AsPlaceable(ZoneFloor), AsSeat(SeatBed, Vec3{Y: 5}), WithSize(40, 20), WithPosition(Vec3{X: -50, Y: -25})))
	k := r.Root().Add(kid(Vec3{X: 50, Y: -25}))

	require.Nil(t, d.Begin(k, Vec3{X: 50, Y: -25}))
	result := d.End(Vec3{X: -50, Y: -25})

	assert.Equal(t, DropSeated, result)
	assert.Equal(t, Sleeping, k.Actor.Posture())
	assert.Equal(t, bed, k.Parent())
	assert.Equal(t, k.Actor, bed.Seat.Occupant())

	// dragging a sleeping actor wakes it first
	require.Nil(t, d.Begin(k, Vec3{X: -50, Y: -20}))
	assert.Equal(t, Standing, k.Actor.Posture())
	assert.Nil(t, bed.Seat.Occupant())
	assert.Equal(t, r.Root(), k.Parent())
	assert.Equal(t, Vec3{X: -50, Y: -20}, k.WorldPosition())
	d.Cancel()
}

func TestDragNonPlaceableReverts(t *testing.T) {
	_, r, d := newDragEnv(t)
	k := r.Root().Add(kid(Vec3{X: 50, Y: -25}))

	require.Nil(t, d.Begin(k, Vec3{X: 50, Y: -25}))
	d.Move(Vec3{X: 80, Y: -30}, time.Millisecond)
	result := d.End(Vec3{X: 500, Y: 500})

	assert.Equal(t, DropReverted, result)
	assert.Equal(t, Vec3{X: 50, Y: -25}, k.Local())
	assert.Equal(t, OutlineNone, k.Outline())
}

func TestDragEater(t *testing.T) {
	env, r, d := newDragEnv(t)
	dog := r.Root().Add(NewNode("Dog", AsEater(), WithSize(30, 20), WithPosition(Vec3{X: 60, Y: -30})))
	apple := env.item("Items/Apple", Vec3{X: -60, Y: -30})
	apple.State.SetBool(KeyConsumable, true)
	apple.State.SetInt(KeyBiteStages, 2)
	r.Add(apple)

	require.Nil(t, d.Begin(apple, Vec3{X: -60, Y: -30}))
	result := d.End(Vec3{X: 60, Y: -30})

	assert.Equal(t, DropInteracted, result)
	assert.False(t, apple.Destroyed())
	rec := savedRecord(env, "World1/Room1/Apple")
	require.NotNil(t, rec)
	bites, _ := rec.State.Int(KeyBites)
	assert.Equal(t, 1, bites)

	require.Nil(t, d.Begin(apple, Vec3{X: -60, Y: -30}))
	result = d.End(Vec3{X: 60, Y: -30})

	assert.Equal(t, DropConsumed, result)
	assert.True(t, apple.Destroyed())
	eaten, _ := dog.State.Int(KeyEaten)
	assert.Equal(t, 1, eaten)
	assert.Nil(t, savedRecord(env, "World1/Room1/Apple"))
}

func TestDragContainer(t *testing.T) {
	env, r, d := newDragEnv(t)
	fridge := NewNode("Fridge", AsContainer(Vec3{X: -10}, Vec3{X: 10}), Tracked(), WithSize(40, 60), WithPosition(Vec3{X: 60, Y: -20}))
	require.True(t, r.Add(fridge))
	chair := env.item("Items/Chair", Vec3{X: -60, Y: -25})
	r.Add(chair)

	// closed, so the chair just lands in front of it
	require.Nil(t, d.Begin(chair, Vec3{X: -60, Y: -25}))
	d.Move(Vec3{X: 60, Y: -20}, time.Millisecond)
	assert.Equal(t, DropPlaced, d.End(Vec3{X: 60, Y: -20}))
	assert.Equal(t, r.Root(), chair.Parent())

	require.Nil(t, env.world.ToggleOpen(fridge))

	require.Nil(t, d.Begin(chair, Vec3{X: 60, Y: -20}))
	result := d.End(Vec3{X: 60, Y: -20})

	assert.Equal(t, DropInteracted, result)
	assert.Equal(t, fridge.Part("slot0"), chair.Parent())
	assert.Equal(t, Vec3{}, chair.Local())
	stored, _ := chair.State.String(KeyStoredIn)
	assert.Equal(t, "Fridge", stored)
	assert.NotNil(t, savedRecord(env, "World1/Room1/Fridge/slot0/Chair"))
}

func TestDragErrors(t *testing.T) {
	env, r, d := newDragEnv(t)
	a := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(a)

	err := d.Begin(NewNode("Loose"), Vec3{})
	assert.True(t, errors.Is(err, ErrNotDraggable))
	assert.Equal(t, DragIdle, d.State())

	require.Nil(t, d.Begin(a, Vec3{Y: -25}))
	err = d.Begin(a, Vec3{Y: -25})
	assert.True(t, errors.Is(err, ErrDragInProgress))

	d.Cancel()
	a.Destroy()
	assert.True(t, errors.Is(d.Begin(a, Vec3{}), ErrNotDraggable))
	assert.Equal(t, DropNone, d.End(Vec3{}))
}

func TestDragCancel(t *testing.T) {
	env, r, d := newDragEnv(t)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)

	require.Nil(t, d.Begin(chair, Vec3{Y: -25}))
	d.Move(Vec3{X: 40, Y: 25}, time.Millisecond)
	d.Cancel()

	assert.Equal(t, Vec3{Y: -25}, chair.Local())
	assert.Equal(t, 20, chair.Order())
	assert.Equal(t, OutlineNone, chair.Outline())
	assert.False(t, chair.Placement.dragging)
}

func TestDragHandle(t *testing.T) {
	env, r, _ := newDragEnv(t)
	scroller := &fixedScroller{}
	d := NewDragController(env.world, scroller)
	chair := env.item("Items/Chair", Vec3{Y: -25})
	r.Add(chair)

	result, err := d.Handle(Pointer{Pos: Vec3{X: 500}, Phase: PointerPress}, nil, 0)
	assert.Nil(t, err)
	assert.Equal(t, DropNone, result)
	assert.Equal(t, DragIdle, d.State())

	_, err = d.Handle(Pointer{Pos: Vec3{Y: -25}, Phase: PointerPress}, chair, 0)
	require.Nil(t, err)
	d.Handle(Pointer{Pos: Vec3{X: -40, Y: -25}, Phase: PointerMove}, nil, 16*time.Millisecond)
	result, err = d.Handle(Pointer{Pos: Vec3{X: -40, Y: -25}, Phase: PointerRelease}, nil, 0)

	assert.Nil(t, err)
	assert.Equal(t, DropPlaced, result)
	assert.Equal(t, 1, scroller.nudges)
	assert.Equal(t, Vec3{X: -40, Y: -25}, chair.Local())
}

func TestDragIntoNeighbourRoom(t *testing.T) {
	env, r1, d := newDragEnv(t)
	r2 := env.roomAt("Room2", 200)
	r2.Activate()
	chair := env.item("Items/Chair", Vec3{X: 50, Y: -25})
	require.True(t, r1.Add(chair))
	require.Nil(t, r1.Registry().SaveAll())

	require.Nil(t, d.Begin(chair, Vec3{X: 50, Y: -25}))
	d.Move(Vec3{X: 104, Y: -25}, time.Millisecond)
	result := d.End(Vec3{X: 104, Y: -25})

	require.Equal(t, DropPlaced, result)
	assert.Equal(t, r2.Root(), chair.Parent())
	doc := env.store.Load()
	assert.Len(t, doc.WithPrefix(r1.Prefix()), 0)
	require.Len(t, doc.WithPrefix(r2.Prefix()), 1)
	assert.Equal(t, "World1/Room2/Chair", doc.WithPrefix(r2.Prefix())[0].Identity)

	// after a reload only the room it went to has it
	env2 := newTestEnv(env.store)
	again1 := env2.room("Room1")
	again2 := env2.roomAt("Room2", 200)
	again1.Activate()
	again2.Activate()

	assert.Equal(t, 0, again1.Registry().Len())
	assert.Nil(t, again1.Root().Child("Chair"))
	assert.Equal(t, 1, again2.Registry().Len())
	moved := again2.Root().Child("Chair")
	require.NotNil(t, moved)
	assert.Equal(t, Vec3{X: 100, Y: -25}, moved.WorldPosition())
}

func TestDragSeatPersists(t *testing.T) {
	env, r, d := newDragEnv(t)
	bed := env.item("Items/Bed", Vec3{X: -50, Y: -25})
	require.True(t, r.Add(bed))
	k := env.item("People/Kid", Vec3{X: 50, Y: -25})
	require.True(t, r.Add(k))
	saves := env.store.Saves

	require.Nil(t, d.Begin(k, Vec3{X: 50, Y: -25}))
	require.Equal(t, DropSeated, d.End(Vec3{X: -50, Y: -25}))

	assert.Equal(t, saves+1, env.store.Saves)
	rec, ok := r.Registry().Lookup(k)
	require.True(t, ok)
	assert.Equal(t, "World1/Room1/Bed/Kid", rec.Identity)
	assert.Equal(t, Vec3{Y: 5}, rec.Position)

	require.Nil(t, env.world.Save())
	assert.Nil(t, savedRecord(env, "World1/Room1/Kid"))

	env2 := newTestEnv(env.store)
	r2 := env2.room("Room1")
	assert.Equal(t, 2, r2.Activate())

	k2 := r2.Root().Path("Bed", "Kid")
	require.NotNil(t, k2)
	assert.Equal(t, Vec3{X: -50, Y: -20}, k2.WorldPosition())
	assert.Equal(t, Sleeping, k2.Actor.Posture())
	assert.Equal(t, k2.Actor, r2.Root().Child("Bed").Seat.Occupant())
}

func TestDragWakeRefreshesRecord(t *testing.T) {
	env, r, d := newDragEnv(t)
	bed := env.item("Items/Bed", Vec3{X: -50, Y: -25})
	r.Add(bed)
	k := env.item("People/Kid", Vec3{X: 50, Y: -25})
	r.Add(k)
	require.True(t, k.Actor.Sit(bed.Seat))

	require.Nil(t, d.Begin(k, Vec3{X: -50, Y: -20}))

	rec, ok := r.Registry().Lookup(k)
	require.True(t, ok)
	assert.Equal(t, "World1/Room1/Kid", rec.Identity)
	assert.Equal(t, Vec3{X: -50, Y: -20}, rec.Position)
	d.Cancel()
}

func TestDragHoldUsesConfiguredOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeldOrder = 300
	env := &testEnv{store: NewMemoryStore()}
	env.world = NewWorld(cfg, env.store, WithLoader(testCatalog()))
	r := env.room("Room1")
	r.Activate()
	d := NewDragController(env.world, &fixedScroller{})
	k := r.Root().Add(kid(Vec3{X: 50, Y: -25}))
	apple := env.item("Items/Apple", Vec3{X: -80, Y: -30})
	r.Add(apple)

	require.Nil(t, d.Begin(apple, Vec3{X: -80, Y: -30}))
	require.Equal(t, DropHeld, d.End(Vec3{X: 50, Y: -25}))
	assert.Equal(t, 300, apple.Order())

	env.world.Tick(time.Millisecond)
	assert.Equal(t, 300, apple.Order())
	assert.Equal(t, k.Actor, apple.Holdable.Holder())
}
