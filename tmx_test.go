package room

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmxRecords() []*Record {
	table := NewRecord("World1/Room1/Table")
	table.Template = "Items/Table"
	table.Position = Vec3{X: -50, Y: -30, Z: 1}
	table.State.SetFloat(KeyWidth, 40)
	table.State.SetFloat(KeyHeight, 20)

	apple := NewRecord("World1/Room1/Table/top/Apple")
	apple.Template = "Items/Apple"
	apple.Position = Vec3{Y: 12}
	apple.Rotation = 15
	apple.State.SetInt(KeyBites, 1)
	apple.State.SetBool(KeyConsumable, true)
	apple.State.SetString(KeyStoredIn, "Fridge")

	return []*Record{table, apple}
}

func TestMapAddRoom(t *testing.T) {
	m := NewMap(RectAt(0, 0, 200, 100), 32)

	g := m.AddRoom("World1/Room1/", RectAt(0, 0, 200, 100), tmxRecords(), 10)

	assert.Equal(t, 7, m.Width)
	assert.Equal(t, 4, m.Height)
	require.Len(t, g.Objects, 2)

	table := g.Objects[0]
	assert.Equal(t, "World1/Room1/Table", table.Name)
	assert.Equal(t, "Items/Table", table.Type)
	assert.Equal(t, 30.0, table.X)
	assert.Equal(t, 70.0, table.Y)
	assert.Equal(t, 40.0, table.Width)

	// laid out relative to the table, drawn at the default size
	apple := g.Objects[1]
	assert.Equal(t, 45.0, apple.X)
	assert.Equal(t, 63.0, apple.Y)
	assert.Equal(t, 10.0, apple.Width)
	assert.Equal(t, -15.0, apple.Rotation)
	assert.Equal(t, uint(3), m.NextObjectID)
}

func TestMapRoundTrip(t *testing.T) {
	m := NewMap(RectAt(0, 0, 200, 100), 32)
	props := NewProperties()
	props.SetString("world", "World1")
	m.SetMapProperties(props)
	m.AddRoom("World1/Room1/", RectAt(0, 0, 200, 100), tmxRecords(), 10)

	buf := bytes.Buffer{}
	require.Nil(t, m.Encode(&buf))

	out, err := DecodeMap(&buf)
	require.Nil(t, err)

	assert.True(t, props.Equal(out.MapProperties()))
	recs, err := out.Records()
	require.Nil(t, err)

	expect := tmxRecords()
	require.Len(t, recs, len(expect))
	for i, e := range expect {
		assert.Equal(t, e.Identity, recs[i].Identity)
		assert.Equal(t, e.Template, recs[i].Template)
		assert.True(t, e.Position.Equal(recs[i].Position))
		assert.True(t, e.Scale.Equal(recs[i].Scale))
		assert.InDelta(t, e.Rotation, recs[i].Rotation, epsilon)
		assert.True(t, e.State.Equal(recs[i].State), "state of %s", e.Identity)
	}
}

func TestMapWriteFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "room.tmx")
	m := NewMap(RectAt(0, 0, 200, 100), 0)
	m.AddRoom("World1/Room1/", RectAt(0, 0, 200, 100), tmxRecords(), 10)

	require.Nil(t, m.WriteFile(fname))
	out, err := OpenMap(fname)

	require.Nil(t, err)
	assert.Equal(t, 32, out.TileWidth)
	require.Len(t, out.ObjectGroups, 1)
	assert.Equal(t, "World1/Room1/", out.ObjectGroups[0].Name)
	assert.Equal(t, uint(1), out.ObjectGroups[0].ID)
}

func TestDecodeMapErrors(t *testing.T) {
	_, err := DecodeMap(strings.NewReader(`<map orientation="isometric"></map>`))
	assert.NotNil(t, err)

	_, err = DecodeMap(strings.NewReader(`<map`))
	assert.NotNil(t, err)

	m, err := DecodeMap(strings.NewReader(`<map><objectgroup><object id="1"/></objectgroup></map>`))
	require.Nil(t, err)
	_, err = m.Records()
	assert.NotNil(t, err)
}
