/* this file is a small subset of the TMX format, enough to write a room's
records out as a Tiled object layer and read them back.

Objects carry their exact record (identity, local transform, custom state)
as properties; x/y/width/height are only there so Tiled draws something
sensible, laid out y-down from the room's top left corner.
*/
package room

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
)

const (
	tmxPropTemplate = "template"
	tmxPropPosX     = "pos.x"
	tmxPropPosY     = "pos.y"
	tmxPropPosZ     = "pos.z"
	tmxPropScaleX   = "scale.x"
	tmxPropScaleY   = "scale.y"
	tmxPropScaleZ   = "scale.z"
	tmxPropRotation = "rotation"

	// custom state keys are written with this prefix
	tmxStatePrefix = "state:"
)

// Map is a TMX file structure holding one object layer per exported room.
type Map struct {
	XMLName        xml.Name       `xml:"map"`
	Version        string         `xml:"version,attr"`
	Orientation    string         `xml:"orientation,attr"` // always "orthogonal"
	RenderOrder    string         `xml:"renderorder,attr"`
	Width          int            `xml:"width,attr"`      // in tiles
	Height         int            `xml:"height,attr"`     // in tiles
	TileWidth      int            `xml:"tilewidth,attr"`  // in pixels
	TileHeight     int            `xml:"tileheight,attr"` // in pixels
	NextObjectID   uint           `xml:"nextobjectid,attr"`
	RootProperties []*Property    `xml:"properties>property"`
	ObjectGroups   []*ObjectGroup `xml:"objectgroup"`
}

// ObjectGroup is a TMX object layer
type ObjectGroup struct {
	ID         uint        `xml:"id,attr"`
	Name       string      `xml:"name,attr"`
	Properties []*Property `xml:"properties>property"`
	Objects    []*Object   `xml:"object"`
}

// Object is a TMX object, here one saved record
type Object struct {
	ID         uint        `xml:"id,attr"`
	Name       string      `xml:"name,attr"`
	Type       string      `xml:"type,attr,omitempty"`
	X          float64     `xml:"x,attr"`
	Y          float64     `xml:"y,attr"`
	Width      float64     `xml:"width,attr,omitempty"`
	Height     float64     `xml:"height,attr,omitempty"`
	Rotation   float64     `xml:"rotation,attr,omitempty"` // degrees clockwise
	Properties []*Property `xml:"properties>property"`
}

// Property is a TMX file structure which holds a Tiled property.
type Property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Type  string `xml:"type,attr"` // string (default), int, float, bool
}

// NewMap returns an empty map sized to hold a room of `bounds` in tiles
// of `tile` px.
func NewMap(bounds Rect, tile int) *Map {
	if tile <= 0 {
		tile = 32
	}
	return &Map{
		Version:        "1.2",
		Orientation:    "orthogonal",
		RenderOrder:    "right-down",
		Width:          tilesFor(bounds.Width(), tile),
		Height:         tilesFor(bounds.Height(), tile),
		TileWidth:      tile,
		TileHeight:     tile,
		NextObjectID:   1,
		RootProperties: []*Property{},
		ObjectGroups:   []*ObjectGroup{},
	}
}

func tilesFor(px float64, tile int) int {
	n := int(px) / tile
	if int(px)%tile != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// MapProperties returns properties set on the map itself
func (m *Map) MapProperties() *Properties {
	return newPropertiesFromList(m.RootProperties)
}

// SetMapProperties sets properties on the map
func (m *Map) SetMapProperties(in *Properties) {
	m.RootProperties = in.toList()
}

// AddRoom writes one object layer named `prefix` holding recs. `bounds`
// is the room's size, used to lay objects out y-down from its top left.
// Records without a width/height in their state are drawn `size` square.
func (m *Map) AddRoom(prefix string, bounds Rect, recs []*Record, size float64) *ObjectGroup {
	g := &ObjectGroup{
		ID:         uint(len(m.ObjectGroups) + 1),
		Name:       prefix,
		Properties: []*Property{},
		Objects:    []*Object{},
	}

	w, h := bounds.Width(), bounds.Height()
	for _, p := range Layout(recs, prefix) {
		r := p.Record
		ow, oh := recordSize(r, size)
		ow *= p.Scale.X
		oh *= p.Scale.Y

		props := r.State.Clone()
		state := props.toList()
		for _, s := range state {
			s.Name = tmxStatePrefix + s.Name
		}

		meta := NewProperties()
		meta.SetString(tmxPropTemplate, r.Template)
		meta.SetFloat(tmxPropPosX, r.Position.X)
		meta.SetFloat(tmxPropPosY, r.Position.Y)
		meta.SetFloat(tmxPropPosZ, r.Position.Z)
		meta.SetFloat(tmxPropScaleX, r.Scale.X)
		meta.SetFloat(tmxPropScaleY, r.Scale.Y)
		meta.SetFloat(tmxPropScaleZ, r.Scale.Z)
		meta.SetFloat(tmxPropRotation, r.Rotation)

		g.Objects = append(g.Objects, &Object{
			ID:         m.NextObjectID,
			Name:       r.Identity,
			Type:       r.Template,
			X:          p.Position.X + w/2 - ow/2,
			Y:          h/2 - (p.Position.Y + oh/2),
			Width:      ow,
			Height:     oh,
			Rotation:   -r.Rotation,
			Properties: append(meta.toList(), state...),
		})
		m.NextObjectID++
	}

	m.ObjectGroups = append(m.ObjectGroups, g)
	return g
}

// recordSize reads the width & height a record was saved with
func recordSize(r *Record, size float64) (float64, float64) {
	if r.State == nil {
		return size, size
	}
	w, wok := r.State.Float(KeyWidth)
	h, hok := r.State.Float(KeyHeight)
	if !wok || !hok || w <= 0 || h <= 0 {
		return size, size
	}
	return w, h
}

// Records reads every object of every layer back into records.
func (m *Map) Records() ([]*Record, error) {
	out := []*Record{}
	for _, g := range m.ObjectGroups {
		for _, o := range g.Objects {
			r, err := o.record()
			if err != nil {
				return nil, fmt.Errorf("object %d (%s): %w", o.ID, o.Name, err)
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (o *Object) record() (*Record, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("object has no identity")
	}

	meta := []*Property{}
	state := []*Property{}
	for _, p := range o.Properties {
		if strings.HasPrefix(p.Name, tmxStatePrefix) {
			c := *p
			c.Name = strings.TrimPrefix(p.Name, tmxStatePrefix)
			state = append(state, &c)
		} else {
			meta = append(meta, p)
		}
	}

	props := newPropertiesFromList(meta)
	r := NewRecord(o.Name)
	r.Template, _ = props.String(tmxPropTemplate)
	r.State = newPropertiesFromList(state)

	float := func(key string, def float64) float64 {
		if v, ok := props.Float(key); ok {
			return v
		}
		return def
	}
	r.Position = Vec3{X: float(tmxPropPosX, 0), Y: float(tmxPropPosY, 0), Z: float(tmxPropPosZ, 0)}
	r.Scale = Vec3{X: float(tmxPropScaleX, 1), Y: float(tmxPropScaleY, 1), Z: float(tmxPropScaleZ, 1)}
	r.Rotation = float(tmxPropRotation, -o.Rotation)
	return r, nil
}

// Encode the map as XML to a io.Writer stream
func (m *Map) Encode(w io.Writer) error {
	for i, g := range m.ObjectGroups {
		g.ID = uint(i + 1)
	}
	return xml.NewEncoder(w).Encode(m)
}

// DecodeMap reads TMX map XML
func DecodeMap(r io.Reader) (*Map, error) {
	m := &Map{}
	if err := xml.NewDecoder(r).Decode(m); err != nil {
		return nil, err
	}
	if m.Orientation != "" && m.Orientation != "orthogonal" {
		return nil, fmt.Errorf("unsupported orientation %q", m.Orientation)
	}
	return m, nil
}

// OpenMap reads a TMX file from disk
func OpenMap(fname string) (*Map, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeMap(f)
}

// WriteFile encodes the map to fname
func (m *Map) WriteFile(fname string) error {
	buff := bytes.Buffer{}
	err := m.Encode(&buff)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fname, buff.Bytes(), 0644)
}

// parseValue guesses a property type from a raw command line value
func parseValue(p *Properties, k, v string) {
	switch v {
	case "true":
		p.SetBool(k, true)
		return
	case "false":
		p.SetBool(k, false)
		return
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		p.SetInt(k, int(i))
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		p.SetFloat(k, f)
		return
	}
	p.SetString(k, v)
}

// ParseProperties turns key=value strings (eg. from a cli) into properties
func ParseProperties(in map[string]string) *Properties {
	p := NewProperties()
	for k, v := range in {
		parseValue(p, k, v)
	}
	return p
}
