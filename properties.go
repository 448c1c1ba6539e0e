package room

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	// Property types, these match the names Tiled uses so the tmx export
	// can pass them straight through.
	// see doc.mapeditor.org/en/stable/reference/tmx-map-format/#properties
	PropString = "string"
	PropInt    = "int"
	PropFloat  = "float"
	PropBool   = "bool"
)

// Well known custom state keys.
const (
	// anchoring / sizing for UI style objects
	KeyAnchoredX = "anchoredX"
	KeyAnchoredY = "anchoredY"
	KeyWidth     = "width"
	KeyHeight    = "height"

	// interaction flags
	KeyIsOpen      = "isOpen"
	KeyTemperature = "temperature"
	KeyInteracted  = "interacted"

	// provenance of an applied visual override
	KeyVisualKind   = "visual.kind"
	KeyVisualRef    = "visual.ref"
	KeyVisualColors = "visual.colors"
	KeyVisualIndex  = "visual.index"
)

// Properties is the open custom state bag carried by every record. Each key
// holds exactly one typed value; setting a key with another type replaces it.
type Properties struct {
	ints    map[string]int
	floats  map[string]float64
	strings map[string]string
	bools   map[string]bool
}

// NewProperties returns an empty properties
func NewProperties() *Properties {
	return &Properties{
		ints:    map[string]int{},
		floats:  map[string]float64{},
		strings: map[string]string{},
		bools:   map[string]bool{},
	}
}

// Merge properties `o` into this properties
func (p *Properties) Merge(o *Properties) *Properties {
	if o == nil {
		return p
	}
	for k, v := range o.ints {
		p.SetInt(k, v)
	}
	for k, v := range o.floats {
		p.SetFloat(k, v)
	}
	for k, v := range o.strings {
		p.SetString(k, v)
	}
	for k, v := range o.bools {
		p.SetBool(k, v)
	}
	return p
}

// Clone returns a deep copy
func (p *Properties) Clone() *Properties {
	return NewProperties().Merge(p)
}

// Len is the number of keys set
func (p *Properties) Len() int {
	return len(p.ints) + len(p.floats) + len(p.strings) + len(p.bools)
}

// Keys returns all set keys, sorted
func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.Len())
	for k := range p.ints {
		keys = append(keys, k)
	}
	for k := range p.floats {
		keys = append(keys, k)
	}
	for k := range p.strings {
		keys = append(keys, k)
	}
	for k := range p.bools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has returns if the key is set with any type
func (p *Properties) Has(key string) bool {
	_, i := p.ints[key]
	_, f := p.floats[key]
	_, s := p.strings[key]
	_, b := p.bools[key]
	return i || f || s || b
}

// Delete removes the key whatever its type
func (p *Properties) Delete(key string) {
	delete(p.ints, key)
	delete(p.floats, key)
	delete(p.strings, key)
	delete(p.bools, key)
}

// Equal compares two bags, floats within epsilon.
func (p *Properties) Equal(o *Properties) bool {
	if p == nil || o == nil {
		return (p == nil || p.Len() == 0) && (o == nil || o.Len() == 0)
	}
	if p.Len() != o.Len() {
		return false
	}
	for k, v := range p.ints {
		if w, ok := o.ints[k]; !ok || w != v {
			return false
		}
	}
	for k, v := range p.floats {
		w, ok := o.floats[k]
		if !ok || v-w > epsilon || w-v > epsilon {
			return false
		}
	}
	for k, v := range p.strings {
		if w, ok := o.strings[k]; !ok || w != v {
			return false
		}
	}
	for k, v := range p.bools {
		if w, ok := o.bools[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func (p *Properties) String(key string) (string, bool) {
	v, ok := p.strings[key]
	return v, ok
}

func (p *Properties) SetString(key, value string) {
	p.Delete(key)
	p.strings[key] = value
}

func (p *Properties) Int(key string) (int, bool) {
	v, ok := p.ints[key]
	return v, ok
}

func (p *Properties) SetInt(key string, value int) {
	p.Delete(key)
	p.ints[key] = value
}

func (p *Properties) Float(key string) (float64, bool) {
	v, ok := p.floats[key]
	return v, ok
}

func (p *Properties) SetFloat(key string, value float64) {
	p.Delete(key)
	p.floats[key] = value
}

func (p *Properties) Bool(key string) (bool, bool) {
	v, ok := p.bools[key]
	return v, ok
}

func (p *Properties) SetBool(key string, value bool) {
	p.Delete(key)
	p.bools[key] = value
}

// propertyBlock is the on-disk shape of a Properties, shared by the json
// document and the sqlite data column.
type propertyBlock struct {
	I map[string]int     `json:"I,omitempty"`
	F map[string]float64 `json:"F,omitempty"`
	S map[string]string  `json:"S,omitempty"`
	B map[string]bool    `json:"B,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (p *Properties) MarshalJSON() ([]byte, error) {
	return json.Marshal(propertyBlock{I: p.ints, F: p.floats, S: p.strings, B: p.bools})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Properties) UnmarshalJSON(data []byte) error {
	blk := propertyBlock{}
	if err := json.Unmarshal(data, &blk); err != nil {
		return err
	}

	*p = *NewProperties()
	for k, v := range blk.I {
		p.ints[k] = v
	}
	for k, v := range blk.F {
		p.floats[k] = v
	}
	for k, v := range blk.S {
		p.strings[k] = v
	}
	for k, v := range blk.B {
		p.bools[k] = v
	}
	return nil
}

// toList flattens properties into the tmx []*Property form, sorted by name
// so output is stable.
func (p *Properties) toList() []*Property {
	ps := []*Property{}
	for k, v := range p.ints {
		ps = append(ps, &Property{Name: k, Value: fmt.Sprintf("%d", v), Type: PropInt})
	}
	for k, v := range p.floats {
		ps = append(ps, &Property{Name: k, Value: strconv.FormatFloat(v, 'g', -1, 64), Type: PropFloat})
	}
	for k, v := range p.bools {
		ps = append(ps, &Property{Name: k, Value: fmt.Sprintf("%v", v), Type: PropBool})
	}
	for k, v := range p.strings {
		ps = append(ps, &Property{Name: k, Value: v, Type: PropString})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return ps
}

// newPropertiesFromList turns the tmx []*Property back into Properties.
func newPropertiesFromList(in []*Property) *Properties {
	ps := NewProperties()

	for _, i := range in {
		switch i.Type {
		case PropInt:
			v, _ := strconv.ParseInt(i.Value, 10, 64)
			ps.SetInt(i.Name, int(v))
		case PropFloat:
			v, _ := strconv.ParseFloat(i.Value, 64)
			ps.SetFloat(i.Name, v)
		case PropBool:
			ps.SetBool(i.Name, i.Value == "true")
		default:
			ps.SetString(i.Name, i.Value)
		}
	}

	return ps
}
