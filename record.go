package room

import (
	"strings"
)

// Record is the persisted state of one placed object.
type Record struct {
	// Identity is "<world>/<room>/<ancestor>/.../<name>" and is unique
	// within a Document.
	Identity string `json:"identity"`

	Position Vec3    `json:"position"`
	Rotation float64 `json:"rotation"` // degrees about Z
	Scale    Vec3    `json:"scale"`

	// Template is the catalog path this object was built from. Empty for
	// fixtures which are part of a room's authored content and can't be
	// recreated.
	Template string `json:"resourceTemplatePath,omitempty"`

	State *Properties `json:"customState"`
}

// NewRecord returns a record with unit scale & empty state
func NewRecord(identity string) *Record {
	return &Record{Identity: identity, Scale: One, State: NewProperties()}
}

// Respawnable returns if the record can be recreated from a template
func (r *Record) Respawnable() bool {
	return r.Template != ""
}

// Name is the trailing identity segment
func (r *Record) Name() string {
	return trailingSegment(r.Identity)
}

// Clone deep copies the record
func (r *Record) Clone() *Record {
	c := *r
	if r.State != nil {
		c.State = r.State.Clone()
	} else {
		c.State = NewProperties()
	}
	return &c
}

// Document is the single aggregate snapshot for the whole application.
// Rooms holds the identity prefix of every room that has been saved at
// least once, so a room saved with zero objects is distinguishable from a
// room never visited.
type Document struct {
	Records []*Record `json:"records"`
	Rooms   []string  `json:"rooms"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{Records: []*Record{}, Rooms: []string{}}
}

// WithPrefix returns records whose identity lives under prefix, in order.
func (d *Document) WithPrefix(prefix string) []*Record {
	out := []*Record{}
	for _, r := range d.Records {
		if hasPrefix(r.Identity, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Known returns if a room prefix has ever been saved, either explicitly
// marked or by owning at least one record.
func (d *Document) Known(prefix string) bool {
	for _, p := range d.Rooms {
		if p == prefix {
			return true
		}
	}
	for _, r := range d.Records {
		if hasPrefix(r.Identity, prefix) {
			return true
		}
	}
	return false
}

// Replace swaps out every record under prefix for `in` and marks the
// prefix as saved. Records of other rooms keep their relative order.
func (d *Document) Replace(prefix string, in []*Record) {
	kept := make([]*Record, 0, len(d.Records)+len(in))
	for _, r := range d.Records {
		if !hasPrefix(r.Identity, prefix) {
			kept = append(kept, r)
		}
	}
	d.Records = append(kept, in...)
	d.markRoom(prefix)
}

// Prune drops a room's records and its saved marker, returning how many
// records went.
func (d *Document) Prune(prefix string) int {
	before := len(d.Records)
	kept := d.Records[:0]
	for _, r := range d.Records {
		if !hasPrefix(r.Identity, prefix) {
			kept = append(kept, r)
		}
	}
	d.Records = kept

	rooms := d.Rooms[:0]
	for _, p := range d.Rooms {
		if p != prefix {
			rooms = append(rooms, p)
		}
	}
	d.Rooms = rooms
	return before - len(d.Records)
}

func (d *Document) markRoom(prefix string) {
	for _, p := range d.Rooms {
		if p == prefix {
			return
		}
	}
	d.Rooms = append(d.Rooms, prefix)
}

// Identity builds a record identity from its parts, dropping empty ones.
func Identity(parts ...string) string {
	keep := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, "/")
}

// RoomPrefix is the identity prefix owned by a room in a world
func RoomPrefix(world, room string) string {
	return Identity(world, room) + "/"
}

func hasPrefix(identity, prefix string) bool {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(identity, prefix)
}

func trailingSegment(identity string) string {
	i := strings.LastIndex(identity, "/")
	if i < 0 {
		return identity
	}
	return identity[i+1:]
}

// parentPath returns the identity segments between the room prefix and
// the object name, ie. the ancestor chain.
func parentPath(identity, prefix string) []string {
	rest := strings.TrimPrefix(identity, prefix)
	segs := strings.Split(rest, "/")
	if len(segs) <= 1 {
		return nil
	}
	return segs[:len(segs)-1]
}

// Placed is a record with its position resolved relative to the room pivot
type Placed struct {
	Record   *Record
	Position Vec3
	Scale    Vec3
}

// Layout resolves each record's position relative to its room's pivot by
// walking the saved ancestor records. Ancestors with no record of their
// own (fixtures, parts) add no offset.
func Layout(recs []*Record, prefix string) []Placed {
	byID := map[string]*Record{}
	for _, r := range recs {
		if _, ok := byID[r.Identity]; !ok {
			byID[r.Identity] = r
		}
	}

	var resolve func(r *Record, depth int) (Vec3, Vec3)
	resolve = func(r *Record, depth int) (Vec3, Vec3) {
		path := parentPath(r.Identity, prefix)
		if len(path) == 0 || depth > len(recs) {
			return r.Position, r.Scale
		}
		// nearest ancestor that has a record, parts in between are
		// taken to sit on its pivot
		for i := len(path); i > 0; i-- {
			parent, ok := byID[prefix+strings.Join(path[:i], "/")]
			if !ok {
				continue
			}
			pos, scale := resolve(parent, depth+1)
			return pos.Add(r.Position.Mul(scale)), scale.Mul(r.Scale)
		}
		return r.Position, r.Scale
	}

	out := make([]Placed, 0, len(recs))
	for _, r := range recs {
		pos, scale := resolve(r, 0)
		out = append(out, Placed{Record: r, Position: pos, Scale: scale})
	}
	return out
}
