package room

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v2"
)

// ErrTemplateNotFound is returned by a Loader for an unknown template path
var ErrTemplateNotFound = errors.New("template not found")

// Loader instantiates nodes from template paths.
type Loader interface {
	Load(template string) (*Node, error)
}

// TemplateFunc builds a fresh node tree for one template. Parts that
// callers need to find later should be attached with AddPart.
type TemplateFunc func() *Node

// Catalog is a Loader backed by registered template funcs.
type Catalog struct {
	templates map[string]TemplateFunc
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{templates: map[string]TemplateFunc{}}
}

// Register a template func under path, replacing any existing one
func (c *Catalog) Register(path string, fn TemplateFunc) {
	c.templates[path] = fn
}

// Templates returns every registered path, sorted
func (c *Catalog) Templates() []string {
	out := make([]string, 0, len(c.templates))
	for k := range c.templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Load implements Loader
func (c *Catalog) Load(path string) (*Node, error) {
	fn, ok := c.templates[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	n := fn()
	n.template = path
	return n, nil
}

// TemplateDef describes a template in a yaml catalog file.
type TemplateDef struct {
	Path   string  `yaml:"path"`
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// drawn extent if larger than the collision box
	VisualWidth  float64 `yaml:"visual_width"`
	VisualHeight float64 `yaml:"visual_height"`

	Placement string     `yaml:"placement"` // zone type the item needs
	Zone      string     `yaml:"zone"`      // zone type the node provides
	Holdable  bool       `yaml:"holdable"`
	TwoHanded bool       `yaml:"two_handed"`
	Seat      string     `yaml:"seat"` // chair | bed
	SitPoint  [2]float64 `yaml:"sit_point"`
	Discard   bool       `yaml:"discard"`

	State map[string]interface{} `yaml:"state"`
	Parts []PartDef              `yaml:"parts"`
}

// PartDef is a named sub visual of a template
type PartDef struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type catalogFile struct {
	Templates []TemplateDef `yaml:"templates"`
}

// OpenCatalog reads a yaml catalog from disk
func OpenCatalog(fname string) (*Catalog, error) {
	data, err := ioutil.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return decodeCatalog(data)
}

// DecodeCatalog reads a yaml catalog
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (*Catalog, error) {
	f := catalogFile{}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := NewCatalog()
	for _, def := range f.Templates {
		if def.Path == "" {
			return nil, fmt.Errorf("catalog template missing path")
		}
		if _, err := def.options(); err != nil {
			return nil, fmt.Errorf("template %s: %w", def.Path, err)
		}
		d := def
		c.Register(d.Path, d.build)
	}
	return c, nil
}

// options converts the definition into node options
func (d TemplateDef) options() ([]NodeOption, error) {
	opts := []NodeOption{WithSize(d.Width, d.Height)}

	if d.VisualWidth > 0 || d.VisualHeight > 0 {
		opts = append(opts, WithVisualBounds(RectAt(0, 0, d.VisualWidth, d.VisualHeight)))
	}
	if d.Placement != "" {
		z, ok := ParseZoneType(d.Placement)
		if !ok {
			return nil, fmt.Errorf("unknown placement %q", d.Placement)
		}
		opts = append(opts, AsPlaceable(z))
	}
	if d.Zone != "" {
		z, ok := ParseZoneType(d.Zone)
		if !ok {
			return nil, fmt.Errorf("unknown zone %q", d.Zone)
		}
		opts = append(opts, AsZone(z))
	}
	if d.Holdable {
		opts = append(opts, AsHoldable(d.TwoHanded))
	}
	switch d.Seat {
	case "":
	case "chair":
		opts = append(opts, AsSeat(SeatChair, Vec3{X: d.SitPoint[0], Y: d.SitPoint[1]}))
	case "bed":
		opts = append(opts, AsSeat(SeatBed, Vec3{X: d.SitPoint[0], Y: d.SitPoint[1]}))
	default:
		return nil, fmt.Errorf("unknown seat %q", d.Seat)
	}
	if d.Discard {
		opts = append(opts, AsDiscard())
	}

	state := NewProperties()
	for k, v := range d.State {
		switch val := v.(type) {
		case int:
			state.SetInt(k, val)
		case float64:
			state.SetFloat(k, val)
		case bool:
			state.SetBool(k, val)
		case string:
			state.SetString(k, val)
		default:
			return nil, fmt.Errorf("state %s: unsupported value %v", k, v)
		}
	}
	opts = append(opts, WithState(state))
	return opts, nil
}

// build is the TemplateFunc for a definition; options were checked when
// the catalog was decoded.
func (d TemplateDef) build() *Node {
	opts, _ := d.options()

	name := d.Name
	if name == "" {
		name = trailingSegment(d.Path)
	}
	n := NewNode(name, opts...)
	for _, p := range d.Parts {
		n.AddPart(p.Name, NewNode(p.Name, WithPosition(Vec3{X: p.X, Y: p.Y}), WithSize(p.Width, p.Height)))
	}
	return n
}
