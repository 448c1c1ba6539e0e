package room

import (
	"hash/fnv"
	"image"
	"sort"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

// Drawable is one box of a room preview. Bounds are in room space: origin
// at the room's bottom left, y up.
type Drawable struct {
	Name    string
	Bounds  Rect
	Order   int
	Outline Outline
}

// Drawables returns a preview box for every live node in the room that has
// collision bounds.
func (r *Room) Drawables() []Drawable {
	rb := r.Bounds()
	origin := Vec3{X: -rb.MinX, Y: -rb.MinY}

	out := []Drawable{}
	for _, n := range r.root.Descendants() {
		if n.destroyed || n.bounds.Empty() {
			continue
		}
		out = append(out, Drawable{
			Name:    n.name,
			Bounds:  n.WorldBounds().Translate(origin),
			Order:   n.order,
			Outline: n.outline,
		})
	}
	return out
}

// DrawablesFromRecords builds preview boxes straight from saved records of
// the room owning `prefix`, for when there is no live scene. Records
// without a saved width/height are drawn `size` square. Orders follow the
// depth sort rule: higher up draws first.
func DrawablesFromRecords(recs []*Record, prefix string, bounds Rect, size float64) []Drawable {
	placed := Layout(recs, prefix)
	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Position.Y > placed[j].Position.Y
	})

	out := make([]Drawable, 0, len(placed))
	for i, p := range placed {
		w, h := recordSize(p.Record, size)
		centre := p.Position.Add(Vec3{X: bounds.Width() / 2, Y: bounds.Height() / 2})
		out = append(out, Drawable{
			Name:   p.Record.Name(),
			Bounds: RectAt(centre.X, centre.Y, w*p.Scale.X, h*p.Scale.Y),
			Order:  i,
		})
	}
	return out
}

// Render draws items back to front onto a `width` x `height` room preview,
// `scale` px per room unit.
func Render(items []Drawable, width, height, scale float64) image.Image {
	if scale <= 0 {
		scale = 1
	}
	dc := gg.NewContext(int(width*scale), int(height*scale))
	dc.SetRGB(0.95, 0.93, 0.88)
	dc.Clear()

	sorted := append([]Drawable{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	for _, d := range sorted {
		x := d.Bounds.MinX * scale
		y := (height - d.Bounds.MaxY) * scale
		w := d.Bounds.Width() * scale
		h := d.Bounds.Height() * scale

		r, g, b := colourFor(d.Name)
		dc.DrawRectangle(x, y, w, h)
		dc.SetRGBA(r, g, b, 0.85)
		dc.FillPreserve()

		switch d.Outline {
		case OutlineValid:
			dc.SetRGB(0.1, 0.7, 0.2)
			dc.SetLineWidth(3)
		case OutlineInvalid:
			dc.SetRGB(0.85, 0.1, 0.1)
			dc.SetLineWidth(3)
		default:
			dc.SetRGB(0.2, 0.2, 0.2)
			dc.SetLineWidth(1)
		}
		dc.Stroke()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(d.Name, x+w/2, y+h/2, 0.5, 0.5)
	}

	return dc.Image()
}

// Thumbnail shrinks img to fit inside size x size px keeping its aspect
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Lanczos3)
}

// SavePNG writes img to fname
func SavePNG(fname string, img image.Image) error {
	return gg.SavePNG(fname, img)
}

// colourFor picks a stable pastel colour per name
func colourFor(name string) (float64, float64, float64) {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	c := func(shift uint) float64 {
		return 0.45 + float64((v>>shift)&0xff)/255*0.5
	}
	return c(0), c(8), c(16)
}
