package room

import (
	"strings"
)

// Visual is an appearance override applied to a node. The set of variants
// is closed: SpriteVisual, ColorVisual and PaletteVisual.
type Visual interface {
	Kind() string
	encode(p *Properties)
}

// SpriteVisual swaps the node's sprite for a named one
type SpriteVisual struct {
	Sprite string
}

// ColorVisual tints the node's sub visuals, one colour each in order.
type ColorVisual struct {
	Colors []string // hex, eg. "#ff00aa"
}

// PaletteVisual picks entry Index from a named palette
type PaletteVisual struct {
	Palette string
	Index   int
}

func (SpriteVisual) Kind() string { return "sprite" }
func (ColorVisual) Kind() string { return "color" }
func (PaletteVisual) Kind() string { return "palette" }

func (v SpriteVisual) encode(p *Properties) {
	p.SetString(KeyVisualRef, v.Sprite)
}

func (v ColorVisual) encode(p *Properties) {
	p.SetString(KeyVisualColors, strings.Join(v.Colors, ","))
}

func (v PaletteVisual) encode(p *Properties) {
	p.SetString(KeyVisualRef, v.Palette)
	p.SetInt(KeyVisualIndex, v.Index)
}

// encodeVisual writes the provenance of v into custom state, clearing any
// previous override.
func encodeVisual(v Visual, p *Properties) {
	p.Delete(KeyVisualKind)
	p.Delete(KeyVisualRef)
	p.Delete(KeyVisualColors)
	p.Delete(KeyVisualIndex)
	if v == nil {
		return
	}
	p.SetString(KeyVisualKind, v.Kind())
	v.encode(p)
}

// decodeVisual reads a visual override back out of custom state
func decodeVisual(p *Properties) (Visual, bool) {
	if p == nil {
		return nil, false
	}
	kind, ok := p.String(KeyVisualKind)
	if !ok {
		return nil, false
	}

	switch kind {
	case "sprite":
		ref, ok := p.String(KeyVisualRef)
		if !ok {
			return nil, false
		}
		return SpriteVisual{Sprite: ref}, true
	case "color":
		raw, ok := p.String(KeyVisualColors)
		if !ok {
			return nil, false
		}
		colors := []string{}
		for _, c := range strings.Split(raw, ",") {
			if c != "" {
				colors = append(colors, c)
			}
		}
		return ColorVisual{Colors: colors}, true
	case "palette":
		ref, ok := p.String(KeyVisualRef)
		if !ok {
			return nil, false
		}
		idx, _ := p.Int(KeyVisualIndex)
		return PaletteVisual{Palette: ref, Index: idx}, true
	}
	return nil, false
}

// VisualResolver looks up the assets behind a visual & applies them to a
// node. It may fail while content is still loading.
type VisualResolver interface {
	Resolve(n *Node, v Visual) error
}

// SetAppearance applies v immediately through the resolver, recording it
// on the node if it worked.
func (w *World) SetAppearance(n *Node, v Visual) error {
	if err := w.resolver.Resolve(n, v); err != nil {
		return err
	}
	n.appearance = v
	return nil
}

// restoreAppearance applies a persisted visual, retrying on failure
// Config.VisualRetries times. The node keeps its default look if every
// attempt fails.
func (w *World) restoreAppearance(n *Node, v Visual, attempt int) {
	if n.destroyed {
		return
	}

	err := w.resolver.Resolve(n, v)
	if err == nil {
		n.appearance = v
		return
	}

	if attempt >= w.cfg.VisualRetries {
		w.log.Printf("error: restoring %s visual on %s failed after %d attempts: %v", v.Kind(), n.name, attempt+1, err)
		return
	}

	w.log.Printf("warning: restoring %s visual on %s: %v (retrying)", v.Kind(), n.name, err)
	w.sched.After(w.cfg.VisualRetryDelay, func() {
		w.restoreAppearance(n, v, attempt+1)
	})
}

// nopResolver accepts every visual as-is
type nopResolver struct{}

func (nopResolver) Resolve(*Node, Visual) error { return nil }
