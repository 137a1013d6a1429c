// Package extractor describes a copied selection: which layers travel as
// editable data, which were flattened and why, and what the side tables hold.
// The description feeds the CLI summary and the markdown copy report.
package extractor

import (
	"fmt"
	"sort"

	"github.com/kataras/sketch-copy/pkg/decision"
	"github.com/kataras/sketch-copy/pkg/payload"
	"github.com/kataras/sketch-copy/pkg/sketch"
)

// Summary is the description of one copy operation.
type Summary struct {
	Layers []*LayerDescription
	Stats  Stats
	Fonts  []FontUsage
}

// Stats counts what the payload carries.
type Stats struct {
	Layers    int // every layer of the normalized tree, descendants of flattened layers included
	Flattened int // rasterized layers
	Images    int // image entries holding content
	Aliases   int // image entries pointing at another entry
	Texts     int
	Masks     int
}

// FontUsage is a font and the number of text layers set in it.
type FontUsage struct {
	Family string
	Size   float64
	Count  int
}

// LayerDescription describes a single layer of the copied tree.
type LayerDescription struct {
	ID   string
	Name string
	Type sketch.LayerType

	// Dimensions
	Width, Height float64

	// Visual
	FillColors []string // hex of enabled solid fills

	// Text (Text layers only)
	TextContent string
	FontFamily  string
	FontSize    float64

	// Export decision
	Flattened bool
	Rule      decision.Rule
	ImageOf   string // for aliases, the layer whose image is reused
	HasImage  bool
	Masked    bool

	// Recursive children. Layers below a flattened layer are still listed
	// because their constraints travel with the payload.
	Children []*LayerDescription
}

// Summarize describes the normalized top-level layers together with the
// payload assembled from them.
func Summarize(layers []*sketch.Layer, p *payload.Payload) *Summary {
	s := &Summary{}
	masks := make(map[string]bool, len(p.MasksArray))
	for _, id := range p.MasksArray {
		masks[id] = true
	}

	for _, l := range layers {
		s.Layers = append(s.Layers, describe(l, p, masks, &s.Stats))
	}

	for _, id := range p.Images.IDs() {
		e, _ := p.Images.Get(id)
		if e.IsAlias() {
			s.Stats.Aliases++
		} else {
			s.Stats.Images++
		}
	}
	s.Stats.Masks = len(p.MasksArray)

	usage := make(map[FontUsage]int)
	for _, f := range p.Fonts {
		usage[FontUsage{Family: f.FontName, Size: f.PointSize}]++
	}
	for k, n := range usage {
		k.Count = n
		s.Fonts = append(s.Fonts, k)
	}
	sort.Slice(s.Fonts, func(i, j int) bool {
		if s.Fonts[i].Family != s.Fonts[j].Family {
			return s.Fonts[i].Family < s.Fonts[j].Family
		}
		return s.Fonts[i].Size < s.Fonts[j].Size
	})

	return s
}

// describe recursively walks the layer tree and builds a parallel description tree.
func describe(l *sketch.Layer, p *payload.Payload, masks map[string]bool, stats *Stats) *LayerDescription {
	rule, flattened := decision.Reason(l)
	ld := &LayerDescription{
		ID:        l.ID,
		Name:      l.Name,
		Type:      l.Type,
		Width:     l.Frame.Width,
		Height:    l.Frame.Height,
		Flattened: flattened,
		Rule:      rule,
		Masked:    masks[l.ID],
	}

	stats.Layers++

	if l.Style != nil {
		for _, f := range l.Style.Fills {
			if !f.Enabled || f.FillType != sketch.FillColor {
				continue
			}
			if c, ok := sketch.ParseColor(f.Color); ok {
				ld.FillColors = append(ld.FillColors, fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
			}
		}
	}

	if l.Type == sketch.TypeText {
		stats.Texts++
		ld.TextContent = l.Text
		if f, ok := p.Fonts[l.ID]; ok {
			ld.FontFamily = f.FontName
			ld.FontSize = f.PointSize
		}
	}

	if e, ok := p.Images.Get(l.ID); ok {
		ld.HasImage = true
		ld.ImageOf = e.LayerID
		if flattened {
			stats.Flattened++
		}
	}

	for _, c := range l.Layers {
		ld.Children = append(ld.Children, describe(c, p, masks, stats))
	}
	return ld
}

// Flattened returns the descriptions of every rasterized layer, depth-first.
// Flattened layers nested in another flattened layer are not included.
func (s *Summary) Flattened() []*LayerDescription {
	var out []*LayerDescription
	var walk func(ld *LayerDescription)
	walk = func(ld *LayerDescription) {
		if ld.Flattened && ld.HasImage {
			out = append(out, ld)
		}
		for _, c := range ld.Children {
			walk(c)
		}
	}
	for _, ld := range s.Layers {
		walk(ld)
	}
	return out
}
