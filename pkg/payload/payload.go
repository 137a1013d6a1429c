// Package payload assembles the clipboard document handed to the target editor
// and checks that its side tables agree with the layer tree they describe.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/collector"
	"github.com/kataras/sketch-copy/pkg/imager"
	"github.com/kataras/sketch-copy/pkg/sketch"
)

const (
	// PluginName identifies the source application of the payload.
	PluginName = "Sketch"
	// PluginVersion is the payload format version understood by the editor.
	PluginVersion = 70.3
	// MimeType is the pasteboard type the editor reads.
	MimeType = "io.kodika.kodika.plugins.sketch"
)

// Payload is the clipboard document.
type Payload struct {
	Plugin         string                   `json:"plugin"`
	Version        float64                  `json:"version"`
	Data           []json.RawMessage        `json:"data"`
	Images         *imager.Images           `json:"images"`
	Fonts          collector.Fonts          `json:"fonts"`
	PinConstraints collector.PinConstraints `json:"pinConstraints"`
	TextsBehaviour collector.TextBehaviours `json:"textsBehaviour"`
	MasksArray     []string                 `json:"masksArray"`
}

// Tables groups the side tables produced by the collectors and the image exporter.
type Tables struct {
	Images         *imager.Images
	Fonts          collector.Fonts
	PinConstraints collector.PinConstraints
	TextsBehaviour collector.TextBehaviours
	Masks          []string
}

// NewTables returns empty, ready to fill side tables.
func NewTables() *Tables {
	return &Tables{
		Images:         imager.NewImages(),
		Fonts:          make(collector.Fonts),
		PinConstraints: make(collector.PinConstraints),
		TextsBehaviour: make(collector.TextBehaviours),
		Masks:          []string{},
	}
}

// Assemble builds the payload from the serialized top-level layers and the
// side tables. Missing tables are replaced by empty ones so that they encode
// as {} and [] rather than null.
func Assemble(data []json.RawMessage, t *Tables) *Payload {
	if t == nil {
		t = NewTables()
	}
	p := &Payload{
		Plugin:         PluginName,
		Version:        PluginVersion,
		Data:           data,
		Images:         t.Images,
		Fonts:          t.Fonts,
		PinConstraints: t.PinConstraints,
		TextsBehaviour: t.TextsBehaviour,
		MasksArray:     t.Masks,
	}
	if p.Data == nil {
		p.Data = []json.RawMessage{}
	}
	if p.Images == nil {
		p.Images = imager.NewImages()
	}
	if p.Fonts == nil {
		p.Fonts = collector.Fonts{}
	}
	if p.PinConstraints == nil {
		p.PinConstraints = collector.PinConstraints{}
	}
	if p.TextsBehaviour == nil {
		p.TextsBehaviour = collector.TextBehaviours{}
	}
	if p.MasksArray == nil {
		p.MasksArray = []string{}
	}
	return p
}

// Validate checks the payload against the normalized top-level layers it was
// built from:
//
//   - the tree holds no hotspot and no symbol layers;
//   - every side table key names a layer of the tree;
//   - every image alias points at a non-alias entry;
//   - no two non-alias images share the same content.
//
// All violations are reported, joined, and wrap [apperr.ErrInvalidPayload].
func (p *Payload) Validate(layers []*sketch.Layer) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{apperr.ErrInvalidPayload}, args...)...))
	}

	if len(p.Data) != len(layers) {
		fail("%d serialized layers for %d top-level layers", len(p.Data), len(layers))
	}

	ids := make(map[string]bool)
	for _, root := range layers {
		root.Walk(func(l *sketch.Layer) bool {
			ids[l.ID] = true
			switch l.Type {
			case sketch.TypeHotSpot:
				fail("hotspot layer %s left in tree", l.ID)
			case sketch.TypeSymbolInstance, sketch.TypeSymbolMaster:
				fail("symbol layer %s left in tree", l.ID)
			}
			return true
		})
	}

	for id := range p.Fonts {
		if !ids[id] {
			fail("font entry for unknown layer %s", id)
		}
	}
	for id := range p.PinConstraints {
		if !ids[id] {
			fail("pin constraints for unknown layer %s", id)
		}
	}
	for id := range p.TextsBehaviour {
		if !ids[id] {
			fail("text behaviour for unknown layer %s", id)
		}
	}
	for _, id := range p.MasksArray {
		if !ids[id] {
			fail("mask entry for unknown layer %s", id)
		}
	}

	if p.Images != nil {
		owners := make(map[string]string)
		for _, id := range p.Images.IDs() {
			if !ids[id] {
				fail("image entry for unknown layer %s", id)
			}
			e, _ := p.Images.Get(id)
			if e.IsAlias() {
				target, ok := p.Images.Get(e.LayerID)
				if !ok || target.IsAlias() {
					fail("image alias %s points at %s which holds no image", id, e.LayerID)
				}
				continue
			}
			if owner, dup := owners[e.Base64]; dup {
				fail("images %s and %s hold identical content", owner, id)
				continue
			}
			owners[e.Base64] = id
		}
	}

	return errors.Join(errs...)
}

// Encode returns the UTF-8 JSON encoding of the payload.
func (p *Payload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// Decode parses an encoded payload.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return Assemble(p.Data, &Tables{
		Images:         p.Images,
		Fonts:          p.Fonts,
		PinConstraints: p.PinConstraints,
		TextsBehaviour: p.TextsBehaviour,
		Masks:          p.MasksArray,
	}), nil
}
