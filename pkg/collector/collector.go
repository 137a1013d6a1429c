// Package collector walks a normalized layer tree and records the per-layer
// attributes the target editor needs next to the layer structure: fonts, pin
// constraints, text behaviour and clipping masks.
//
// Each collector only reads the tree and writes its own table, so the walks
// can run in any order or concurrently.
package collector

import (
	"errors"

	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/decision"
	"github.com/kataras/sketch-copy/pkg/sketch"
)

// ErrMissingFont is returned for a text layer without font information.
var ErrMissingFont = errors.New("text layer has no font")

// Font is the font entry of a text layer.
type Font struct {
	FontName  string  `json:"fontName"`
	PointSize float64 `json:"pointSize"`
}

// Fonts maps text layer IDs to their fonts.
type Fonts map[string]Font

// Pins holds the six fixed-edge and fixed-size flags of a layer.
type Pins struct {
	Left   bool `json:"left"`
	Top    bool `json:"top"`
	Bottom bool `json:"bottom"`
	Right  bool `json:"right"`
	Width  bool `json:"width"`
	Height bool `json:"height"`
}

// PinConstraints maps layer IDs to their pin flags.
type PinConstraints map[string]Pins

// TextBehaviours maps text layer IDs to their wrapping behaviour code.
type TextBehaviours map[string]sketch.TextBehaviour

// CollectFonts records the font of every text layer in the tree rooted at l.
func CollectFonts(l *sketch.Layer, fonts Fonts) error {
	if l.Type == sketch.TypeText {
		if l.Font == nil || l.Font.Family == "" {
			return apperr.Host("read font", l.ID, ErrMissingFont)
		}
		fonts[l.ID] = Font{FontName: l.Font.Family, PointSize: l.Font.Size}
		return nil
	}

	if l.IsContainer() {
		for _, c := range l.Layers {
			if err := CollectFonts(c, fonts); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollectConstraints records the pin flags of every layer in the tree rooted
// at l, and the wrapping behaviour of every text layer.
func CollectConstraints(l *sketch.Layer, pins PinConstraints, behaviours TextBehaviours) {
	c := l.Constraints
	pins[l.ID] = Pins{
		Left:   c.Left,
		Top:    c.Top,
		Bottom: c.Bottom,
		Right:  c.Right,
		Width:  c.Width,
		Height: c.Height,
	}
	if l.Type == sketch.TypeText {
		behaviours[l.ID] = l.TextBehaviour
	}

	for _, child := range l.Layers {
		CollectConstraints(child, pins, behaviours)
	}
}

// CollectMasks appends the IDs of standalone clipping masks below and including l.
//
// A mask that is flattened itself and sits inside a container is absorbed:
// its effect is carried by a flattened image, so it is not recorded and
// CollectMasks reports true for it. Masks nested below are still visited, and
// their absorbed results are ignored.
func CollectMasks(l *sketch.Layer, masks *[]string) (absorbed bool) {
	if l.HasClippingMask {
		if decision.ShouldExport(l) && l.Parent() != nil && l.Parent().IsContainer() {
			absorbed = true
		} else {
			*masks = append(*masks, l.ID)
		}
	}

	for _, c := range l.Layers {
		CollectMasks(c, masks)
	}
	return absorbed
}
