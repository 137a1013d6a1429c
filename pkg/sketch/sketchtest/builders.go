// Package sketchtest builds layer trees for tests.
package sketchtest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/kataras/sketch-copy/pkg/sketch"
)

// UnitSquare is the point list of a plain rectangle shape path.
var UnitSquare = []sketch.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// Page wraps children in a page so that they get a container parent.
func Page(children ...*sketch.Layer) *sketch.Layer {
	return container("page", sketch.TypePage, children)
}

// Artboard returns an artboard holding children.
func Artboard(id string, children ...*sketch.Layer) *sketch.Layer {
	return container(id, sketch.TypeArtboard, children)
}

// Group returns a group holding children.
func Group(id string, children ...*sketch.Layer) *sketch.Layer {
	return container(id, sketch.TypeGroup, children)
}

// Shape returns a combined shape holding the given paths.
func Shape(id string, paths ...*sketch.Layer) *sketch.Layer {
	return container(id, sketch.TypeShape, paths)
}

// Rect returns a plain rectangle shape path with a solid fill.
func Rect(id string) *sketch.Layer {
	return Path(id, sketch.ShapeRectangle, UnitSquare...)
}

// Path returns a shape path whose points are all straight.
func Path(id, shapeType string, pts ...sketch.Point) *sketch.Layer {
	points := make([]sketch.CurvePoint, len(pts))
	for i, p := range pts {
		points[i] = sketch.CurvePoint{Point: p, CurveFrom: p, CurveTo: p, PointType: sketch.PointStraight}
	}
	return &sketch.Layer{
		ID:        id,
		Name:      id,
		Type:      sketch.TypeShapePath,
		Frame:     sketch.Rectangle{Width: 10, Height: 10},
		ShapeType: shapeType,
		Points:    points,
		Closed:    true,
		Style: &sketch.Style{
			Opacity: 1,
			Fills:   []sketch.Fill{{FillType: sketch.FillColor, Color: "#FF0000FF", Enabled: true}},
		},
	}
}

// Text returns a text layer set in the given font.
func Text(id, family string, size float64) *sketch.Layer {
	return &sketch.Layer{
		ID:            id,
		Name:          id,
		Type:          sketch.TypeText,
		Frame:         sketch.Rectangle{Width: 100, Height: 20},
		Text:          "Hello",
		Font:          &sketch.Font{Family: family, Size: size},
		TextBehaviour: sketch.TextFixedWidth,
		Style:         &sketch.Style{Opacity: 1},
	}
}

// Image returns a native image layer embedding data.
func Image(id string, data []byte) *sketch.Layer {
	return &sketch.Layer{
		ID:    id,
		Name:  id,
		Type:  sketch.TypeImage,
		Frame: sketch.Rectangle{Width: 4, Height: 4},
		Image: &sketch.ImageData{Data: data},
		Style: &sketch.Style{Opacity: 1},
	}
}

// Instance returns a symbol instance of symbolID.
func Instance(id, symbolID string) *sketch.Layer {
	return &sketch.Layer{
		ID:       id,
		Name:     id,
		Type:     sketch.TypeSymbolInstance,
		Frame:    sketch.Rectangle{Width: 10, Height: 10},
		SymbolID: symbolID,
	}
}

// Master returns a symbol master with the given children.
func Master(id, symbolID string, children ...*sketch.Layer) *sketch.Layer {
	m := container(id, sketch.TypeSymbolMaster, children)
	m.SymbolID = symbolID
	return m
}

// HotSpot returns a prototyping hotspot.
func HotSpot(id string) *sketch.Layer {
	return &sketch.Layer{ID: id, Name: id, Type: sketch.TypeHotSpot, Frame: sketch.Rectangle{Width: 10, Height: 10}}
}

// Masked marks l as a clipping mask and returns it.
func Masked(l *sketch.Layer) *sketch.Layer {
	l.HasClippingMask = true
	return l
}

// PNG encodes a w x h image filled with c.
func PNG(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// IDs returns the identifiers of layers, in order.
func IDs(layers []*sketch.Layer) []string {
	ids := make([]string, len(layers))
	for i, l := range layers {
		ids[i] = l.ID
	}
	return ids
}

func container(id string, t sketch.LayerType, children []*sketch.Layer) *sketch.Layer {
	l := &sketch.Layer{
		ID:    id,
		Name:  id,
		Type:  t,
		Frame: sketch.Rectangle{Width: 100, Height: 100},
	}
	l.SetLayers(children)
	return l
}
