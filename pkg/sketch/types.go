package sketch

import "slices"

// LayerType names the kind of a layer in the design tree.
// The values match the type strings used by the Sketch document model.
type LayerType string

// Known layer types. Any other type string decodes as-is and behaves as a plain leaf.
const (
	TypePage           LayerType = "Page"
	TypeArtboard       LayerType = "Artboard"
	TypeGroup          LayerType = "Group"
	TypeShape          LayerType = "Shape"
	TypeShapePath      LayerType = "ShapePath"
	TypeText           LayerType = "Text"
	TypeImage          LayerType = "Image"
	TypeSymbolInstance LayerType = "SymbolInstance"
	TypeSymbolMaster   LayerType = "SymbolMaster"
	TypeHotSpot        LayerType = "HotSpot"
)

// Fill types.
const (
	FillColor    = "Color"
	FillGradient = "Gradient"
	FillPattern  = "Pattern"
)

// Point and shape types used by shape paths.
const (
	PointStraight     = "Straight"
	PointMirrored     = "Mirrored"
	PointAsymmetric   = "Asymmetric"
	PointDisconnected = "Disconnected"

	ShapeRectangle = "Rectangle"
	ShapeOval      = "Oval"
	ShapeTriangle  = "Triangle"
	ShapePolygon   = "Polygon"
	ShapeStar      = "Star"
	ShapeCustom    = "Custom"
)

// TextBehaviour is the host's text wrapping behaviour code.
type TextBehaviour int

const (
	// TextFlexibleWidth grows the layer horizontally with its content.
	TextFlexibleWidth TextBehaviour = iota
	// TextFixedWidth wraps lines at the layer width and grows vertically.
	TextFixedWidth
	// TextFixed keeps both dimensions and clips overflowing content.
	TextFixed
)

// Layer is a single node of the design tree: an artboard, group, shape, text,
// image or symbol reference. Containers own their children through Layers;
// every child keeps a non-owning back-reference to its parent.
type Layer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          LayerType      `json:"type"`
	Frame         Rectangle      `json:"frame"`
	Transform     Transform      `json:"transform"`
	Style         *Style         `json:"style,omitempty"`
	ExportFormats []ExportFormat `json:"exportFormats,omitempty"`
	Layers        []*Layer       `json:"layers,omitempty"`

	// ShapePath
	ShapeType string       `json:"shapeType,omitempty"`
	Points    []CurvePoint `json:"points,omitempty"`
	Closed    bool         `json:"closed,omitempty"`

	// Text
	Text          string        `json:"text,omitempty"`
	Font          *Font         `json:"font,omitempty"`
	TextBehaviour TextBehaviour `json:"textBehaviour,omitempty"`

	// Image
	Image *ImageData `json:"image,omitempty"`

	// SymbolInstance and SymbolMaster
	SymbolID string `json:"symbolId,omitempty"`

	Constraints     Constraints `json:"constraints"`
	HasClippingMask bool        `json:"hasClippingMask,omitempty"`

	parent *Layer
}

// Parent returns the container holding l, or nil for a detached layer.
func (l *Layer) Parent() *Layer {
	return l.parent
}

// IsContainer reports whether layers of this type own child layers.
func (l *Layer) IsContainer() bool {
	switch l.Type {
	case TypePage, TypeArtboard, TypeGroup, TypeShape, TypeSymbolMaster:
		return true
	case TypeShapePath, TypeText, TypeImage, TypeSymbolInstance, TypeHotSpot:
		return false
	default:
		return false
	}
}

// HasStyle reports whether layers of this type carry a style descriptor.
func (l *Layer) HasStyle() bool {
	switch l.Type {
	case TypeGroup, TypeShape, TypeShapePath, TypeText, TypeImage, TypeSymbolInstance:
		return l.Style != nil
	default:
		return false
	}
}

// HasPoints reports whether the layer is a shape path with its own point list.
func (l *Layer) HasPoints() bool {
	return l.Type == TypeShapePath
}

// IsSymbol reports whether the layer is an unresolved symbol reference or definition.
func (l *Layer) IsSymbol() bool {
	return l.Type == TypeSymbolInstance || l.Type == TypeSymbolMaster
}

// SetLayers replaces the children of l. Children that currently belong to
// another container are moved out of it; previous children are detached.
func (l *Layer) SetLayers(children []*Layer) {
	for _, c := range l.Layers {
		if c.parent == l {
			c.parent = nil
		}
	}
	for _, c := range children {
		if p := c.parent; p != nil && p != l {
			p.Layers = slices.DeleteFunc(p.Layers, func(o *Layer) bool { return o == c })
		}
	}
	l.Layers = children
	for _, c := range children {
		c.parent = l
	}
}

// Walk calls fn for l and every descendant, depth-first, parents before children.
// Returning false from fn skips the subtree below that layer.
func (l *Layer) Walk(fn func(*Layer) bool) {
	if !fn(l) {
		return
	}
	for _, c := range l.Layers {
		c.Walk(fn)
	}
}

// linkParents restores parent pointers below l after decoding or copying.
func (l *Layer) linkParents() {
	for _, c := range l.Layers {
		c.parent = l
		c.linkParents()
	}
}

// Rectangle is a layer frame in its parent's coordinate space.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Transform holds the rotation in degrees and the flip flags of a layer.
type Transform struct {
	Rotation            float64 `json:"rotation"`
	FlippedHorizontally bool    `json:"flippedHorizontally"`
	FlippedVertically   bool    `json:"flippedVertically"`
}

// Style describes fills, shadows and blur of a layer.
type Style struct {
	Opacity      float64  `json:"opacity"`
	Fills        []Fill   `json:"fills,omitempty"`
	Borders      []Fill   `json:"borders,omitempty"`
	Shadows      []Shadow `json:"shadows,omitempty"`
	InnerShadows []Shadow `json:"innerShadows,omitempty"`
	Blur         *Blur    `json:"blur,omitempty"`
}

// Fill is one paint of a style. Color is #RRGGBB or #RRGGBBAA.
type Fill struct {
	FillType  string  `json:"fillType"`
	Color     string  `json:"color,omitempty"`
	Enabled   bool    `json:"enabled"`
	Thickness float64 `json:"thickness,omitempty"`
}

// Shadow is a drop or inner shadow.
type Shadow struct {
	Color   string  `json:"color"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Blur    float64 `json:"blur"`
	Spread  float64 `json:"spread"`
	Enabled bool    `json:"enabled"`
}

// Blur is the blur effect of a style.
type Blur struct {
	BlurType string  `json:"blurType"`
	Radius   float64 `json:"radius"`
	Enabled  bool    `json:"enabled"`
}

// ExportFormat is a designer-defined export preset attached to a layer.
type ExportFormat struct {
	FileFormat string `json:"fileFormat"`
	Size       string `json:"size"`
	Prefix     string `json:"prefix,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
}

// Point is a coordinate in a shape path's normalized 0-1 local space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CurvePoint is a vertex of a shape path.
type CurvePoint struct {
	Point        Point   `json:"point"`
	CurveFrom    Point   `json:"curveFrom"`
	CurveTo      Point   `json:"curveTo"`
	PointType    string  `json:"pointType"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
}

// Font is the typeface and size of a text layer.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

// ImageData holds the embedded bitmap of a native image layer.
// Data is encoded as base64 in JSON.
type ImageData struct {
	Data []byte `json:"data"`
}

// Constraints are the pin flags that fix a layer's edges or dimensions
// relative to its container when the container is resized.
type Constraints struct {
	Left   bool `json:"left"`
	Top    bool `json:"top"`
	Right  bool `json:"right"`
	Bottom bool `json:"bottom"`
	Width  bool `json:"width"`
	Height bool `json:"height"`
}

// ExportOptions configures a rasterization request.
type ExportOptions struct {
	Format string  // "png"
	Scale  float64 // 3 for the clipboard payload
}
