package sketch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoding for embedded bitmaps
	_ "image/jpeg" // register JPEG decoding for embedded bitmaps
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Rasterize flattens l and its subtree into a PNG at the requested scale.
//
// This is a reference renderer: solid fills, shape path outlines and embedded
// bitmaps are drawn; text, borders, shadows and blur are not.
func (d *Document) Rasterize(l *Layer, opts ExportOptions) ([]byte, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	if opts.Format != "" && opts.Format != "png" {
		return nil, fmt.Errorf("rasterize %s: unsupported format %q", l.ID, opts.Format)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	w := max(1, int(math.Ceil(l.Frame.Width*scale)))
	h := max(1, int(math.Ceil(l.Frame.Height*scale)))
	r := &renderer{dst: image.NewRGBA(image.Rect(0, 0, w, h)), scale: scale}
	if err := r.draw(l, 0, 0, nil); err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", l.ID, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.dst); err != nil {
		return nil, fmt.Errorf("rasterize %s: encode png: %w", l.ID, err)
	}
	return buf.Bytes(), nil
}

type renderer struct {
	dst   *image.RGBA
	scale float64
}

// draw paints l with its top-left corner at (ox, oy) in unscaled units.
// inherited is the fill of an enclosing Shape, applied to paths without a style.
func (r *renderer) draw(l *Layer, ox, oy float64, inherited *color.NRGBA) error {
	fill, ok := firstColorFill(l.Style)
	if !ok {
		fill = inherited
	}

	switch l.Type {
	case TypeHotSpot, TypeText:
		return nil
	case TypeShapePath:
		if fill != nil {
			r.fillPath(l, ox, oy, *fill)
		}
		return nil
	case TypeImage:
		return r.drawImage(l, ox, oy)
	case TypeShape:
		for _, c := range l.Layers {
			if err := r.draw(c, ox+c.Frame.X, oy+c.Frame.Y, fill); err != nil {
				return err
			}
		}
		return nil
	}

	if !l.IsContainer() {
		if fill != nil {
			r.fillRect(ox, oy, l.Frame.Width, l.Frame.Height, *fill)
		}
		return nil
	}
	if l.Type == TypeArtboard && fill != nil {
		r.fillRect(ox, oy, l.Frame.Width, l.Frame.Height, *fill)
	}
	for _, c := range l.Layers {
		if err := r.draw(c, ox+c.Frame.X, oy+c.Frame.Y, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) fillRect(x, y, w, h float64, c color.NRGBA) {
	rect := image.Rect(
		int(math.Floor(x*r.scale)), int(math.Floor(y*r.scale)),
		int(math.Ceil((x+w)*r.scale)), int(math.Ceil((y+h)*r.scale)),
	)
	draw.Draw(r.dst, rect.Intersect(r.dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (r *renderer) fillPath(l *Layer, ox, oy float64, c color.NRGBA) {
	if len(l.Points) < 3 {
		r.fillRect(ox, oy, l.Frame.Width, l.Frame.Height, c)
		return
	}
	b := r.dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for i, p := range l.Points {
		x := float32((ox + p.Point.X*l.Frame.Width) * r.scale)
		y := float32((oy + p.Point.Y*l.Frame.Height) * r.scale)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(r.dst, b, image.NewUniform(c), image.Point{})
}

func (r *renderer) drawImage(l *Layer, ox, oy float64) error {
	if l.Image == nil || len(l.Image.Data) == 0 {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(l.Image.Data))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", l.ID, err)
	}
	target := image.Rect(
		int(math.Floor(ox*r.scale)), int(math.Floor(oy*r.scale)),
		int(math.Ceil((ox+l.Frame.Width)*r.scale)), int(math.Ceil((oy+l.Frame.Height)*r.scale)),
	)
	draw.CatmullRom.Scale(r.dst, target, src, src.Bounds(), draw.Over, nil)
	return nil
}

func firstColorFill(s *Style) (*color.NRGBA, bool) {
	if s == nil {
		return nil, false
	}
	for _, f := range s.Fills {
		if !f.Enabled || f.FillType != FillColor {
			continue
		}
		if c, ok := ParseColor(f.Color); ok {
			return &c, true
		}
	}
	return nil, false
}

// ParseColor converts a #RRGGBB or #RRGGBBAA hex string into a color.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(s)
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	red, green, blue := c.RGB255()
	return color.NRGBA{R: red, G: green, B: blue, A: alpha}, true
}
