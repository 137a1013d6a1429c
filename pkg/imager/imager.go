// Package imager turns flattened layers and embedded bitmaps into base64 data URIs
// and keeps one copy of every distinct image.
package imager

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	_ "image/gif"  // decode GIF bitmaps for transcoding
	_ "image/jpeg" // decode JPEG bitmaps for transcoding
	"image/png"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/decision"
	"github.com/kataras/sketch-copy/pkg/sketch"
)

// ExportConfig configures how flattened layers are rasterized.
type ExportConfig = sketch.ExportOptions

// DefaultExportConfig is the rasterization used for flattened layers.
var DefaultExportConfig = ExportConfig{Format: "png", Scale: 3}

// Source produces the image bytes of a layer.
type Source interface {
	// Rasterize flattens a layer and its subtree into a bitmap.
	Rasterize(l *sketch.Layer, opts ExportConfig) ([]byte, error)
	// ImageBytes returns the embedded bitmap of a native image layer.
	ImageBytes(l *sketch.Layer) ([]byte, error)
}

// Entry is one record of the image table: either an image with its display
// name, or an alias to another layer holding byte-identical content.
type Entry struct {
	Base64  string `json:"base64,omitempty"`
	Name    string `json:"name,omitempty"`
	LayerID string `json:"layerId,omitempty"`
}

// IsAlias reports whether the entry points at another entry.
func (e Entry) IsAlias() bool {
	return e.LayerID != ""
}

// Images is the image table keyed by layer ID. Insertion order is kept so
// that the first layer carrying some content always owns it and later
// layers with the same content become aliases.
type Images struct {
	entries map[string]Entry
	order   []string
	owners  map[string]string // base64 -> owning layer ID
}

// NewImages returns an empty image table.
func NewImages() *Images {
	return &Images{
		entries: make(map[string]Entry),
		owners:  make(map[string]string),
	}
}

// Add stores data URI content for layerID, or an alias when the same content
// was stored before. It reports whether an alias was created.
func (im *Images) Add(layerID, name, dataURI string) (alias bool) {
	if owner, ok := im.owners[dataURI]; ok && owner != layerID {
		im.set(layerID, Entry{LayerID: owner})
		return true
	}
	im.owners[dataURI] = layerID
	im.set(layerID, Entry{Base64: dataURI, Name: name})
	return false
}

func (im *Images) set(layerID string, e Entry) {
	if _, exists := im.entries[layerID]; !exists {
		im.order = append(im.order, layerID)
	}
	im.entries[layerID] = e
}

// Get returns the entry stored for layerID.
func (im *Images) Get(layerID string) (Entry, bool) {
	e, ok := im.entries[layerID]
	return e, ok
}

// Len returns the number of entries, aliases included.
func (im *Images) Len() int {
	return len(im.order)
}

// IDs returns the layer IDs in insertion order.
func (im *Images) IDs() []string {
	ids := make([]string, len(im.order))
	copy(ids, im.order)
	return ids
}

// MarshalJSON encodes the table as a JSON object.
func (im *Images) MarshalJSON() ([]byte, error) {
	if len(im.entries) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(im.entries)
}

// UnmarshalJSON decodes a JSON object into the table. JSON objects carry no
// order, so IDs of a decoded table are sorted.
func (im *Images) UnmarshalJSON(data []byte) error {
	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*im = *NewImages()
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		e := entries[id]
		im.set(id, e)
		if !e.IsAlias() {
			if _, dup := im.owners[e.Base64]; !dup {
				im.owners[e.Base64] = id
			}
		}
	}
	return nil
}

// CollectImages walks the tree rooted at l and stores an image for every layer
// that has to be flattened, and for every native image layer below layers that
// do not. Flattened layers are not descended into.
func CollectImages(src Source, l *sketch.Layer, images *Images, opts ExportConfig) error {
	if decision.ShouldExport(l) {
		data, err := src.Rasterize(l, opts)
		if err != nil {
			return apperr.Host("rasterize", l.ID, err)
		}
		images.Add(l.ID, l.Name, DataURI("image/"+formatOrPNG(opts.Format), data))
		return nil
	}

	if l.IsContainer() {
		for _, c := range l.Layers {
			if err := CollectImages(src, c, images, opts); err != nil {
				return err
			}
		}
		return nil
	}

	if l.Type == sketch.TypeImage {
		data, err := src.ImageBytes(l)
		if err != nil {
			return apperr.Host("read image", l.ID, err)
		}
		images.Add(l.ID, l.Name, DataURI("image/png", AsPNG(data)))
	}
	return nil
}

// DataURI encodes data as a base64 data URI of the given MIME type.
func DataURI(mime string, data []byte) string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(mime)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// DetectMIME returns the image MIME type of data, falling back to image/png
// for anything that is not recognized as an image.
func DetectMIME(data []byte) string {
	m := mimetype.Detect(data)
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String()
		}
	}
	return "image/png"
}

// AsPNG returns data re-encoded as PNG when it holds a decodable bitmap of
// another format. PNG data and undecodable data are returned unchanged.
func AsPNG(data []byte) []byte {
	if DetectMIME(data) == "image/png" {
		return data
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return data
	}
	return buf.Bytes()
}

func formatOrPNG(format string) string {
	if format == "" {
		return "png"
	}
	return strings.ToLower(format)
}
