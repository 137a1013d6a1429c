package sketch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Version is the release of the sketch-copy tool.
const Version = "0.3.0"

// maxSymbolDepth bounds nested symbol resolution so that a master which
// (directly or indirectly) contains an instance of itself fails instead of looping.
const maxSymbolDepth = 32

var (
	// ErrNilLayer is returned when a host operation receives a nil layer.
	ErrNilLayer = errors.New("nil layer")
	// ErrNotSymbol is returned when a symbol operation receives a non-symbol layer.
	ErrNotSymbol = errors.New("layer is not a symbol")
	// ErrSymbolNotFound is returned when an instance references an unknown master.
	ErrSymbolNotFound = errors.New("symbol master not found")
	// ErrSymbolCycle is returned when symbol masters reference each other in a loop.
	ErrSymbolCycle = errors.New("symbol nesting too deep")
	// ErrNoImageData is returned when bitmap bytes are requested from a layer without any.
	ErrNoImageData = errors.New("layer has no embedded image data")
)

// Document is an in-memory design document decoded from a JSON file.
//
// It implements the host operations the copy pipeline consumes: duplicating,
// detaching, instantiating and removing layers, rasterizing a layer to PNG bytes,
// reading embedded bitmaps and serializing a layer's own structure.
// Read operations (Rasterize, ImageBytes, Serialize) are safe for concurrent use;
// mutations are serialized by the same lock.
type Document struct {
	Name  string   `json:"name"`
	Pages []*Layer `json:"pages"`

	mu      sync.RWMutex
	symbols map[string]*Layer // symbolID -> master
	newID   func() string
}

// NewDocument returns an empty document with a single page.
func NewDocument(name string) *Document {
	d := &Document{Name: name}
	d.Pages = []*Layer{{ID: newLayerID(), Name: "Page 1", Type: TypePage}}
	d.index()
	return d
}

// ParseDocument decodes a document from its JSON representation.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("failed to parse document: no pages")
	}
	for i, p := range d.Pages {
		if p.Type == "" {
			p.Type = TypePage
		}
		if p.Type != TypePage {
			return nil, fmt.Errorf("failed to parse document: page %d has type %q", i, p.Type)
		}
	}
	d.index()
	return &d, nil
}

// LoadDocument reads and decodes a document file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %q: %w", path, err)
	}
	return ParseDocument(data)
}

// Save writes the document back to path as indented JSON.
func (d *Document) Save(path string) error {
	d.mu.RLock()
	data, err := json.MarshalIndent(d, "", "  ")
	d.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document %q: %w", path, err)
	}
	return nil
}

// index links parent pointers and registers every symbol master by symbol ID.
func (d *Document) index() {
	if d.newID == nil {
		d.newID = newLayerID
	}
	d.symbols = make(map[string]*Layer)
	for _, p := range d.Pages {
		p.parent = nil
		p.linkParents()
		p.Walk(func(l *Layer) bool {
			if l.Type == TypeSymbolMaster && l.SymbolID != "" {
				if _, exists := d.symbols[l.SymbolID]; !exists {
					d.symbols[l.SymbolID] = l
				}
			}
			return true
		})
	}
}

// newLayerID returns an identifier in the host's upper-case UUID form.
func newLayerID() string {
	return strings.ToUpper(uuid.NewString())
}

// SelectedPage returns the page new layers are placed on.
func (d *Document) SelectedPage() *Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Pages[0]
}

// AddLayers appends layers to the selected page and registers any symbol
// masters among them.
func (d *Document) AddLayers(layers ...*Layer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	page := d.Pages[0]
	page.SetLayers(append(slices.Clone(page.Layers), layers...))
	d.index()
}

// FindLayer returns the layer with the given identifier, or nil.
func (d *Document) FindLayer(id string) *Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var found *Layer
	for _, p := range d.Pages {
		p.Walk(func(l *Layer) bool {
			if found != nil {
				return false
			}
			if l.ID == id {
				found = l
				return false
			}
			return true
		})
	}
	return found
}

// LayerCount returns the number of layers below the pages, at every depth.
func (d *Document) LayerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, p := range d.Pages {
		p.Walk(func(l *Layer) bool {
			if l != p {
				n++
			}
			return true
		})
	}
	return n
}

// Duplicate copies l and its subtree with fresh identifiers and inserts the copy
// directly above l in the same container.
func (d *Document) Duplicate(l *Layer) (*Layer, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	dup := d.copyTree(l)
	if p := l.parent; p != nil {
		idx := slices.Index(p.Layers, l)
		p.Layers = slices.Insert(p.Layers, idx+1, dup)
		dup.parent = p
	}
	return dup, nil
}

// Detach resolves a symbol instance into a group holding concrete copies of its
// master's layers, replacing the instance in its container. Nested instances are
// resolved recursively. A master without layers resolves to nothing: the instance
// is left untouched and Detach returns a nil layer.
func (d *Document) Detach(l *Layer) (*Layer, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detach(l, 0)
}

func (d *Document) detach(l *Layer, depth int) (*Layer, error) {
	if l.Type != TypeSymbolInstance {
		return nil, fmt.Errorf("detach %s: %w (type %s)", l.ID, ErrNotSymbol, l.Type)
	}
	if depth > maxSymbolDepth {
		return nil, fmt.Errorf("detach %s: %w", l.ID, ErrSymbolCycle)
	}
	master, ok := d.symbols[l.SymbolID]
	if !ok {
		return nil, fmt.Errorf("detach %s: %w: %q", l.ID, ErrSymbolNotFound, l.SymbolID)
	}
	if len(master.Layers) == 0 {
		return nil, nil
	}

	group := &Layer{
		ID:              d.newID(),
		Name:            l.Name,
		Type:            TypeGroup,
		Frame:           l.Frame,
		Transform:       l.Transform,
		Style:           copyStyle(l.Style),
		ExportFormats:   slices.Clone(l.ExportFormats),
		Constraints:     l.Constraints,
		HasClippingMask: l.HasClippingMask,
	}
	children := make([]*Layer, 0, len(master.Layers))
	for _, c := range master.Layers {
		children = append(children, d.copyTree(c))
	}
	group.SetLayers(children)

	if err := d.resolveNested(group, depth+1); err != nil {
		return nil, err
	}

	if p := l.parent; p != nil {
		idx := slices.Index(p.Layers, l)
		p.Layers[idx] = group
		group.parent = p
		l.parent = nil
	}
	return group, nil
}

// resolveNested detaches every symbol instance below l in place.
func (d *Document) resolveNested(l *Layer, depth int) error {
	for _, c := range slices.Clone(l.Layers) {
		if c.Type == TypeSymbolInstance {
			resolved, err := d.detach(c, depth)
			if err != nil {
				return err
			}
			if resolved == nil {
				d.remove(c)
			}
			continue
		}
		if err := d.resolveNested(c, depth); err != nil {
			return err
		}
	}
	return nil
}

// CreateInstance places a new instance of master on the selected page.
func (d *Document) CreateInstance(master *Layer) (*Layer, error) {
	if master == nil {
		return nil, ErrNilLayer
	}
	if master.Type != TypeSymbolMaster {
		return nil, fmt.Errorf("create instance of %s: %w (type %s)", master.ID, ErrNotSymbol, master.Type)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if master.SymbolID == "" {
		master.SymbolID = d.newID()
	}
	if _, ok := d.symbols[master.SymbolID]; !ok {
		d.symbols[master.SymbolID] = master
	}

	inst := &Layer{
		ID:       d.newID(),
		Name:     master.Name,
		Type:     TypeSymbolInstance,
		Frame:    master.Frame,
		SymbolID: master.SymbolID,
	}
	page := d.Pages[0]
	page.Layers = append(page.Layers, inst)
	inst.parent = page
	return inst, nil
}

// Remove deletes l from its container. Removing a detached layer is a no-op.
func (d *Document) Remove(l *Layer) error {
	if l == nil {
		return ErrNilLayer
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(l)
	return nil
}

func (d *Document) remove(l *Layer) {
	if p := l.parent; p != nil {
		p.Layers = slices.DeleteFunc(p.Layers, func(c *Layer) bool { return c == l })
		l.parent = nil
	}
	l.Walk(func(c *Layer) bool {
		if c.Type == TypeSymbolMaster && d.symbols[c.SymbolID] == c {
			delete(d.symbols, c.SymbolID)
		}
		return true
	})
}

// ImageBytes returns the embedded bitmap of a native image layer.
func (d *Document) ImageBytes(l *Layer) ([]byte, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	if l.Type != TypeImage || l.Image == nil || len(l.Image.Data) == 0 {
		return nil, fmt.Errorf("image bytes of %s: %w", l.ID, ErrNoImageData)
	}
	return l.Image.Data, nil
}

// Serialize returns the layer's own structured representation: geometry, style
// and its children, recursively.
func (d *Document) Serialize(l *Layer) (json.RawMessage, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", l.ID, err)
	}
	return data, nil
}

// copyTree returns a deep copy of l with fresh identifiers and no parent.
func (d *Document) copyTree(l *Layer) *Layer {
	c := *l
	c.ID = d.newID()
	c.parent = nil
	c.Style = copyStyle(l.Style)
	c.ExportFormats = slices.Clone(l.ExportFormats)
	c.Points = slices.Clone(l.Points)
	if l.Font != nil {
		f := *l.Font
		c.Font = &f
	}
	if l.Image != nil {
		img := *l.Image
		c.Image = &img
	}
	c.Layers = nil
	if len(l.Layers) > 0 {
		children := make([]*Layer, 0, len(l.Layers))
		for _, child := range l.Layers {
			children = append(children, d.copyTree(child))
		}
		c.SetLayers(children)
	}
	return &c
}

func copyStyle(s *Style) *Style {
	if s == nil {
		return nil
	}
	c := *s
	c.Fills = slices.Clone(s.Fills)
	c.Borders = slices.Clone(s.Borders)
	c.Shadows = slices.Clone(s.Shadows)
	c.InnerShadows = slices.Clone(s.InnerShadows)
	if s.Blur != nil {
		b := *s.Blur
		c.Blur = &b
	}
	return &c
}
