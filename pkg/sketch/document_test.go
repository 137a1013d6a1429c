package sketch_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/kataras/sketch-copy/pkg/sketch"
	"github.com/kataras/sketch-copy/pkg/sketch/sketchtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentJSON = `{
	"name": "Landing",
	"pages": [
		{"id": "P1", "name": "Page 1", "layers": [
			{"id": "AB", "name": "Home", "type": "Artboard", "frame": {"width": 100, "height": 100}, "layers": [
				{"id": "T", "name": "Title", "type": "Text", "font": {"family": "Inter", "size": 12}},
				{"id": "I", "name": "Button", "type": "SymbolInstance", "symbolId": "BTN", "frame": {"x": 5, "y": 6, "width": 50, "height": 20}}
			]}
		]},
		{"id": "P2", "name": "Symbols", "type": "Page", "layers": [
			{"id": "M", "name": "Button", "type": "SymbolMaster", "symbolId": "BTN", "layers": [
				{"id": "BG", "name": "Background", "type": "ShapePath", "shapeType": "Rectangle"},
				{"id": "L", "name": "Label", "type": "Text", "font": {"family": "Roboto", "size": 14}}
			]}
		]}
	]
}`

func TestParseDocument(t *testing.T) {
	doc, err := sketch.ParseDocument([]byte(documentJSON))
	require.NoError(t, err)

	assert.Equal(t, "Landing", doc.Name)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, sketch.TypePage, doc.Pages[0].Type, "missing page type defaults to Page")
	assert.Equal(t, 6, doc.LayerCount())

	title := doc.FindLayer("T")
	require.NotNil(t, title)
	assert.Same(t, doc.FindLayer("AB"), title.Parent())
	assert.Nil(t, doc.FindLayer("nope"))

	// masters on other pages are resolvable
	group, err := doc.Detach(doc.FindLayer("I"))
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, []string{"Background", "Label"}, names(group.Layers))
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"no pages", `{"name": "x", "pages": []}`},
		{"page of wrong type", `{"pages": [{"id": "A", "type": "Artboard"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sketch.ParseDocument([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	doc, err := sketch.ParseDocument([]byte(documentJSON))
	require.NoError(t, err)
	require.NoError(t, doc.Remove(doc.FindLayer("T")))

	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, doc.Save(path))

	loaded, err := sketch.LoadDocument(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.FindLayer("T"))
	assert.NotNil(t, loaded.FindLayer("I"))
	assert.Equal(t, 5, loaded.LayerCount())

	_, err = sketch.LoadDocument(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDuplicate(t *testing.T) {
	rect := sketchtest.Rect("rect")
	other := sketchtest.Rect("other")
	group := sketchtest.Group("group", rect, other)
	doc := sketch.NewDocument("test")
	doc.AddLayers(group)

	dup, err := doc.Duplicate(rect)
	require.NoError(t, err)

	assert.NotEqual(t, rect.ID, dup.ID)
	assert.Equal(t, rect.Name, dup.Name)
	assert.Same(t, group, dup.Parent())
	assert.Equal(t, []*sketch.Layer{rect, dup, other}, group.Layers, "copy sits right after the original")

	dup.Style.Fills[0].Color = "#00FF00FF"
	dup.Points[0].Point.X = 0.5
	assert.Equal(t, "#FF0000FF", rect.Style.Fills[0].Color)
	assert.Equal(t, 0.0, rect.Points[0].Point.X)

	gdup, err := doc.Duplicate(group)
	require.NoError(t, err)
	require.Len(t, gdup.Layers, 3)
	for i, c := range gdup.Layers {
		assert.NotEqual(t, group.Layers[i].ID, c.ID)
		assert.Same(t, gdup, c.Parent())
	}

	_, err = doc.Duplicate(nil)
	assert.ErrorIs(t, err, sketch.ErrNilLayer)
}

func TestDetach(t *testing.T) {
	inner := sketchtest.Master("inner-master", "inner", sketchtest.Rect("dot"))
	empty := sketchtest.Master("empty-master", "empty")
	master := sketchtest.Master("master", "button",
		sketchtest.Rect("bg"),
		sketchtest.Instance("nested", "inner"),
		sketchtest.Instance("nested-empty", "empty"),
	)
	inst := sketchtest.Instance("inst", "button")
	inst.Frame = sketch.Rectangle{X: 10, Y: 20, Width: 30, Height: 40}
	inst.Constraints.Left = true
	artboard := sketchtest.Artboard("ab", inst)

	doc := sketch.NewDocument("test")
	doc.AddLayers(artboard, master, inner, empty)

	group, err := doc.Detach(inst)
	require.NoError(t, err)
	require.NotNil(t, group)

	assert.Equal(t, sketch.TypeGroup, group.Type)
	assert.Equal(t, inst.Frame, group.Frame)
	assert.True(t, group.Constraints.Left)
	assert.Same(t, artboard, group.Parent())
	assert.Equal(t, []*sketch.Layer{group}, artboard.Layers)
	assert.Nil(t, inst.Parent())

	// nested instances resolved, empty ones dropped
	require.Len(t, group.Layers, 2)
	assert.Equal(t, "bg", group.Layers[0].Name)
	assert.Equal(t, sketch.TypeGroup, group.Layers[1].Type)
	assert.Equal(t, "dot", group.Layers[1].Layers[0].Name)
	group.Walk(func(l *sketch.Layer) bool {
		assert.False(t, l.IsSymbol(), l.ID)
		return true
	})

	// master untouched
	assert.Equal(t, []string{"bg", "nested", "nested-empty"}, sketchtest.IDs(master.Layers))
}

func TestDetachErrors(t *testing.T) {
	selfRef := sketchtest.Master("loop-master", "loop", sketchtest.Instance("loop-inst", "loop"))
	doc := sketch.NewDocument("test")
	missing := sketchtest.Instance("missing", "nowhere")
	loop := sketchtest.Instance("loop", "loop")
	empty := sketchtest.Instance("empty", "empty")
	rect := sketchtest.Rect("rect")
	doc.AddLayers(selfRef, missing, loop, empty, rect, sketchtest.Master("empty-master", "empty"))

	_, err := doc.Detach(missing)
	assert.ErrorIs(t, err, sketch.ErrSymbolNotFound)

	_, err = doc.Detach(loop)
	assert.ErrorIs(t, err, sketch.ErrSymbolCycle)

	_, err = doc.Detach(rect)
	assert.ErrorIs(t, err, sketch.ErrNotSymbol)

	got, err := doc.Detach(empty)
	assert.NoError(t, err)
	assert.Nil(t, got, "empty master resolves to nothing")
	assert.Same(t, doc.SelectedPage(), empty.Parent(), "instance left in place")
}

func TestCreateInstance(t *testing.T) {
	master := sketchtest.Master("master", "", sketchtest.Rect("r"))
	doc := sketch.NewDocument("test")
	doc.AddLayers(master)

	inst, err := doc.CreateInstance(master)
	require.NoError(t, err)

	assert.NotEmpty(t, master.SymbolID, "symbol id assigned")
	assert.Equal(t, master.SymbolID, inst.SymbolID)
	assert.Equal(t, sketch.TypeSymbolInstance, inst.Type)
	page := doc.SelectedPage()
	assert.Same(t, page, inst.Parent())
	assert.Same(t, inst, page.Layers[len(page.Layers)-1])

	group, err := doc.Detach(inst)
	require.NoError(t, err)
	assert.Len(t, group.Layers, 1)

	_, err = doc.CreateInstance(sketchtest.Rect("x"))
	assert.ErrorIs(t, err, sketch.ErrNotSymbol)
}

func TestRemove(t *testing.T) {
	master := sketchtest.Master("master", "sym", sketchtest.Rect("r"))
	inst := sketchtest.Instance("inst", "sym")
	doc := sketch.NewDocument("test")
	doc.AddLayers(master, inst)

	require.NoError(t, doc.Remove(master))
	assert.Nil(t, doc.FindLayer("master"))
	assert.Nil(t, master.Parent())

	_, err := doc.Detach(inst)
	assert.ErrorIs(t, err, sketch.ErrSymbolNotFound, "removed masters are unregistered")

	assert.NoError(t, doc.Remove(master), "removing a detached layer is a no-op")
	assert.ErrorIs(t, doc.Remove(nil), sketch.ErrNilLayer)
}

func TestSetLayersMovesChildren(t *testing.T) {
	r := sketchtest.Rect("r")
	a := sketchtest.Group("a", r)
	b := sketchtest.Group("b")

	b.SetLayers([]*sketch.Layer{r})

	assert.Empty(t, a.Layers)
	assert.Same(t, b, r.Parent())
}

func TestImageBytes(t *testing.T) {
	data := sketchtest.PNG(1, 1, color.White)
	doc := sketch.NewDocument("test")
	img := sketchtest.Image("img", data)
	doc.AddLayers(img)

	got, err := doc.ImageBytes(img)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = doc.ImageBytes(sketchtest.Image("empty", nil))
	assert.ErrorIs(t, err, sketch.ErrNoImageData)
	_, err = doc.ImageBytes(sketchtest.Rect("r"))
	assert.ErrorIs(t, err, sketch.ErrNoImageData)
}

func TestSerialize(t *testing.T) {
	group := sketchtest.Group("group", sketchtest.Text("t", "Inter", 12))
	doc := sketch.NewDocument("test")
	doc.AddLayers(group)

	raw, err := doc.Serialize(group)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "group", decoded["id"])
	assert.Equal(t, "Group", decoded["type"])
	layers := decoded["layers"].([]any)
	require.Len(t, layers, 1)
	assert.Equal(t, "Inter", layers[0].(map[string]any)["font"].(map[string]any)["family"])
}

func TestSelect(t *testing.T) {
	doc, err := sketch.ParseDocument([]byte(documentJSON))
	require.NoError(t, err)

	tests := []struct {
		name    string
		queries []string
		want    []string
		wantErr bool
	}{
		{"by id", []string{"T"}, []string{"T"}, false},
		{"by name", []string{"Title"}, []string{"T"}, false},
		{"exact name wins over fuzzy", []string{"Button"}, []string{"I"}, false},
		{"fuzzy, case insensitive", []string{"backgrnd"}, []string{"BG"}, false},
		{"duplicates collapsed", []string{"T", "Title"}, []string{"T"}, false},
		{"order kept", []string{"Label", "Home"}, []string{"L", "AB"}, false},
		{"pages are not selectable", []string{"P1"}, nil, true},
		{"no match", []string{"zzz"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.Select(tt.queries...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sketchtest.IDs(got))
		})
	}
}

func TestSelectExact(t *testing.T) {
	doc, err := sketch.ParseDocument([]byte(documentJSON))
	require.NoError(t, err)

	got, err := doc.SelectExact("T", "Label")
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "L"}, sketchtest.IDs(got))

	_, err = doc.SelectExact("backgrnd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no layer matches "backgrnd"`)
}

func TestRasterize(t *testing.T) {
	rect := sketchtest.Rect("rect")
	rect.Frame = sketch.Rectangle{X: 0, Y: 0, Width: 10, Height: 5}
	shape := sketchtest.Shape("shape", rect)
	shape.Frame = sketch.Rectangle{Width: 10, Height: 5}
	doc := sketch.NewDocument("test")
	doc.AddLayers(shape)

	data, err := doc.Rasterize(shape, sketch.ExportOptions{Format: "png", Scale: 3})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 15), img.Bounds())

	r, g, b, a := img.At(15, 7).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0, 0, 0xffff}, [4]uint32{r, g, b, a})

	_, err = doc.Rasterize(shape, sketch.ExportOptions{Format: "svg"})
	assert.Error(t, err)
}

func TestRasterizeImage(t *testing.T) {
	blue := sketchtest.PNG(2, 2, color.NRGBA{B: 255, A: 255})
	img := sketchtest.Image("img", blue)
	doc := sketch.NewDocument("test")
	doc.AddLayers(img)

	data, err := doc.Rasterize(img, sketch.ExportOptions{Format: "png", Scale: 2})
	require.NoError(t, err)

	out, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
	_, _, bl, _ := out.At(4, 4).RGBA()
	assert.Equal(t, uint32(0xffff), bl)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#FF0000", color.NRGBA{R: 255, A: 255}, true},
		{"#00ff0080", color.NRGBA{G: 255, A: 128}, true},
		{" #0000FFFF ", color.NRGBA{B: 255, A: 255}, true},
		{"red", color.NRGBA{}, false},
		{"#GG0000", color.NRGBA{}, false},
		{"#FF0000ZZ", color.NRGBA{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := sketch.ParseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func names(layers []*sketch.Layer) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.Name
	}
	return out
}
