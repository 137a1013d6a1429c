package sketchcopy

import (
	"encoding/json"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/clipboard"
	"github.com/kataras/sketch-copy/pkg/imager"
	"github.com/kataras/sketch-copy/pkg/payload"
	"github.com/kataras/sketch-copy/pkg/sketch"
	"github.com/kataras/sketch-copy/pkg/sketch/sketchtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notification struct {
	Alert  bool
	Text   string
	Action string
}

type recorder struct {
	got []notification
}

func (r *recorder) Alert(message, action string) {
	r.got = append(r.got, notification{Alert: true, Text: message, Action: action})
}

func (r *recorder) Message(text string) {
	r.got = append(r.got, notification{Text: text})
}

type testLogger struct {
	t     *testing.T
	debug []string
}

func (l *testLogger) Debugf(format string, args ...any) {
	l.debug = append(l.debug, format)
	l.t.Logf("DEBUG "+format, args...)
}
func (l *testLogger) Infof(format string, args ...any) { l.t.Logf("INFO "+format, args...) }
func (l *testLogger) Warnf(format string, args ...any) { l.t.Logf("WARN "+format, args...) }
func (l *testLogger) Errorf(format string, args ...any) { l.t.Logf("ERROR "+format, args...) }

// failingHost fails rasterization and delegates everything else.
type failingHost struct {
	*sketch.Document
	err error
}

func (h *failingHost) Rasterize(l *sketch.Layer, opts imager.ExportConfig) ([]byte, error) {
	return nil, h.err
}

func homeArtboard() *sketch.Layer {
	red := sketchtest.PNG(2, 2, color.NRGBA{R: 255, A: 255})
	title := sketchtest.Text("title", "Inter", 24)
	title.Constraints = sketch.Constraints{Left: true, Top: true, Height: true}
	return sketchtest.Artboard("home",
		title,
		sketchtest.Shape("logo", sketchtest.Rect("logo-path")),
		sketchtest.Image("photo", red),
		sketchtest.Image("photo-copy", red),
		sketchtest.Instance("button", "button-symbol"),
		sketchtest.HotSpot("link"),
	)
}

func buttonMaster() *sketch.Layer {
	return sketchtest.Master("button-master", "button-symbol",
		sketchtest.Rect("button-bg"),
		sketchtest.Text("button-label", "Roboto", 14),
	)
}

func TestRun(t *testing.T) {
	for _, sequential := range []bool{false, true} {
		name := "concurrent"
		if sequential {
			name = "sequential"
		}
		t.Run(name, func(t *testing.T) {
			home := homeArtboard()
			doc := sketch.NewDocument("Landing")
			doc.AddLayers(home, buttonMaster())
			before := doc.LayerCount()

			mem := &clipboard.Memory{}
			notes := &recorder{}
			logger := &testLogger{t: t}
			var normalized []*sketch.Layer

			result, err := Run(Options{
				Host:         doc,
				Clipboard:    mem,
				Selection:    []*sketch.Layer{home},
				DocumentName: "Landing",
				Sequential:   sequential,
				Notifier:     notes,
				Logger:       logger,
				OnNormalized: func(layers []*sketch.Layer) { normalized = layers },
			})
			require.NoError(t, err)

			// document left as found
			assert.Equal(t, before, doc.LayerCount())
			assert.NotNil(t, doc.FindLayer("home"))
			assert.Equal(t, []notification{{Text: MessageCopied}}, notes.got)
			assert.NotEmpty(t, logger.debug)

			// published once, under the editor's type
			assert.Equal(t, 1, mem.Writes())
			data, ok := mem.Get(payload.MimeType)
			require.True(t, ok)
			assert.Equal(t, result.Data, data)

			require.Len(t, normalized, 1)
			copyHome := normalized[0]
			assert.NotEqual(t, "home", copyHome.ID)
			assert.Nil(t, copyHome.Parent())
			require.Len(t, copyHome.Layers, 5, "hotspot dropped")
			button := copyHome.Layers[4]
			assert.Equal(t, sketch.TypeGroup, button.Type)

			var decoded struct {
				Plugin         string                     `json:"plugin"`
				Version        float64                    `json:"version"`
				Data           []map[string]any           `json:"data"`
				Images         map[string]imager.Entry    `json:"images"`
				Fonts          map[string]map[string]any  `json:"fonts"`
				PinConstraints map[string]map[string]bool `json:"pinConstraints"`
				TextsBehaviour map[string]int             `json:"textsBehaviour"`
				MasksArray     []string                   `json:"masksArray"`
			}
			require.NoError(t, json.Unmarshal(data, &decoded))

			assert.Equal(t, "Sketch", decoded.Plugin)
			assert.Equal(t, 70.3, decoded.Version)
			require.Len(t, decoded.Data, 1)
			assert.Equal(t, copyHome.ID, decoded.Data[0]["id"])

			logo, photo, photoCopy := copyHome.Layers[1], copyHome.Layers[2], copyHome.Layers[3]
			require.Len(t, decoded.Images, 3)
			assert.Equal(t, "logo", decoded.Images[logo.ID].Name)
			assert.True(t, strings.HasPrefix(decoded.Images[logo.ID].Base64, "data:image/png;base64,"))
			assert.Equal(t, "photo", decoded.Images[photo.ID].Name)
			assert.Equal(t, imager.Entry{LayerID: photo.ID}, decoded.Images[photoCopy.ID])

			title := copyHome.Layers[0]
			label := button.Layers[1]
			assert.Len(t, decoded.Fonts, 2)
			assert.Equal(t, "Inter", decoded.Fonts[title.ID]["fontName"])
			assert.Equal(t, 24.0, decoded.Fonts[title.ID]["pointSize"])
			assert.Equal(t, "Roboto", decoded.Fonts[label.ID]["fontName"])
			assert.Equal(t, map[string]int{title.ID: int(sketch.TextFixedWidth), label.ID: int(sketch.TextFixedWidth)}, decoded.TextsBehaviour)

			// every layer of the copied tree, the hotspot excluded
			assert.Len(t, decoded.PinConstraints, 9)
			assert.Equal(t, map[string]bool{"left": true, "top": true, "bottom": false, "right": false, "width": false, "height": true}, decoded.PinConstraints[title.ID])
			assert.Empty(t, decoded.MasksArray)

			assert.Equal(t, 1, result.Summary.Stats.Flattened)
			assert.Equal(t, 2, result.Summary.Stats.Images)
			assert.Equal(t, 1, result.Summary.Stats.Aliases)
			assert.Contains(t, result.Markdown, "# Sketch Copy Report - Landing")
		})
	}
}

func TestRunTwoArtboards(t *testing.T) {
	a, b := sketchtest.Artboard("a", sketchtest.Rect("ra")), sketchtest.Artboard("b", sketchtest.Rect("rb"))
	doc := sketch.NewDocument("test")
	doc.AddLayers(a, b)
	before := doc.LayerCount()

	mem := &clipboard.Memory{}
	notes := &recorder{}
	_, err := Run(Options{Host: doc, Clipboard: mem, Selection: []*sketch.Layer{a, b}, Notifier: notes})

	require.ErrorIs(t, err, apperr.ErrMultipleArtboards)
	assert.True(t, apperr.IsUserError(err))
	assert.Equal(t, before, doc.LayerCount())
	assert.Zero(t, mem.Writes())
	assert.Equal(t, []notification{{Alert: true, Text: AlertMultipleArtboards}}, notes.got)
}

func TestRunEmptySelection(t *testing.T) {
	mem := &clipboard.Memory{}
	notes := &recorder{}
	_, err := Run(Options{Host: sketch.NewDocument("test"), Clipboard: mem, Notifier: notes})

	require.ErrorIs(t, err, apperr.ErrEmptySelection)
	assert.Zero(t, mem.Writes())
	assert.Equal(t, []notification{{Text: MessageEmptySelection}}, notes.got)
}

func TestRunOnlyHotSpots(t *testing.T) {
	doc := sketch.NewDocument("test")
	a, b := sketchtest.HotSpot("h1"), sketchtest.HotSpot("h2")
	doc.AddLayers(a, b)
	before := doc.LayerCount()

	mem := &clipboard.Memory{}
	notes := &recorder{}
	_, err := Run(Options{Host: doc, Clipboard: mem, Selection: []*sketch.Layer{a, b}, Notifier: notes})

	require.ErrorIs(t, err, apperr.ErrEmptySelection)
	assert.Zero(t, mem.Writes())
	assert.Equal(t, before, doc.LayerCount())
	assert.Equal(t, []notification{{Text: MessageEmptySelection}}, notes.got)
}

func TestRunUnsupportedMask(t *testing.T) {
	mask := sketchtest.Masked(sketchtest.Shape("mask", sketchtest.Rect("mask-path")))
	doc := sketch.NewDocument("test")
	doc.AddLayers(mask)
	before := doc.LayerCount()

	mem := &clipboard.Memory{}
	notes := &recorder{}
	_, err := Run(Options{Host: doc, Clipboard: mem, Selection: []*sketch.Layer{mask}, Notifier: notes})

	require.ErrorIs(t, err, apperr.ErrUnsupportedMask)
	assert.Equal(t, before, doc.LayerCount())
	assert.Zero(t, mem.Writes())
	assert.Equal(t, []notification{{Alert: true, Text: AlertUnsupportedMask, Action: AlertUnsupportedAction}}, notes.got)
}

func TestRunMaskInsideGroup(t *testing.T) {
	group := sketchtest.Group("group",
		sketchtest.Masked(sketchtest.Shape("mask", sketchtest.Rect("mask-path"))),
		sketchtest.Text("label", "Inter", 12),
	)
	editable := sketchtest.Masked(sketchtest.Rect("editable-mask"))
	doc := sketch.NewDocument("test")
	doc.AddLayers(group, editable)

	result, err := Run(Options{Host: doc, Clipboard: &clipboard.Memory{}, Selection: []*sketch.Layer{group, editable}})
	require.NoError(t, err)

	// the flattened group carries the mask, the editable one stays a mask
	require.Len(t, result.Layers, 2)
	assert.Equal(t, []string{result.Layers[1].ID}, result.Payload.MasksArray)
	_, ok := result.Payload.Images.Get(result.Layers[0].ID)
	assert.True(t, ok)
}

func TestRunHostFailureCleansUp(t *testing.T) {
	home := homeArtboard()
	doc := sketch.NewDocument("test")
	doc.AddLayers(home, buttonMaster())
	before := doc.LayerCount()

	boom := errors.New("renderer crashed")
	mem := &clipboard.Memory{}
	_, err := Run(Options{
		Host:      &failingHost{Document: doc, err: boom},
		Clipboard: mem,
		Selection: []*sketch.Layer{home},
	})

	require.ErrorIs(t, err, boom)
	var hostErr *apperr.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "rasterize", hostErr.Op)
	assert.Equal(t, before, doc.LayerCount())
	assert.Zero(t, mem.Writes())
}

func TestRunMissingFont(t *testing.T) {
	text := sketchtest.Text("text", "Inter", 12)
	text.Font = nil
	doc := sketch.NewDocument("test")
	doc.AddLayers(text)
	before := doc.LayerCount()

	mem := &clipboard.Memory{}
	_, err := Run(Options{Host: doc, Clipboard: mem, Selection: []*sketch.Layer{text}})

	var hostErr *apperr.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "read font", hostErr.Op)
	assert.Equal(t, before, doc.LayerCount())
	assert.Zero(t, mem.Writes())
}

func TestRunCut(t *testing.T) {
	rect := sketchtest.Rect("rect")
	keep := sketchtest.Rect("keep")
	doc := sketch.NewDocument("test")
	doc.AddLayers(rect, keep)

	_, err := Run(Options{Host: doc, Clipboard: &clipboard.Memory{}, Selection: []*sketch.Layer{rect}, Cut: true})
	require.NoError(t, err)

	assert.Nil(t, doc.FindLayer("rect"))
	assert.NotNil(t, doc.FindLayer("keep"))
	assert.Equal(t, 1, doc.LayerCount())
}
