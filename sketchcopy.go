package sketchcopy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/clipboard"
	"github.com/kataras/sketch-copy/pkg/collector"
	"github.com/kataras/sketch-copy/pkg/decision"
	"github.com/kataras/sketch-copy/pkg/extractor"
	"github.com/kataras/sketch-copy/pkg/formatter"
	"github.com/kataras/sketch-copy/pkg/imager"
	"github.com/kataras/sketch-copy/pkg/normalizer"
	"github.com/kataras/sketch-copy/pkg/payload"
	"github.com/kataras/sketch-copy/pkg/sketch"

	"golang.org/x/sync/errgroup"
)

// User facing texts.
const (
	AlertMultipleArtboards = "You can only copy one Artboard"
	AlertUnsupportedMask   = "You have chosen a Mask that is not part of a group. Group it"
	AlertUnsupportedAction = "DO IT"
	MessageEmptySelection  = "Select the layers to copy first."
	MessageCopied          = "Elements copied successfully! Paste them in the Kodika Design Editor (CMD+V)."
)

// Host is the design document the selection lives in.
type Host interface {
	Duplicate(l *sketch.Layer) (*sketch.Layer, error)
	Detach(l *sketch.Layer) (*sketch.Layer, error)
	CreateInstance(master *sketch.Layer) (*sketch.Layer, error)
	Remove(l *sketch.Layer) error
	Rasterize(l *sketch.Layer, opts imager.ExportConfig) ([]byte, error)
	ImageBytes(l *sketch.Layer) ([]byte, error)
	Serialize(l *sketch.Layer) (json.RawMessage, error)
}

// Notifier shows blocking alerts and transient messages to the user.
type Notifier interface {
	Alert(message, action string)
	Message(text string)
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Options configures a copy.
type Options struct {
	Host         Host
	Clipboard    clipboard.Clipboard
	Selection    []*sketch.Layer
	DocumentName string              // used in the report title
	Export       imager.ExportConfig // zero = png at 3x
	MimeType     string              // empty = payload.MimeType
	Cut          bool                // remove the selected layers after publishing
	Sequential   bool                // run the collectors one after another
	Notifier     Notifier            // nil = no user notifications
	Logger       Logger              // nil = no logging

	// OnNormalized, when set, is called with the working copies before they
	// are collected. They must not be modified.
	OnNormalized func(layers []*sketch.Layer)
}

// Result contains the copy output.
type Result struct {
	Payload  *payload.Payload
	Data     []byte // the encoded payload as published
	Layers   []*sketch.Layer
	Summary  *extractor.Summary
	Markdown string // copy report
}

func (o *Options) logDebug(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Debugf(f, a...)
	}
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

func (o *Options) alert(message, action string) {
	if o.Notifier != nil {
		o.Notifier.Alert(message, action)
	}
}

func (o *Options) message(text string) {
	if o.Notifier != nil {
		o.Notifier.Message(text)
	}
}

// Run copies the selection to the clipboard and returns what was published.
//
// The selection itself is never modified, unless Cut is set and the payload
// was published. Working copies are removed from the document whether the
// copy succeeds or not.
func Run(opts Options) (*Result, error) {
	// Apply defaults.
	if opts.Export.Format == "" {
		opts.Export.Format = imager.DefaultExportConfig.Format
	}
	if opts.Export.Scale == 0 {
		opts.Export.Scale = imager.DefaultExportConfig.Scale
	}
	if opts.MimeType == "" {
		opts.MimeType = payload.MimeType
	}
	if opts.Host == nil {
		return nil, errors.New("no host document")
	}
	if opts.Clipboard == nil {
		return nil, errors.New("no clipboard")
	}

	if len(opts.Selection) == 0 {
		opts.message(MessageEmptySelection)
		return nil, apperr.ErrEmptySelection
	}
	if countArtboards(opts.Selection) > 1 {
		opts.logWarn("Selection holds more than one artboard, nothing copied")
		opts.alert(AlertMultipleArtboards, "")
		return nil, apperr.ErrMultipleArtboards
	}

	opts.logInfo("Normalizing %d selected layer(s)...", len(opts.Selection))
	layers, err := normalizer.Normalize(opts.Host, opts.Selection)
	if err != nil {
		opts.logError("Normalizing failed: %v", err)
		return nil, fmt.Errorf("normalize selection: %w", err)
	}
	// Working copies never outlive the run.
	defer normalizer.Discard(opts.Host, layers)

	if len(layers) == 0 {
		opts.logWarn("Selection holds only hotspots, nothing copied")
		opts.message(MessageEmptySelection)
		return nil, apperr.ErrEmptySelection
	}

	if opts.OnNormalized != nil {
		opts.OnNormalized(layers)
	}

	result, err := publish(&opts, layers)
	if err != nil {
		if errors.Is(err, apperr.ErrUnsupportedMask) {
			opts.alert(AlertUnsupportedMask, AlertUnsupportedAction)
		}
		opts.logError("Copy failed: %v", err)
		return nil, err
	}

	if opts.Cut {
		opts.logInfo("Removing %d selected layer(s)...", len(opts.Selection))
		for _, l := range opts.Selection {
			if err := opts.Host.Remove(l); err != nil {
				// The payload is already on the clipboard.
				opts.logWarn("Could not remove %s: %v", l.ID, err)
			}
		}
	}

	opts.message(MessageCopied)
	return result, nil
}

// publish collects, assembles, validates and writes the payload of the
// normalized layers.
func publish(opts *Options, layers []*sketch.Layer) (*Result, error) {
	for _, l := range layers {
		l.Walk(func(c *sketch.Layer) bool {
			if rule, export := decision.Reason(c); export {
				opts.logDebug("Flattening %s %q (%s)", c.Type, c.Name, rule)
				return false
			}
			return true
		})
	}

	tables, err := collect(opts, layers)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Collected %d image(s), %d font(s), %d mask(s)", tables.Images.Len(), len(tables.Fonts), len(tables.Masks))

	data := make([]json.RawMessage, 0, len(layers))
	for _, l := range layers {
		raw, err := opts.Host.Serialize(l)
		if err != nil {
			return nil, apperr.Host("serialize", l.ID, err)
		}
		data = append(data, raw)
	}

	p := payload.Assemble(data, tables)
	if err := p.Validate(layers); err != nil {
		return nil, err
	}
	encoded, err := p.Encode()
	if err != nil {
		return nil, err
	}

	opts.logInfo("Publishing %d byte(s) as %s...", len(encoded), opts.MimeType)
	if err := opts.Clipboard.SetPayload(encoded, opts.MimeType); err != nil {
		return nil, fmt.Errorf("publish payload: %w", err)
	}

	summary := extractor.Summarize(layers, p)
	return &Result{
		Payload:  p,
		Data:     encoded,
		Layers:   layers,
		Summary:  summary,
		Markdown: formatter.ToMarkdown(summary, opts.DocumentName),
	}, nil
}

// collect runs the attribute collectors and the image exporter over the
// normalized layers. Each walk owns one table.
func collect(opts *Options, layers []*sketch.Layer) (*payload.Tables, error) {
	tables := payload.NewTables()

	var g errgroup.Group
	if opts.Sequential {
		g.SetLimit(1)
	}

	g.Go(func() error {
		for _, l := range layers {
			if err := collector.CollectFonts(l, tables.Fonts); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, l := range layers {
			collector.CollectConstraints(l, tables.PinConstraints, tables.TextsBehaviour)
		}
		return nil
	})
	g.Go(func() error {
		for _, l := range layers {
			if collector.CollectMasks(l, &tables.Masks) {
				return fmt.Errorf("%w: %s", apperr.ErrUnsupportedMask, l.Name)
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, l := range layers {
			if err := imager.CollectImages(opts.Host, l, tables.Images, opts.Export); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func countArtboards(layers []*sketch.Layer) int {
	n := 0
	for _, l := range layers {
		if l.Type == sketch.TypeArtboard {
			n++
		}
	}
	return n
}
