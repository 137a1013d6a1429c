package main

import (
	"fmt"
	"io"
	"os"

	sketchcopy "github.com/kataras/sketch-copy"
	"github.com/kataras/sketch-copy/pkg/clipboard"
	"github.com/kataras/sketch-copy/pkg/config"
	"github.com/kataras/sketch-copy/pkg/imager"
	"github.com/kataras/sketch-copy/pkg/sketch"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

// app runs one copy of the configured document.
type app struct {
	cfg       *config.Config
	selection []string
	cut       bool
	writeBack bool
	dumpTree  bool

	stdout io.Writer // payload, when no output file is set
	stderr io.Writer // summary and tree dump
	logger sketchcopy.Logger
}

// dumper prints layer trees without pointer addresses so that dumps of
// two runs can be diffed.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (a *app) copyOnce() (*sketchcopy.Result, error) {
	doc, err := sketch.LoadDocument(a.cfg.Document)
	if err != nil {
		return nil, err
	}

	// A cut never falls back to a fuzzy match: the layer it would remove
	// must be the one the user named.
	sel := doc.Select
	if a.cut {
		sel = doc.SelectExact
	}
	layers, err := sel(a.selection...)
	if err != nil {
		return nil, fmt.Errorf("select layers: %w", err)
	}

	var cb clipboard.Clipboard = &clipboard.Writer{W: a.stdout}
	if a.cfg.Output != "" {
		cb = &clipboard.File{Path: a.cfg.Output}
	}

	opts := sketchcopy.Options{
		Host:         doc,
		Clipboard:    cb,
		Selection:    layers,
		DocumentName: doc.Name,
		Export:       imager.ExportConfig{Format: a.cfg.Export.Format, Scale: a.cfg.Export.Scale},
		MimeType:     a.cfg.MimeType,
		Cut:          a.cut,
		Sequential:   a.cfg.Sequential,
		Notifier:     &notifier{logger: a.logger},
		Logger:       a.logger,
	}
	if a.dumpTree {
		opts.OnNormalized = func(layers []*sketch.Layer) {
			dumper.Fdump(a.stderr, layers)
		}
	}

	result, err := sketchcopy.Run(opts)
	if err != nil {
		return nil, err
	}

	a.printSummary(result)

	if a.cfg.Report != "" {
		if err := os.WriteFile(a.cfg.Report, []byte(result.Markdown), 0644); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		a.logger.Infof("Report written to %s", a.cfg.Report)
	}

	if a.writeBack {
		if !a.cut {
			a.logger.Warnf("--write-back without --cut leaves the document unchanged")
		}
		if err := doc.Save(a.cfg.Document); err != nil {
			return nil, err
		}
		a.logger.Infof("Document saved to %s", a.cfg.Document)
	}

	return result, nil
}

func (a *app) printSummary(result *sketchcopy.Result) {
	if a.cfg.Log.Format != config.LogFormatText {
		return
	}

	cyan := color.New(color.FgCyan)
	st := result.Summary.Stats
	cyan.Fprintln(a.stderr, "\n📊 Copy Summary:")
	fmt.Fprintf(a.stderr, "  • Layers: %d\n", st.Layers)
	fmt.Fprintf(a.stderr, "  • Flattened: %d\n", st.Flattened)
	fmt.Fprintf(a.stderr, "  • Images: %d (%d reused)\n", st.Images, st.Aliases)
	fmt.Fprintf(a.stderr, "  • Text Layers: %d\n", st.Texts)
	for _, f := range result.Summary.Fonts {
		fmt.Fprintf(a.stderr, "    - %s %gpt\n", f.Family, f.Size)
	}
	if st.Masks > 0 {
		fmt.Fprintf(a.stderr, "  • Masks: %d\n", st.Masks)
	}
	fmt.Fprintf(a.stderr, "  • Payload: %d bytes\n", len(result.Data))
}
