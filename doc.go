// Package sketchcopy serializes a selection of Sketch layers into a single
// clipboard payload that the Kodika design editor can paste: the layer
// structure, flattened images for everything the editor cannot rebuild,
// fonts, pin constraints, text behaviour and clipping masks.
//
// The CLI lives in cmd/sketch-copy; this root package exposes the same
// pipeline as a Go API so that callers can run it against their own host
// document and clipboard.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named sketchcopy:
//
//	import "github.com/kataras/sketch-copy" // package sketchcopy
//
// # Quick start
//
//	doc, err := sketch.LoadDocument("design.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	selection, err := doc.Select("Home")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := sketchcopy.Run(sketchcopy.Options{
//	    Host:      doc,
//	    Clipboard: &clipboard.File{Path: "payload.json"},
//	    Selection: selection,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.md", []byte(result.Markdown), 0644)
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. Debugf receives one line per
// flattened layer with the rule that flattened it.
//
// # Pipeline
//
// Run rejects a selection with more than one artboard before touching the
// document. It then duplicates the selection, resolves symbols into plain
// layers and drops hotspots. Fonts, constraints, masks and images are
// collected concurrently from those working copies (set
// [Options.Sequential] to disable this). The payload is validated before it
// reaches the clipboard, and the working copies are removed on every path.
package sketchcopy
