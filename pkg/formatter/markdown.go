package formatter

import (
	"fmt"
	"strings"

	"github.com/kataras/sketch-copy/pkg/extractor"
)

// ToMarkdown renders a copy summary as a markdown report: totals, the copied
// layer tree with the decision taken for every layer, the flattened images,
// the fonts the target editor needs and the standalone masks.
func ToMarkdown(summary *extractor.Summary, documentName string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Sketch Copy Report - %s\n\n", documentName))
	sb.WriteString("This document describes the layers placed on the clipboard for pasting into Kodika.\n\n")

	// Totals
	st := summary.Stats
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Layers**: %d\n", st.Layers))
	sb.WriteString(fmt.Sprintf("- **Flattened**: %d\n", st.Flattened))
	sb.WriteString(fmt.Sprintf("- **Images**: %d", st.Images))
	if st.Aliases > 0 {
		sb.WriteString(fmt.Sprintf(" (+%d reused)", st.Aliases))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("- **Text Layers**: %d\n", st.Texts))
	sb.WriteString(fmt.Sprintf("- **Masks**: %d\n", st.Masks))
	sb.WriteString("\n")

	// Layer tree
	if len(summary.Layers) > 0 {
		sb.WriteString("## Layers\n\n")
		for _, ld := range summary.Layers {
			writeLayer(&sb, ld, 0)
		}
		sb.WriteString("\n")
	}

	// Flattened images
	if flattened := summary.Flattened(); len(flattened) > 0 {
		sb.WriteString("## Flattened Layers\n\n")
		sb.WriteString("| Layer | Type | Reason | Image |\n")
		sb.WriteString("|-------|------|--------|-------|\n")
		for _, ld := range flattened {
			image := "embedded"
			if ld.ImageOf != "" {
				image = fmt.Sprintf("same as `%s`", ld.ImageOf)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", layerName(ld), ld.Type, ld.Rule, image))
		}
		sb.WriteString("\n")
	}

	// Fonts
	if len(summary.Fonts) > 0 {
		sb.WriteString("## Fonts\n\n")
		sb.WriteString("| Family | Size | Text Layers |\n")
		sb.WriteString("|--------|------|-------------|\n")
		for _, f := range summary.Fonts {
			sb.WriteString(fmt.Sprintf("| %s | %gpt | %d |\n", f.Family, f.Size, f.Count))
		}
		sb.WriteString("\n")
	}

	// Masks
	var masks []*extractor.LayerDescription
	for _, ld := range summary.Layers {
		collectMasked(ld, &masks)
	}
	if len(masks) > 0 {
		sb.WriteString("## Masks\n\n")
		for _, ld := range masks {
			sb.WriteString(fmt.Sprintf("- %s (`%s`)\n", layerName(ld), ld.ID))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeLayer writes ld and its children as a nested markdown list.
func writeLayer(sb *strings.Builder, ld *extractor.LayerDescription, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(fmt.Sprintf("- **%s** %s %.0fx%.0f", layerName(ld), ld.Type, ld.Width, ld.Height))
	if ld.Flattened {
		sb.WriteString(fmt.Sprintf(" - flattened (%s)", ld.Rule))
	}
	if ld.FontFamily != "" {
		sb.WriteString(fmt.Sprintf(" - %s %gpt", ld.FontFamily, ld.FontSize))
	}
	if len(ld.FillColors) > 0 {
		sb.WriteString(" - " + strings.Join(ld.FillColors, ", "))
	}
	if ld.Masked {
		sb.WriteString(" - mask")
	}
	sb.WriteString("\n")

	for _, c := range ld.Children {
		writeLayer(sb, c, depth+1)
	}
}

func collectMasked(ld *extractor.LayerDescription, out *[]*extractor.LayerDescription) {
	if ld.Masked {
		*out = append(*out, ld)
	}
	for _, c := range ld.Children {
		collectMasked(c, out)
	}
}

// layerName returns the display name of a layer, falling back to its ID.
func layerName(ld *extractor.LayerDescription) string {
	if ld.Name == "" {
		return ld.ID
	}
	return ld.Name
}
