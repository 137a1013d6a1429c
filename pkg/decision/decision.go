// Package decision decides whether a layer has to be flattened into a single
// bitmap or can travel as editable vector and text data.
package decision

import (
	"github.com/kataras/sketch-copy/pkg/sketch"
)

// Rule names the first rule that decided a layer's fate.
type Rule string

const (
	RuleArtboard      Rule = "artboard"
	RuleShape         Rule = "shape"
	RuleMaskedGroup   Rule = "group with flattened mask"
	RuleFlatGroup     Rule = "group of flattened layers"
	RuleTransform     Rule = "rotation or flip"
	RuleExportFormats Rule = "export formats"
	RuleBlur          Rule = "blur"
	RuleFill          Rule = "gradient or pattern fill"
	RuleInnerShadow   Rule = "inner shadow"
	RuleShapePath     Rule = "non-rectangular path"
	RuleEditable      Rule = "editable"
)

// ShouldExport reports whether l must be rasterized as one flattened image.
// It depends only on l and its subtree.
func ShouldExport(l *sketch.Layer) bool {
	_, export := Reason(l)
	return export
}

// Reason is ShouldExport that also returns the rule that fired.
func Reason(l *sketch.Layer) (Rule, bool) {
	switch l.Type {
	case sketch.TypeArtboard:
		return RuleArtboard, false
	case sketch.TypeShape:
		return RuleShape, true
	case sketch.TypeGroup:
		if rule, ok := groupRule(l); ok {
			return rule, true
		}
	}

	if l.Transform.Rotation != 0 || l.Transform.FlippedHorizontally || l.Transform.FlippedVertically {
		return RuleTransform, true
	}
	if len(l.ExportFormats) != 0 {
		return RuleExportFormats, true
	}

	if s := l.Style; s != nil {
		if s.Blur != nil && s.Blur.Enabled {
			return RuleBlur, true
		}
		for _, f := range s.Fills {
			if f.Enabled && (f.FillType == sketch.FillGradient || f.FillType == sketch.FillPattern) {
				return RuleFill, true
			}
		}
		for _, sh := range s.InnerShadows {
			if sh.Enabled {
				return RuleInnerShadow, true
			}
		}
	}

	if l.HasPoints() && !IsPlainRectangle(l) {
		return RuleShapePath, true
	}
	return RuleEditable, false
}

// groupRule flattens a group when a masked child must be flattened (the mask
// only makes sense together with what it clips) or when every child must be.
// An empty group trivially satisfies the second condition.
func groupRule(g *sketch.Layer) (Rule, bool) {
	for _, c := range g.Layers {
		if c.HasClippingMask && ShouldExport(c) {
			return RuleMaskedGroup, true
		}
	}

	for _, c := range g.Layers {
		if !ShouldExport(c) {
			return "", false
		}
	}
	return RuleFlatGroup, true
}

// IsPlainRectangle reports whether a shape path is an axis-aligned rectangle
// spanning its own frame: shape type Rectangle, four distinct straight points,
// each coordinate 0 or 1.
func IsPlainRectangle(l *sketch.Layer) bool {
	if l.ShapeType != sketch.ShapeRectangle || len(l.Points) != 4 {
		return false
	}
	for i, p := range l.Points {
		if p.PointType != sketch.PointStraight {
			return false
		}
		if !isUnit(p.Point.X) || !isUnit(p.Point.Y) {
			return false
		}
		for _, prev := range l.Points[:i] {
			if prev.Point == p.Point {
				return false
			}
		}
	}
	return true
}

func isUnit(v float64) bool {
	return v == 0 || v == 1
}
