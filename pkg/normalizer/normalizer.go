// Package normalizer builds the private working copy of a selection: every layer
// duplicated, symbols resolved into concrete layers and hotspots removed.
package normalizer

import (
	"slices"

	"github.com/kataras/sketch-copy/pkg/apperr"
	"github.com/kataras/sketch-copy/pkg/sketch"
)

// Host is the subset of host document operations the normalizer needs.
type Host interface {
	Duplicate(l *sketch.Layer) (*sketch.Layer, error)
	// Detach resolves a symbol instance recursively. A nil layer with a nil
	// error means the instance resolved to nothing.
	Detach(l *sketch.Layer) (*sketch.Layer, error)
	CreateInstance(master *sketch.Layer) (*sketch.Layer, error)
	Remove(l *sketch.Layer) error
}

// Normalize returns detached working copies of selection with all symbols
// resolved and all hotspots removed. The original layers are not modified.
// On error every working copy created so far is removed again.
func Normalize(host Host, selection []*sketch.Layer) ([]*sketch.Layer, error) {
	layers := make([]*sketch.Layer, 0, len(selection))
	for _, l := range slices.Clone(selection) {
		dup, err := duplicate(host, l)
		if err != nil {
			Discard(host, layers)
			return nil, err
		}
		if dup != nil {
			layers = append(layers, dup)
		}
	}

	for _, l := range layers {
		if err := normalizeChildren(host, l); err != nil {
			Discard(host, layers)
			return nil, err
		}
	}

	for _, l := range layers {
		if l.Type == sketch.TypeHotSpot {
			if err := host.Remove(l); err != nil {
				Discard(host, layers)
				return nil, apperr.Host("remove", l.ID, err)
			}
		}
	}
	return ClearHotSpots(layers), nil
}

// Discard removes working copies from the document, ignoring failures.
func Discard(host Host, layers []*sketch.Layer) {
	for _, l := range layers {
		_ = host.Remove(l)
	}
}

// normalizeChildren replaces the children of a container with their
// normalized duplicates, depth-first.
func normalizeChildren(host Host, l *sketch.Layer) error {
	if !l.IsContainer() {
		return nil
	}

	// Duplicating inserts into l.Layers, so iterate over a snapshot.
	originals := slices.Clone(l.Layers)
	children := make([]*sketch.Layer, 0, len(originals))
	for _, c := range originals {
		dup, err := duplicate(host, c)
		if err != nil {
			return err
		}
		if dup != nil {
			children = append(children, dup)
		}
	}
	l.SetLayers(children)

	for _, c := range children {
		if err := normalizeChildren(host, c); err != nil {
			return err
		}
	}
	return nil
}

func duplicate(host Host, l *sketch.Layer) (*sketch.Layer, error) {
	dup, err := host.Duplicate(l)
	if err != nil {
		return nil, apperr.Host("duplicate", l.ID, err)
	}

	switch dup.Type {
	case sketch.TypeSymbolInstance:
		detached, err := host.Detach(dup)
		if err != nil {
			_ = host.Remove(dup)
			return nil, apperr.Host("detach", dup.ID, err)
		}
		if err := host.Remove(dup); err != nil {
			return nil, apperr.Host("remove", dup.ID, err)
		}
		return detached, nil

	case sketch.TypeSymbolMaster:
		// Masters cannot be detached directly, only their instances.
		inst, err := host.CreateInstance(dup)
		if err != nil {
			_ = host.Remove(dup)
			return nil, apperr.Host("create instance", dup.ID, err)
		}
		detached, err := host.Detach(inst)
		if err != nil {
			_ = host.Remove(dup)
			_ = host.Remove(inst)
			return nil, apperr.Host("detach", inst.ID, err)
		}
		if err := host.Remove(dup); err != nil {
			return nil, apperr.Host("remove", dup.ID, err)
		}
		if err := host.Remove(inst); err != nil {
			return nil, apperr.Host("remove", inst.ID, err)
		}
		return detached, nil
	}

	return dup, nil
}

// ClearHotSpots drops HotSpot layers at every depth, keeping sibling order.
func ClearHotSpots(layers []*sketch.Layer) []*sketch.Layer {
	clean := make([]*sketch.Layer, 0, len(layers))
	for _, l := range layers {
		if l.Type == sketch.TypeHotSpot {
			continue
		}
		clean = append(clean, l)
	}

	for _, l := range clean {
		if l.IsContainer() {
			l.SetLayers(ClearHotSpots(l.Layers))
		}
	}
	return clean
}
