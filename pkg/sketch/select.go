package sketch

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Select resolves queries into layers, in query order and without duplicates.
// A query matches a layer by exact identifier first, then by exact name, then by
// the closest case-insensitive fuzzy name match. Pages are never selected.
func (d *Document) Select(queries ...string) ([]*Layer, error) {
	return d.selectLayers(queries, true)
}

// SelectExact is like Select without the fuzzy fallback: every query must be a
// layer identifier or an exact layer name.
func (d *Document) SelectExact(queries ...string) ([]*Layer, error) {
	return d.selectLayers(queries, false)
}

func (d *Document) selectLayers(queries []string, allowFuzzy bool) ([]*Layer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var candidates []*Layer
	for _, p := range d.Pages {
		p.Walk(func(l *Layer) bool {
			if l != p {
				candidates = append(candidates, l)
			}
			return true
		})
	}

	names := make([]string, len(candidates))
	for i, l := range candidates {
		names[i] = l.Name
	}

	seen := make(map[*Layer]bool)
	selected := make([]*Layer, 0, len(queries))
	for _, q := range queries {
		l := matchLayer(q, candidates, names, allowFuzzy)
		if l == nil {
			return nil, fmt.Errorf("no layer matches %q", q)
		}
		if !seen[l] {
			seen[l] = true
			selected = append(selected, l)
		}
	}
	return selected, nil
}

func matchLayer(q string, candidates []*Layer, names []string, allowFuzzy bool) *Layer {
	for _, l := range candidates {
		if l.ID == q {
			return l
		}
	}
	for _, l := range candidates {
		if l.Name == q {
			return l
		}
	}

	if !allowFuzzy {
		return nil
	}
	ranks := fuzzy.RankFindFold(q, names)
	if len(ranks) == 0 {
		return nil
	}
	sort.Stable(ranks)
	return candidates[ranks[0].OriginalIndex]
}
