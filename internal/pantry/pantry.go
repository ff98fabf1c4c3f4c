package pantry

import (
	"sort"
	"strings"
	"time"

	"cookdna/internal/recipe"
)

// Item is one pantry entry as supplied by the pantry provider.
type Item struct {
	Name     string    `json:"name"`
	Quantity float64   `json:"quantity,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	Expiry   time.Time `json:"expiry,omitempty"`
}

// Normalise lowercases and trims an ingredient name and strips one trailing "s".
// It is a fuzzy match, so "Tomatoes" and "tomatoe" collide on purpose.
func Normalise(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(n, "s")
}

// Index is a read-only lookup over pantry contents keyed by normalised name.
type Index struct {
	items map[string]Item
}

// NewIndex builds an Index. Later duplicates of a normalised name win.
func NewIndex(items []Item) Index {
	idx := Index{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if n := Normalise(it.Name); n != "" {
			idx.items[n] = it
		}
	}
	return idx
}

// Len is the number of distinct normalised items.
func (p Index) Len() int {
	return len(p.items)
}

// Has reports whether an ingredient name is on hand.
func (p Index) Has(name string) bool {
	_, ok := p.items[Normalise(name)]
	return ok
}

// MatchRatio is the fraction of the recipe's non-staple ingredients found in the
// pantry. A recipe with no non-staples, or an empty pantry, matches 0.
func (p Index) MatchRatio(r recipe.Recipe) float64 {
	needed := r.NonStaples()
	if len(needed) == 0 || len(p.items) == 0 {
		return 0
	}
	matched := 0
	for _, ing := range needed {
		if p.Has(ing.Name) {
			matched++
		}
	}
	return float64(matched) / float64(len(needed))
}

// Missing returns the normalised non-staple ingredient names of r that are not on hand.
func (p Index) Missing(r recipe.Recipe) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ing := range r.NonStaples() {
		n := Normalise(ing.Name)
		if n == "" || seen[n] {
			continue
		}
		if _, ok := p.items[n]; ok {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Used returns the normalised pantry names that r consumes.
func (p Index) Used(r recipe.Recipe) []string {
	var out []string
	for _, ing := range r.NonStaples() {
		n := Normalise(ing.Name)
		if _, ok := p.items[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ExpiringSoon returns items with an expiry within the given window of now,
// soonest first. Already expired items are included; items without expiry are not.
func (p Index) ExpiringSoon(now time.Time, within time.Duration) []Item {
	var out []Item
	for _, it := range p.items {
		if it.Expiry.IsZero() {
			continue
		}
		if it.Expiry.Sub(now) <= within {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Expiry.Equal(out[j].Expiry) {
			return out[i].Name < out[j].Name
		}
		return out[i].Expiry.Before(out[j].Expiry)
	})
	return out
}
