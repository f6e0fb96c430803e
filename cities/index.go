package cities

import (
	"cmp"
	"slices"
	"strings"
)

// entry is a raw record prepared for matching.
type entry struct {
	opt      Option
	haystack string
}

// Index is the immutable lookup structure built from a dataset. It is safe
// for concurrent reads.
type Index struct {
	records []entry
	byID    map[string]Option
	byCity  map[string][]Option
	byLabel map[string]Option
	popular []Option
}

// BuildIndex prepares records for lookup. Records sharing an option id are
// collapsed, keeping the one with the highest population.
func BuildIndex(records []Record) *Index {
	ix := &Index{
		records: make([]entry, 0, len(records)),
		byID:    make(map[string]Option, len(records)),
		byCity:  make(map[string][]Option),
		byLabel: make(map[string]Option),
	}

	opts := make([]Option, 0, len(records))
	for _, r := range records {
		o := NewOption(r)
		opts = append(opts, o)
		ix.records = append(ix.records, entry{
			opt:      o,
			haystack: Fold(strings.Join([]string{r.City, r.CityASCII, r.Province, r.Country, r.ISO2, r.ISO3}, " ")),
		})
	}

	unique := dedupe(opts)
	sortByPopulation(unique)
	ix.popular = unique

	for _, o := range unique {
		ix.byID[o.ID] = o
		// Labels can repeat across zones; the most populous keeps the key.
		if _, ok := ix.byLabel[Fold(o.Label)]; !ok {
			ix.byLabel[Fold(o.Label)] = o
		}

		keys := []string{Fold(o.City)}
		if k := Fold(o.CityASCII); k != "" && k != keys[0] {
			keys = append(keys, k)
		}
		for _, k := range keys {
			ix.byCity[k] = append(ix.byCity[k], o)
		}
	}

	return ix
}

// Len returns the number of distinct options.
func (ix *Index) Len() int {
	return len(ix.popular)
}

// dedupe keeps one option per id, the one with the highest population,
// at the position where the id was first seen.
func dedupe(opts []Option) []Option {
	pos := make(map[string]int, len(opts))
	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		if i, ok := pos[o.ID]; ok {
			if o.Population > out[i].Population {
				out[i] = o
			}
			continue
		}
		pos[o.ID] = len(out)
		out = append(out, o)
	}
	return out
}

// sortByPopulation orders largest first; ties keep their input order.
func sortByPopulation(opts []Option) {
	slices.SortStableFunc(opts, func(a, b Option) int {
		return cmp.Compare(b.Population, a.Population)
	})
}
