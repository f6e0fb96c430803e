package cities

import (
	"errors"
	"slices"
	"strings"
)

// ErrNoMatch is returned by callers that need an error when input resolves
// to no city. The resolver itself reports misses with ok=false.
var ErrNoMatch = errors.New("unsupported city, pick one of the suggestions")

// DefaultLimit is the number of options returned when no limit is given.
const DefaultLimit = 10

// lookup is one matching strategy. Strategies are tried in order and the
// first non-empty result wins.
type lookup struct {
	find func(ix *Index, query string) []Option
	// ranked results are already deduplicated and sorted by population.
	ranked bool
}

// findByCityProvince searches every name field, so anything the later
// strategies could match is already found by it. They remain as fallbacks
// for queries whose tokens do not all match.
var lookups = []lookup{
	{find: findByCityProvince},
	{find: findByCity},
	{find: findByCityKey, ranked: true},
}

// findByCityProvince matches records whose city, province and country
// fields together contain every query token, e.g. "portland maine".
func findByCityProvince(ix *Index, query string) []Option {
	toks := tokens(query)
	if len(toks) == 0 {
		return nil
	}

	var found []Option
	for _, e := range ix.records {
		match := true
		for _, t := range toks {
			if !strings.Contains(e.haystack, t) {
				match = false
				break
			}
		}
		if match {
			found = append(found, e.opt)
		}
	}
	return found
}

// findByCity matches records whose city name equals the query.
func findByCity(ix *Index, query string) []Option {
	var found []Option
	for _, e := range ix.records {
		if strings.EqualFold(e.opt.City, query) || strings.EqualFold(e.opt.CityASCII, query) {
			found = append(found, e.opt)
		}
	}
	return found
}

func findByCityKey(ix *Index, query string) []Option {
	return ix.byCity[Fold(query)]
}

// Resolver answers city queries against an Index.
type Resolver struct {
	ix *Index
}

// NewResolver returns a resolver over ix.
func NewResolver(ix *Index) *Resolver {
	return &Resolver{ix: ix}
}

// Len returns the number of distinct options known to the resolver.
func (r *Resolver) Len() int {
	return r.ix.Len()
}

// Search returns up to limit options matching query, largest population
// first. Options below minPopulation are dropped unless that would leave
// nothing, in which case the unfiltered list is returned.
func (r *Resolver) Search(query string, limit, minPopulation int) []Option {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []Option
	for _, l := range lookups {
		found := l.find(r.ix, query)
		if len(found) == 0 {
			continue
		}
		if l.ranked {
			results = slices.Clone(found)
		} else {
			results = dedupe(found)
			sortByPopulation(results)
		}
		break
	}

	if minPopulation > 0 {
		filtered := make([]Option, 0, len(results))
		for _, o := range results {
			if o.Population >= minPopulation {
				filtered = append(filtered, o)
			}
		}
		if len(filtered) > 0 {
			results = filtered
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Resolve picks the single best option for free-text input. An exact label
// match wins, then an exact city name, then the most populous city indexed
// under that name, then the top search result.
func (r *Resolver) Resolve(input string) (Option, bool) {
	query := strings.TrimSpace(input)
	if query == "" {
		return Option{}, false
	}

	results := r.Search(query, DefaultLimit, 0)
	if len(results) == 0 {
		return Option{}, false
	}

	for _, o := range results {
		if strings.EqualFold(o.Label, query) {
			return o, true
		}
	}
	for _, o := range results {
		if strings.EqualFold(o.City, query) || strings.EqualFold(o.CityASCII, query) {
			return o, true
		}
	}
	if opts := r.ix.byCity[Fold(query)]; len(opts) > 0 {
		return opts[0], true
	}
	return results[0], true
}

// ByID returns the option with the given id.
func (r *Resolver) ByID(id string) (Option, bool) {
	o, ok := r.ix.byID[id]
	return o, ok
}

// Popular returns the most populous options, for suggestions before the
// user has typed anything.
func (r *Resolver) Popular(limit int) []Option {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, len(r.ix.popular))
	return slices.Clone(r.ix.popular[:limit])
}

// RegionOf classifies input, which may be an ISO-3166 alpha-2 code, a city
// name or an option label such as "Tokyo, Tokyo, Japan".
func (r *Resolver) RegionOf(input string) Region {
	input = strings.TrimSpace(input)
	if len(input) == 2 {
		if region, ok := regionByISO2[strings.ToUpper(input)]; ok {
			return region
		}
	}
	if opts := r.ix.byCity[Fold(input)]; len(opts) > 0 {
		return opts[0].Region()
	}
	if opt, ok := r.ix.byLabel[Fold(input)]; ok {
		return opt.Region()
	}
	return RegionOf(input)
}
