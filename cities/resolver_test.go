package cities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundledResolver(t *testing.T) *Resolver {
	t.Helper()
	records, err := Bundled()
	require.NoError(t, err)
	return NewResolver(BuildIndex(records))
}

func assertRanked(t *testing.T, opts []Option) {
	t.Helper()
	seen := make(map[string]bool, len(opts))
	for i, o := range opts {
		assert.False(t, seen[o.ID], "duplicate id %q", o.ID)
		seen[o.ID] = true
		if i > 0 {
			assert.GreaterOrEqual(t, opts[i-1].Population, o.Population, "not sorted at %d", i)
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	r := bundledResolver(t)
	for _, q := range []string{"", " ", "\t\n "} {
		assert.Empty(t, r.Search(q, 10, 0), "query %q", q)
	}
}

func TestSearch_SortedAndDeduplicated(t *testing.T) {
	r := bundledResolver(t)
	for _, q := range []string{"springfield", "london", "japan", "san", "a"} {
		t.Run(q, func(t *testing.T) {
			opts := r.Search(q, 50, 0)
			require.NotEmpty(t, opts)
			assertRanked(t, opts)
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	r := bundledResolver(t)

	opts := r.Search("japan", 3, 0)
	require.Len(t, opts, 3)
	assert.Equal(t, "Tokyo", opts[0].City)
	assert.Equal(t, "Osaka", opts[1].City)
	assert.Equal(t, "Yokohama", opts[2].City)

	assert.Len(t, r.Search("a", 0, 0), DefaultLimit)
}

func TestSearch_CityAndProvince(t *testing.T) {
	r := bundledResolver(t)

	opts := r.Search("Portland, Maine", 10, 0)
	require.Len(t, opts, 1)
	assert.Equal(t, "America/New_York", opts[0].Timezone)

	opts = r.Search("portland", 10, 0)
	require.Len(t, opts, 2)
	assert.Equal(t, "Oregon", opts[0].Province)
}

func TestSearch_IgnoresDiacritics(t *testing.T) {
	r := bundledResolver(t)

	opts := r.Search("sao paulo", 10, 0)
	require.NotEmpty(t, opts)
	assert.Equal(t, "São Paulo", opts[0].City)

	opts = r.Search("BOGOTÁ", 10, 0)
	require.NotEmpty(t, opts)
	assert.Equal(t, "America/Bogota", opts[0].Timezone)
}

func TestSearch_MinPopulation(t *testing.T) {
	r := bundledResolver(t)

	opts := r.Search("springfield", 10, 155_000)
	require.Len(t, opts, 1)
	assert.Equal(t, "Missouri", opts[0].Province)

	// A floor nobody reaches falls back to the unfiltered list.
	opts = r.Search("springfield", 10, 10_000_000)
	require.Len(t, opts, 3)
	assertRanked(t, opts)
	assert.Equal(t, []string{"Missouri", "Massachusetts", "Illinois"},
		[]string{opts[0].Province, opts[1].Province, opts[2].Province})
}

func TestSearch_NoMatch(t *testing.T) {
	r := bundledResolver(t)
	assert.Empty(t, r.Search("InvalidCity123", 10, 0))
}

func TestResolve(t *testing.T) {
	r := bundledResolver(t)

	tests := []struct {
		input    string
		timezone string
		country  string
	}{
		{"Tokyo", "Asia/Tokyo", "Japan"},
		{"  tokyo ", "Asia/Tokyo", "Japan"},
		{"London", "Europe/London", "United Kingdom"},
		{"London, Ontario, Canada", "America/Toronto", "Canada"},
		{"Paris", "Europe/Paris", "France"},
		{"Paris, Texas", "America/Chicago", "United States of America"},
		{"portland maine", "America/New_York", "United States of America"},
		{"Sao Paulo", "America/Sao_Paulo", "Brazil"},
		{"new york", "America/New_York", "United States of America"},
		{"St. John's", "America/St_Johns", "Canada"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opt, ok := r.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.timezone, opt.Timezone)
			assert.Equal(t, tt.country, opt.Country)
		})
	}
}

func TestResolve_Blank(t *testing.T) {
	r := bundledResolver(t)
	for _, in := range []string{"", "   ", "\t"} {
		_, ok := r.Resolve(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestResolve_Unknown(t *testing.T) {
	r := bundledResolver(t)
	_, ok := r.Resolve("InvalidCity123")
	assert.False(t, ok)
}

func TestResolve_AmbiguousPicksLargest(t *testing.T) {
	r := bundledResolver(t)

	opt, ok := r.Resolve("Hyderabad")
	require.True(t, ok)
	assert.Equal(t, "India", opt.Country)

	opt, ok = r.Resolve("Springfield")
	require.True(t, ok)
	assert.Equal(t, "Missouri", opt.Province)
}

func TestByID_RoundTrip(t *testing.T) {
	r := bundledResolver(t)

	for _, in := range []string{"Tokyo", "London", "Kingston", "Córdoba", "portland", "Valencia, Venezuela", "singapore"} {
		t.Run(in, func(t *testing.T) {
			opt, ok := r.Resolve(in)
			require.True(t, ok)

			byID, ok := r.ByID(opt.ID)
			require.True(t, ok)
			assert.Equal(t, opt, byID)
		})
	}

	_, ok := r.ByID("Atlantis||Nowhere|Etc/Nowhere")
	assert.False(t, ok)
}

func TestPopular(t *testing.T) {
	r := bundledResolver(t)

	top := r.Popular(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Tokyo", "New York", "Mexico City"},
		[]string{top[0].City, top[1].City, top[2].City})

	all := r.Popular(10_000)
	assert.Len(t, all, r.Len())
	assertRanked(t, all)

	// Callers get a copy.
	top[0].City = "changed"
	assert.Equal(t, "Tokyo", r.Popular(1)[0].City)
}

func TestBuildIndex_KeepsHighestPopulation(t *testing.T) {
	records := []Record{
		{City: "Alpha", Country: "Testland", Timezone: "UTC", ISO2: "JP", Population: 10},
		{City: "Beta", Country: "Testland", Timezone: "UTC", ISO2: "JP", Population: 30},
		{City: "Alpha", Country: "Testland", Timezone: "UTC", ISO2: "DE", Population: 50},
		{City: "Alpha", Country: "Testland", Timezone: "UTC", ISO2: "FR", Population: 20},
	}
	r := NewResolver(BuildIndex(records))

	assert.Equal(t, 2, r.Len())

	alpha, ok := r.ByID(OptionID(records[0]))
	require.True(t, ok)
	assert.Equal(t, 50, alpha.Population)
	assert.Equal(t, "DE", alpha.ISO2)

	opts := r.Search("alpha", 10, 0)
	require.Len(t, opts, 1)
	assert.Equal(t, alpha, opts[0])
}

func TestBuildIndex_TiesKeepDatasetOrder(t *testing.T) {
	records := []Record{
		{City: "Zeta", Country: "Testland", Timezone: "UTC", Population: 100},
		{City: "Eta", Country: "Testland", Timezone: "UTC", Population: 100},
		{City: "Theta", Country: "Testland", Timezone: "UTC", Population: 100},
	}
	r := NewResolver(BuildIndex(records))

	opts := r.Search("testland", 10, 0)
	require.Len(t, opts, 3)
	assert.Equal(t, []string{"Zeta", "Eta", "Theta"}, []string{opts[0].City, opts[1].City, opts[2].City})
}

func TestFindByCityKey(t *testing.T) {
	ix := BuildIndex([]Record{
		{City: "Zürich", CityASCII: "Zurich", Country: "Switzerland", Timezone: "Europe/Zurich", Population: 2},
		{City: "Zurich", Country: "Netherlands", Timezone: "Europe/Amsterdam", Population: 1},
	})

	opts := findByCityKey(ix, "  ZURICH ")
	require.Len(t, opts, 2)
	assert.Equal(t, "Switzerland", opts[0].Country)
}

func TestFindByCityProvince_CoversLaterLookups(t *testing.T) {
	records, err := Bundled()
	require.NoError(t, err)
	ix := BuildIndex(records)

	for _, o := range ix.popular {
		first := make(map[string]bool)
		for _, f := range findByCityProvince(ix, o.City) {
			first[f.ID] = true
		}
		for _, f := range append(findByCity(ix, o.City), findByCityKey(ix, o.City)...) {
			assert.True(t, first[f.ID], "%q: %s only found by a later lookup", o.City, f.ID)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"with province", Record{City: "Tokyo", Province: "Tokyo", Country: "Japan"}, "Tokyo, Tokyo, Japan"},
		{"no province", Record{City: "Singapore", Country: "Singapore"}, "Singapore, Singapore"},
		{"province equals country", Record{City: "Luxembourg", Province: "Luxembourg", Country: "Luxembourg"}, "Luxembourg, Luxembourg"},
		{"no country", Record{City: "Nowhere"}, "Nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.rec))
		})
	}
}

func TestOptionID(t *testing.T) {
	assert.Equal(t, "Hong Kong||Hong Kong S.A.R.|Asia/Hong_Kong",
		OptionID(Record{City: "Hong Kong", Country: "Hong Kong S.A.R.", Timezone: "Asia/Hong_Kong"}))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "sao paulo", Fold("  São   Paulo "))
	assert.Equal(t, "reykjavik", Fold("Reykjavík"))
	assert.Equal(t, []string{"london", "ontario"}, tokens("London,Ontario"))
}

func TestParseCSV(t *testing.T) {
	in := strings.Join([]string{
		"city,city_ascii,country,province,iso2,iso3,timezone,pop",
		"Tokyo,Tokyo,Japan,Tokyo,jp,jpn,Asia/Tokyo,22006300",
		"Nowhere,,Testland,,ZZ,ZZZ,,5",
		"Small,,Testland,,ZZ,ZZZ,UTC,",
		"Decimal,Decimal,Testland,,ZZ,ZZZ,UTC,1234.0",
	}, "\n")

	records, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		City: "Tokyo", CityASCII: "Tokyo", Country: "Japan", Province: "Tokyo",
		ISO2: "JP", ISO3: "JPN", Timezone: "Asia/Tokyo", Population: 22006300,
	}, records[0])
	assert.Equal(t, "Small", records[1].CityASCII)
	assert.Zero(t, records[1].Population)
	assert.Equal(t, 1234, records[2].Population)
}

func TestParseCSV_BadHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,ascii,country,province,iso2,iso3,timezone,pop\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected column")
}

func TestParseCSV_BadPopulation(t *testing.T) {
	in := "city,city_ascii,country,province,iso2,iso3,timezone,pop\nTokyo,Tokyo,Japan,Tokyo,JP,JPN,Asia/Tokyo,many\n"
	_, err := ParseCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid population")
}

func TestBundled(t *testing.T) {
	records, err := Bundled()
	require.NoError(t, err)
	assert.Greater(t, len(records), 100)
	for _, r := range records {
		assert.NotEmpty(t, r.City)
		assert.NotEmpty(t, r.Timezone)
		assert.Len(t, r.ISO2, 2, "city %s", r.City)
	}
}
