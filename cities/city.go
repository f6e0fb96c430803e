// Package cities resolves free-text city names to IANA time zones using a
// static city dataset ranked by population.
package cities

import "strings"

// Record is one raw row of the city dataset.
type Record struct {
	City       string
	CityASCII  string
	Country    string
	Province   string
	ISO2       string
	ISO3       string
	Timezone   string
	Population int
}

// Option is a display-ready city. Records that share the same
// (city, province, country, timezone) tuple collapse into one Option.
type Option struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	City       string `json:"city"`
	CityASCII  string `json:"cityAscii"`
	Country    string `json:"country"`
	Province   string `json:"province,omitempty"`
	ISO2       string `json:"iso2"`
	ISO3       string `json:"iso3"`
	Timezone   string `json:"timezone"`
	Population int    `json:"population"`
}

// OptionID returns the stable key for a record.
func OptionID(r Record) string {
	return strings.Join([]string{r.City, r.Province, r.Country, r.Timezone}, "|")
}

// Label formats "City[, Province], Country". The province is omitted when it
// is empty or equal to the country.
func Label(r Record) string {
	parts := []string{r.City}
	if r.Province != "" && r.Province != r.Country {
		parts = append(parts, r.Province)
	}
	if r.Country != "" {
		parts = append(parts, r.Country)
	}
	return strings.Join(parts, ", ")
}

// NewOption projects a record into an Option.
func NewOption(r Record) Option {
	return Option{
		ID:         OptionID(r),
		Label:      Label(r),
		City:       r.City,
		CityASCII:  r.CityASCII,
		Country:    r.Country,
		Province:   r.Province,
		ISO2:       r.ISO2,
		ISO3:       r.ISO3,
		Timezone:   r.Timezone,
		Population: r.Population,
	}
}

// Region classifies the option by its country code.
func (o Option) Region() Region {
	return RegionOf(o.ISO2)
}
