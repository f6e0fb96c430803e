// Package store keeps the user's ordered list of clocks and persists it to a
// YAML file or an SQLite database.
package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/philtim/cityclock/cities"
)

// Entry is one clock on the user's list. It holds a snapshot of the city it
// was created from so it can be shown even when the city is no longer in the
// dataset.
type Entry struct {
	ID string `yaml:"id" json:"id"`
	// CityID is the option id the entry was resolved from. Empty for
	// clocks added by timezone alone.
	CityID   string `yaml:"city_id,omitempty" json:"cityId,omitempty"`
	City     string `yaml:"city" json:"city"`
	Label    string `yaml:"label" json:"label"`
	Country  string `yaml:"country,omitempty" json:"country,omitempty"`
	Timezone string `yaml:"timezone" json:"timezone"`
	ISO2     string `yaml:"iso2,omitempty" json:"iso2,omitempty"`
	Region   string `yaml:"region,omitempty" json:"region,omitempty"`
}

// NewEntry creates an entry from a resolved option.
func NewEntry(opt cities.Option) Entry {
	e := Entry{ID: uuid.NewString(), CityID: opt.ID}
	e.apply(opt)
	return e
}

// NewZoneEntry creates an entry for a bare timezone with a display name.
func NewZoneEntry(name, timezone string) Entry {
	name = strings.TrimSpace(name)
	return Entry{
		ID:       uuid.NewString(),
		City:     name,
		Label:    name,
		Timezone: strings.TrimSpace(timezone),
		Region:   string(cities.RegionOther),
	}
}

func (e *Entry) apply(opt cities.Option) {
	e.City = opt.City
	e.Label = opt.Label
	e.Country = opt.Country
	e.Timezone = opt.Timezone
	e.ISO2 = opt.ISO2
	e.Region = string(opt.Region())
}

// Name returns the text shown on the clock card.
func (e Entry) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return e.City
}

// duplicates reports whether adding e next to o would repeat a city. Entries
// with a city id compare by id, others by city name and timezone.
func (e Entry) duplicates(o Entry) bool {
	if e.CityID != "" {
		return e.CityID == o.CityID
	}
	return strings.EqualFold(e.City, o.City) && e.Timezone == o.Timezone
}
