package cities

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/cities.csv
var bundledCSV []byte

var csvColumns = []string{"city", "city_ascii", "country", "province", "iso2", "iso3", "timezone", "pop"}

var (
	bundledOnce    sync.Once
	bundledRecords []Record
	bundledErr     error
)

// Bundled returns the records of the dataset compiled into the binary.
// The data is parsed once; callers must not modify the returned slice.
func Bundled() ([]Record, error) {
	bundledOnce.Do(func() {
		bundledRecords, bundledErr = ParseCSV(bytes.NewReader(bundledCSV))
	})
	return bundledRecords, bundledErr
}

// ParseCSV reads city records from CSV with the header
// city,city_ascii,country,province,iso2,iso3,timezone,pop.
// Rows without a city or timezone are skipped.
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvColumns)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range csvColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], name)
		}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := Record{
			City:      strings.TrimSpace(row[0]),
			CityASCII: strings.TrimSpace(row[1]),
			Country:   strings.TrimSpace(row[2]),
			Province:  strings.TrimSpace(row[3]),
			ISO2:      strings.ToUpper(strings.TrimSpace(row[4])),
			ISO3:      strings.ToUpper(strings.TrimSpace(row[5])),
			Timezone:  strings.TrimSpace(row[6]),
		}
		if rec.City == "" || rec.Timezone == "" {
			continue
		}
		if rec.CityASCII == "" {
			rec.CityASCII = rec.City
		}

		if p := strings.TrimSpace(row[7]); p != "" {
			pop, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("city %q: invalid population %q: %w", rec.City, p, err)
			}
			if pop > 0 {
				rec.Population = int(pop)
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
