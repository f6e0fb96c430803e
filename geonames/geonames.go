// Package geonames provides the optional large city dataset. The GeoNames
// cities15000 dump is downloaded once into a cache directory and parsed into
// cities.Record values.
package geonames

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/philtim/cityclock/cities"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// GeoNamesURL points at the GeoNames dump of cities above 15000 inhabitants.
	GeoNamesURL = "http://download.geonames.org/export/dump/cities15000.zip"
	// CacheFileName is the extracted TSV kept in the cache directory.
	CacheFileName = "cities15000.txt"
)

// Column positions in the GeoNames main table.
const (
	colName       = 1
	colASCIIName  = 2
	colCountry    = 8
	colAdmin1     = 10
	colPopulation = 14
	colTimezone   = 17
	minColumns    = 18
)

// Database loads GeoNames records in the background and serves a resolver over them.
type Database struct {
	url      string
	cacheDir string
	client   *http.Client
	logger   *slog.Logger

	records  []cities.Record
	resolver *cities.Resolver
	ready    bool
	err      error
	mu       sync.RWMutex
}

// NewDatabase creates a new GeoNames database instance. An empty url uses
// GeoNamesURL.
func NewDatabase(url, cacheDir string, logger *slog.Logger) *Database {
	if url == "" {
		url = GeoNamesURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Database{
		url:      url,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 2 * time.Minute},
		logger:   logger,
	}
}

// LoadAsync runs Load in a goroutine; poll IsReady and GetError.
func (db *Database) LoadAsync(ctx context.Context) {
	go func() {
		if err := db.Load(ctx); err != nil {
			db.logger.Error("geonames load failed", "error", err)
		}
	}()
}

// Load downloads (if needed) and loads the GeoNames database. Any error is
// also kept for GetError.
func (db *Database) Load(ctx context.Context) error {
	err := db.load(ctx)
	if err != nil {
		db.mu.Lock()
		db.err = err
		db.mu.Unlock()
	}
	return err
}

func (db *Database) load(ctx context.Context) error {
	start := time.Now()
	cachePath := db.CachePath()

	// Reuse the extracted file when present.
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		db.logger.Info("downloading geonames dataset", "url", db.url, "path", cachePath)
		if err := db.downloadAndExtract(ctx, cachePath); err != nil {
			return fmt.Errorf("failed to download GeoNames data: %w", err)
		}
	}

	records, err := ParseFile(cachePath)
	if err != nil {
		return fmt.Errorf("failed to parse GeoNames data: %w", err)
	}
	resolver := cities.NewResolver(cities.BuildIndex(records))

	db.mu.Lock()
	db.records = records
	db.resolver = resolver
	db.ready = true
	db.err = nil
	db.mu.Unlock()

	db.logger.Info("geonames dataset loaded",
		"records", len(records),
		"options", resolver.Len(),
		"duration", time.Since(start))
	return nil
}

// IsReady reports whether Records and Resolver are usable.
func (db *Database) IsReady() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ready
}

// GetError reports why loading failed, if it did.
func (db *Database) GetError() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.err
}

// Records returns the loaded records, or nil before the database is ready.
func (db *Database) Records() []cities.Record {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.records
}

// Resolver returns a resolver over the loaded records, or nil before the
// database is ready.
func (db *Database) Resolver() *cities.Resolver {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.resolver
}

// CachePath returns the path to the cache file
func (db *Database) CachePath() string {
	return filepath.Join(db.cacheDir, CacheFileName)
}

// downloadAndExtract fetches the archive and leaves only the TSV behind.
func (db *Database) downloadAndExtract(ctx context.Context, targetPath string) error {
	// Create cache directory
	cacheDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	// The archive is removed once extracted.
	tempZip := filepath.Join(cacheDir, "cities15000.zip")
	if err := db.downloadFile(ctx, tempZip); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer os.Remove(tempZip)

	// Extract next to the target and rename so a failed extract leaves no
	// partial cache behind.
	tempTxt := targetPath + ".tmp"
	if err := extractFile(tempZip, CacheFileName, tempTxt); err != nil {
		os.Remove(tempTxt)
		return fmt.Errorf("failed to extract file: %w", err)
	}
	if err := os.Rename(tempTxt, targetPath); err != nil {
		os.Remove(tempTxt)
		return fmt.Errorf("failed to move extracted file: %w", err)
	}
	return nil
}

// downloadFile downloads the dataset zip to path
func (db *Database) downloadFile(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, db.url, nil)
	if err != nil {
		return err
	}
	resp, err := db.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// extractFile copies one archive member to targetPath.
func extractFile(zipPath, fileName, targetPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != fileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		out, err := os.Create(targetPath)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, rc)
		return err
	}

	return fmt.Errorf("file %s not found in zip archive", fileName)
}

// ParseFile parses a GeoNames cities dump such as cities15000.txt
func ParseFile(path string) ([]cities.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads GeoNames tab-separated rows. Rows without a timezone or with
// too few columns are skipped.
func Parse(r io.Reader) ([]cities.Record, error) {
	var records []cities.Record
	countries := newCountryNames()

	scanner := bufio.NewScanner(r)
	// Alternate-name columns can exceed the default token size.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < minColumns {
			continue
		}

		name := strings.TrimSpace(fields[colName])
		timezone := strings.TrimSpace(fields[colTimezone])
		if name == "" || timezone == "" {
			continue
		}

		iso2 := strings.ToUpper(strings.TrimSpace(fields[colCountry]))
		country, iso3 := countries.lookup(iso2)
		population, _ := strconv.Atoi(strings.TrimSpace(fields[colPopulation]))

		ascii := strings.TrimSpace(fields[colASCIIName])
		if ascii == "" {
			ascii = name
		}

		records = append(records, cities.Record{
			City:       name,
			CityASCII:  ascii,
			Country:    country,
			Province:   province(fields[colAdmin1]),
			ISO2:       iso2,
			ISO3:       iso3,
			Timezone:   timezone,
			Population: population,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// province keeps admin1 codes that read as names or abbreviations, such as
// US states ("ME", "OR"). Numeric codes mean nothing to a reader.
func province(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == "00" {
		return ""
	}
	if _, err := strconv.Atoi(code); err == nil {
		return ""
	}
	return code
}

// countryNames memoises ISO2 to English country name and ISO3.
type countryNames struct {
	namer display.Namer
	cache map[string][2]string
}

func newCountryNames() *countryNames {
	return &countryNames{
		namer: display.English.Regions(),
		cache: make(map[string][2]string),
	}
}

func (c *countryNames) lookup(iso2 string) (name, iso3 string) {
	if v, ok := c.cache[iso2]; ok {
		return v[0], v[1]
	}
	name, iso3 = iso2, ""
	if region, err := language.ParseRegion(iso2); err == nil {
		if n := c.namer.Name(region); n != "" {
			name = n
		}
		iso3 = region.ISO3()
	}
	c.cache[iso2] = [2]string{name, iso3}
	return name, iso3
}
