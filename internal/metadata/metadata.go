// Package metadata reports the privacy-relevant metadata an image carries:
// GPS positions, device identifiers, capture timestamps and serial numbers.
// The builtin strip step removes what this package finds.
package metadata

import (
	"fmt"
	"os"

	"imgmin/pkg/imgutil"
)

// Category names used in reports.
const (
	CategoryGPS       = "GPS"
	CategoryDevice    = "Device Model"
	CategoryTimestamp = "Timestamp"
	CategorySerial    = "Serial Number"
	CategoryText      = "Text"
)

var categoryOrder = []string{CategoryGPS, CategoryDevice, CategoryTimestamp, CategorySerial, CategoryText}

// Detail lists the raw "Key=value" entries found for one category.
type Detail struct {
	Category string
	Values   []string
}

// Insight is a human-readable reading of one or more details.
type Insight struct {
	Kind    string
	Message string
}

// Report is the inspection result for one file.
type Report struct {
	Path     string
	Format   imgutil.Format
	Width    int
	Height   int
	Details  []Detail
	Insights []Insight
}

// Leaks counts the entries across all categories.
func (r Report) Leaks() int {
	n := 0
	for _, d := range r.Details {
		n += len(d.Values)
	}
	return n
}

// Has reports whether category has at least one entry.
func (r Report) Has(category string) bool {
	for _, d := range r.Details {
		if d.Category == category && len(d.Values) > 0 {
			return true
		}
	}
	return false
}

// Inspect detects path's format and collects its metadata. Formats without
// a metadata reader return a report with no details.
func Inspect(path string) (Report, error) {
	det := imgutil.Detect(path)
	report := Report{Path: path, Format: det.Format, Width: det.Width, Height: det.Height}
	if det.Err != nil {
		return report, det.Err
	}

	f, err := os.Open(path)
	if err != nil {
		return report, err
	}
	defer f.Close()

	var found map[string][]string
	switch det.Format {
	case imgutil.FormatJPG, imgutil.FormatTIFF:
		found, err = exifEntries(f)
	case imgutil.FormatPNG, imgutil.FormatAPNG:
		found, err = pngEntries(f)
	default:
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("read metadata: %w", err)
	}

	for _, cat := range categoryOrder {
		if vals := found[cat]; len(vals) > 0 {
			report.Details = append(report.Details, Detail{Category: cat, Values: vals})
		}
	}
	report.Insights = buildInsights(report.Details)
	return report, nil
}
