package metadata

import (
	"path/filepath"
	"strings"
	"testing"

	"imgmin/internal/imgtest"
	"imgmin/internal/strip"
	"imgmin/pkg/imgutil"
)

func TestInspectJPEG(t *testing.T) {
	dir := t.TempDir()
	path := imgtest.Write(t, dir, "sample.jpg", imgtest.JPEGWithExif(t, 8, 8))

	report, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Format != imgutil.FormatJPG || report.Width != 8 {
		t.Fatalf("unexpected format/size: %+v", report)
	}
	if !report.Has(CategoryDevice) || !report.Has(CategoryTimestamp) {
		t.Fatalf("expected model and timestamp details, got: %#v", report.Details)
	}
	if !hasInsight(report, "Device", "TestCam") {
		t.Fatalf("missing device insight: %#v", report.Insights)
	}

	if err := strip.File(path, imgutil.FormatJPG, false); err != nil {
		t.Fatalf("strip: %v", err)
	}
	cleaned, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect after strip: %v", err)
	}
	if cleaned.Leaks() != 0 {
		t.Fatalf("expected no details after strip, got: %#v", cleaned.Details)
	}
}

func TestInspectPNG(t *testing.T) {
	dir := t.TempDir()
	path := imgtest.Write(t, dir, "sample.png", imgtest.PNGWithText(t, 4, 4))

	report, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !report.Has(CategoryDevice) || !report.Has(CategoryTimestamp) {
		t.Fatalf("expected model and timestamp details, got: %#v", report.Details)
	}
	if !hasInsight(report, "Timeline", "2024-01-02 03:04:05") {
		t.Fatalf("missing timeline insight: %#v", report.Insights)
	}

	if err := strip.File(path, imgutil.FormatPNG, false); err != nil {
		t.Fatalf("strip: %v", err)
	}
	cleaned, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if cleaned.Leaks() != 0 {
		t.Fatalf("expected no details after strip, got: %#v", cleaned.Details)
	}
}

func TestInspectUnknownFormat(t *testing.T) {
	path := imgtest.Write(t, t.TempDir(), "notes.xyz", []byte("hello"))
	report, err := Inspect(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if report.Format != imgutil.FormatSkip {
		t.Fatalf("format: %v", report.Format)
	}
}

func TestInspectGIFHasNoReader(t *testing.T) {
	path := imgtest.Write(t, t.TempDir(), filepath.Join("a", "b.gif"), imgtest.GIF(t, 2, 2))
	report, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Leaks() != 0 || report.Format != imgutil.FormatGIF {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestParseCoordinate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"[52/1 30/1 0/1]", 52.5, true},
		{"12.25", 12.25, true},
		{"[1/0]", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseCoordinate(tc.raw)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseCoordinate(%q) = %v, %v; want %v, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTextCategory(t *testing.T) {
	cases := map[string]string{
		"GPSLatitude":   CategoryGPS,
		"Model":         CategoryDevice,
		"Creation Time": CategoryTimestamp,
		"BodySerial":    CategorySerial,
		"Comment":       CategoryText,
	}
	for key, want := range cases {
		if got := textCategory(key); got != want {
			t.Errorf("textCategory(%q) = %q, want %q", key, got, want)
		}
	}
}

func hasInsight(r Report, kind, fragment string) bool {
	for _, in := range r.Insights {
		if in.Kind == kind && strings.Contains(in.Message, fragment) {
			return true
		}
	}
	return false
}
