package minify

import (
	"path/filepath"
	"testing"
	"time"

	"imgmin/internal/config"
	"imgmin/pkg/imgutil"
)

func TestSizeSuffix(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0.00 bytes"},
		{999, "999.00 bytes"},
		{1000, "0.98 KB"},
		{1536, "1.50 KB"},
		{3000000, "2.86 MB"},
		{1 << 30, "1.00 GB"},
		{-2048, "-2.00 KB"},
	}
	for _, tc := range cases {
		if got := SizeSuffix(tc.n); got != tc.want {
			t.Errorf("SizeSuffix(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestRatio(t *testing.T) {
	cases := []struct {
		in, out int64
		want    string
	}{
		{3000000, 2500000, "83.33"},
		{3, 2, "66.66"},
		{100, 100, "100.00"},
		{100, 5, "5.00"},
		{0, 10, "100.00"},
	}
	for _, tc := range cases {
		if got := Ratio(tc.in, tc.out); got != tc.want {
			t.Errorf("Ratio(%d, %d) = %q, want %q", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Millisecond, "042ms"},
		{3*time.Second + 7*time.Millisecond, "03s, 007ms"},
		{2*time.Minute + 5*time.Second + 250*time.Millisecond, "02m, 05s, 250ms"},
	}
	for _, tc := range cases {
		if got := FormatElapsed(tc.d); got != tc.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	root := t.TempDir()
	in := Input{Path: filepath.Join(root, "shots", "sub", "cat.PNG"), Rel: filepath.Join("sub", "cat.PNG")}

	cfg := config.Default()
	got, err := OutputPath(in, imgutil.FormatPNG, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "shots", "sub", "cat.min.png"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	cfg.Output = filepath.Join(root, "out")
	cfg.Prefix = "web-"
	cfg.Suffix = ""
	got, err = OutputPath(in, imgutil.FormatJPG, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "out", "sub", "web-cat.jpg"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got := WorkingPath("/tmp", "/x/y/cat.min.png"); got != filepath.Join("/tmp", "imgmin", "cat.min.png") {
		t.Fatalf("working path %q", got)
	}
}

func TestOutputPathAPNGUsesPNGExtension(t *testing.T) {
	in := Input{Path: filepath.Join(t.TempDir(), "anim.apng")}
	got, err := OutputPath(in, imgutil.FormatAPNG, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "anim.min.png" {
		t.Fatalf("got %q", got)
	}
}
