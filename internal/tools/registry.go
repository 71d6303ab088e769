// Package tools holds the catalog of compression tools per image format and
// the runner that executes one of them against a working copy.
package tools

import (
	"strconv"
	"strings"

	"imgmin/pkg/imgutil"
)

// Placeholders substituted by Spec.Resolve.
const (
	PlaceholderFile    = "{file}"
	PlaceholderQuality = "{quality}"
)

// StripName is the catalog name of the in-process metadata stripper.
const StripName = "strip"

// Spec describes one tool invocation for one format.
type Spec struct {
	Name    string         // Executable name without extension.
	Display string         // Label used in stat lines.
	Args    []string       // Argument template.
	Format  imgutil.Format // Format family the entry belongs to.
	Lossy   bool           // Only selected in lossy mode.
	Builtin bool           // Runs in-process instead of as a child process.
}

// Resolve returns the argument list with placeholders replaced.
func (s Spec) Resolve(file string, quality int) []string {
	q := strconv.Itoa(quality)
	out := make([]string, len(s.Args))
	for i, a := range s.Args {
		a = strings.ReplaceAll(a, PlaceholderFile, file)
		out[i] = strings.ReplaceAll(a, PlaceholderQuality, q)
	}
	return out
}

func args(s string) []string { return strings.Fields(s) }

func entry(f imgutil.Format, name, display, argv string) Spec {
	return Spec{Name: name, Display: display, Args: args(argv), Format: f}
}

func lossy(s Spec) Spec {
	s.Lossy = true
	return s
}

func builtinStrip(f imgutil.Format) Spec {
	return Spec{Name: StripName, Display: "Strip", Format: f, Builtin: true}
}

const gifsicleArgs = "-w -j --no-conserve-memory -o {file} -O3 --no-comments --no-extensions --no-names {file}"

// Catalog is the full ordered tool table. Order within a format is the
// order tools run in.
var Catalog = []Spec{
	entry(imgutil.FormatGIF, "gifsicle", "GIFsicle", gifsicleArgs),
	lossy(entry(imgutil.FormatGIF, "gifsicle-lossy", "GIFsicle-Lossy", "--lossy=35 "+gifsicleArgs)),

	builtinStrip(imgutil.FormatJPG),
	entry(imgutil.FormatJPG, "jpeg-recompress", "JPEG-Recompress", "--method smallfry --quality high --min {quality} --subsample disable --quiet --strip {file} {file}"),
	entry(imgutil.FormatJPG, "jhead", "JHead", "-q -autorot -purejpg -di -dx -dt -zt {file}"),
	entry(imgutil.FormatJPG, "leanify", "Leanify", "-q {file}"),
	entry(imgutil.FormatJPG, "magick", "ImageMagick", "convert -quiet -interlace Plane -define jpeg:optimize-coding=true -strip {file} {file}"),
	entry(imgutil.FormatJPG, "jpegoptim", "JPEGoptim", "-o -q --all-progressive --strip-all --max={quality} {file}"),
	entry(imgutil.FormatJPG, "jpegtran", "JPEGtran", "-progressive -optimize -copy none -outfile {file} {file}"),
	entry(imgutil.FormatJPG, "mozjpegtran", "MozJPEGtran", "-outfile {file} -progressive -copy none {file}"),
	entry(imgutil.FormatJPG, "ECT", "ECT", "-quiet --allfilters --mt-deflate -progressive -strip {file}"),
	entry(imgutil.FormatJPG, "pingo", "Pingo", "-progressive {file}"),

	builtinStrip(imgutil.FormatAPNG),
	entry(imgutil.FormatAPNG, "apngopt", "APNGopt", "{file} {file}"),

	builtinStrip(imgutil.FormatPNG),
	lossy(entry(imgutil.FormatPNG, "pngquant", "PNGquant", "--strip --quality=85-90 --speed 1 --ext .png --force {file}")),
	entry(imgutil.FormatPNG, "PngOptimizer", "PNGOptimizer", "-file:{file}"),
	entry(imgutil.FormatPNG, "truepng", "TruePNG", "-o2 -tz -md remove all -g0 /i0 /tz /quiet /y /out {file} {file}"),
	entry(imgutil.FormatPNG, "optipng", "OptiPNG", "--zw32k -quiet -o6 -strip all {file}"),
	entry(imgutil.FormatPNG, "leanify", "Leanify", "-q -i 6 {file}"),
	entry(imgutil.FormatPNG, "pngrewrite", "PNGrewrite", "{file} {file}"),
	entry(imgutil.FormatPNG, "advpng", "AdvPNG", "-z -q -4 -i 6 {file}"),
	entry(imgutil.FormatPNG, "ECT", "ECT", "-quiet --allfilters --mt-deflate -strip -9 {file}"),
	entry(imgutil.FormatPNG, "pingo", "Pingo", "-s8 {file}"),
	entry(imgutil.FormatPNG, "deflopt", "Deflopt", "/a /b /s {file}"),

	entry(imgutil.FormatTGA, "magick", "ImageMagick", "convert -quiet -compress RLE -strip {file} {file}"),
}

// Options filter the catalog.
type Options struct {
	Lossy    bool
	NoStrip  bool
	Disabled []string // Matched case-insensitively against Name and Display.
}

// Select returns the catalog entries for format in run order. Filtering
// never reorders the remaining entries. Formats without tools yield nil.
func Select(format imgutil.Format, opts Options) []Spec {
	var out []Spec
	for _, s := range Catalog {
		if s.Format != format {
			continue
		}
		if s.Lossy && !opts.Lossy {
			continue
		}
		if s.Builtin && opts.NoStrip {
			continue
		}
		if s.DisabledBy(opts.Disabled) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// DisabledBy reports whether names lists s by Name or Display, ignoring case.
func (s Spec) DisabledBy(names []string) bool {
	for _, n := range names {
		if strings.EqualFold(n, s.Name) || strings.EqualFold(n, s.Display) {
			return true
		}
	}
	return false
}
