package imgutil

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WEBP decoder registration
)

// Format identifies a detected image type.
type Format int

const (
	FormatSkip Format = iota
	FormatJPG
	FormatPNG
	FormatAPNG
	FormatGIF
	FormatTGA
	FormatBMP
	FormatTIFF
	FormatWEBP
)

func (f Format) String() string {
	switch f {
	case FormatJPG:
		return "JPG"
	case FormatPNG:
		return "PNG"
	case FormatAPNG:
		return "APNG"
	case FormatGIF:
		return "GIF"
	case FormatTGA:
		return "TGA"
	case FormatBMP:
		return "BMP"
	case FormatTIFF:
		return "TIFF"
	case FormatWEBP:
		return "WEBP"
	default:
		return "SKIP"
	}
}

// Ext returns the lower-case file extension, without dot, used for output
// files of this format. Animated PNGs keep the ".png" extension.
func (f Format) Ext() string {
	switch f {
	case FormatAPNG:
		return "png"
	case FormatSkip:
		return ""
	default:
		return strings.ToLower(f.String())
	}
}

// Minifiable reports whether the tool registry has a chain for f.
func (f Format) Minifiable() bool {
	switch f {
	case FormatJPG, FormatPNG, FormatAPNG, FormatGIF, FormatTGA:
		return true
	default:
		return false
	}
}

// Animated reports whether f may carry more than one frame.
func (f Format) Animated() bool {
	return f == FormatAPNG || f == FormatGIF
}

// ParseFormat maps a user supplied conversion target to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	default:
		return FormatSkip, fmt.Errorf("unsupported conversion format %q (use jpg, png or gif)", s)
	}
}

// ErrUnknownFormat is reported when neither the content nor the extension
// identify a supported image.
var ErrUnknownFormat = errors.New("unknown file format")

// Detection is the outcome of Detect. Err is set whenever Format is FormatSkip.
type Detection struct {
	Format Format
	Width  int
	Height int
	Err    error
}

// Detect sniffs the file at path. Content decoding is tried first; when the
// container is not recognised the extension allow-list decides. Any I/O
// error results in FormatSkip.
func Detect(path string) Detection {
	f, err := os.Open(path)
	if err != nil {
		return Detection{Err: err}
	}
	defer f.Close()

	cfg, name, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return detectByExtension(f, path)
		}
		return Detection{Err: fmt.Errorf("read image header: %w", err)}
	}

	det := Detection{Width: cfg.Width, Height: cfg.Height}
	switch name {
	case "jpeg":
		det.Format = FormatJPG
	case "gif":
		det.Format = FormatGIF
	case "bmp":
		det.Format = FormatBMP
	case "tiff":
		det.Format = FormatTIFF
	case "webp":
		det.Format = FormatWEBP
	case "png":
		det.Format = FormatPNG
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return Detection{Err: err}
		}
		animated, err := IsAnimatedPNG(f)
		if err != nil {
			return Detection{Err: fmt.Errorf("scan png chunks: %w", err)}
		}
		if animated {
			det.Format = FormatAPNG
		}
	default:
		return detectByExtension(f, path)
	}
	return det
}

// Dimensions returns the pixel size of the image at path, or 0, 0 when it
// cannot be determined.
func Dimensions(path string) (int, int) {
	det := Detect(path)
	if det.Format == FormatSkip {
		return 0, 0
	}
	return det.Width, det.Height
}

func detectByExtension(f *os.File, path string) Detection {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		det := Detection{Format: FormatTGA}
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			if w, h, err := ReadTGAHeader(f); err == nil {
				det.Width, det.Height = w, h
			}
		}
		return det
	default:
		return Detection{Err: ErrUnknownFormat}
	}
}
