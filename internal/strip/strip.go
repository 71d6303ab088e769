// Package strip removes privacy metadata (EXIF, XMP, IPTC, PNG text and
// timestamps) from JPEG and PNG files without touching image data. It runs
// as the builtin first step of the JPG and PNG tool chains.
package strip

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"imgmin/pkg/imgutil"
)

// ErrUnsupported is returned for formats the stripper cannot rewrite.
var ErrUnsupported = errors.New("metadata strip not supported for this format")

// File rewrites path in place with metadata removed. The result is written
// to a temp file in the same directory and renamed over path, so a failure
// leaves the original untouched.
func File(path string, format imgutil.Format, preserveICC bool) error {
	var rewrite func(io.Reader, io.Writer, bool) error
	switch format {
	case imgutil.FormatJPG:
		rewrite = JPEG
	case imgutil.FormatPNG, imgutil.FormatAPNG:
		rewrite = PNG
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, format)
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".strip-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := rewrite(src, tmp, preserveICC); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	_ = src.Close()

	return os.Rename(tmp.Name(), path)
}

// PNG copies a PNG stream from r to w, dropping text, EXIF and time chunks
// (and iCCP unless preserveICC is set). Animation chunks are kept.
func PNG(r io.Reader, w io.Writer, preserveICC bool) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	sig := make([]byte, len(imgutil.PNGSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, imgutil.PNGSignature) {
		return errors.New("invalid PNG signature")
	}
	if _, err := bw.Write(sig); err != nil {
		return err
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		length := int64(binary.BigEndian.Uint32(header[:4]))
		name := string(header[4:])

		if dropPNGChunk(name, preserveICC) {
			if _, err := io.CopyN(io.Discard, br, length+4); err != nil {
				return err
			}
			continue
		}

		if _, err := bw.Write(header); err != nil {
			return err
		}
		if _, err := io.CopyN(bw, br, length+4); err != nil {
			return err
		}
		if name == "IEND" {
			break
		}
	}

	return bw.Flush()
}

func dropPNGChunk(name string, preserveICC bool) bool {
	switch name {
	case "tEXt", "zTXt", "iTXt", "eXIf", "tIME":
		return true
	case "iCCP":
		return !preserveICC
	default:
		return false
	}
}

var (
	jpegExifHeader = []byte("Exif\x00\x00")
	jpegXmpHeader  = []byte("http://ns.adobe.com/xap/1.0/\x00")
	jpegPhotoshop  = []byte("Photoshop 3.0\x00")
	jpegICCHeader  = []byte("ICC_PROFILE\x00")
)

// JPEG copies a JPEG stream from r to w, dropping APP1 EXIF/XMP, APP13
// Photoshop/IPTC and (unless preserveICC) APP2 ICC segments. Everything from
// the start of scan onwards is copied verbatim.
func JPEG(r io.Reader, w io.Writer, preserveICC bool) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	soi := make([]byte, 2)
	if _, err := io.ReadFull(br, soi); err != nil {
		return err
	}
	if soi[0] != 0xff || soi[1] != 0xd8 {
		return errors.New("invalid JPEG SOI")
	}
	if _, err := bw.Write(soi); err != nil {
		return err
	}

	for {
		marker, err := nextMarker(br)
		if err != nil {
			return err
		}

		switch {
		case marker == 0xd9: // EOI
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			return bw.Flush()
		case marker == 0xda: // SOS: entropy-coded data follows
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			if _, err := io.Copy(bw, br); err != nil {
				return err
			}
			return bw.Flush()
		case marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7):
			if _, err := bw.Write([]byte{0xff, marker}); err != nil {
				return err
			}
			continue
		}

		lenBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			return err
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf))
		if segLen < 2 {
			return errors.New("invalid JPEG segment length")
		}
		payload := make([]byte, segLen-2)
		if _, err := io.ReadFull(br, payload); err != nil {
			return err
		}

		if dropJPEGSegment(marker, payload, preserveICC) {
			continue
		}
		for _, part := range [][]byte{{0xff, marker}, lenBuf, payload} {
			if _, err := bw.Write(part); err != nil {
				return err
			}
		}
	}
}

// nextMarker skips to the next 0xFF and returns the marker byte after any
// fill bytes.
func nextMarker(br *bufio.Reader) (byte, error) {
	b, err := br.ReadByte()
	for err == nil && b != 0xff {
		b, err = br.ReadByte()
	}
	for err == nil && b == 0xff {
		b, err = br.ReadByte()
	}
	return b, err
}

func dropJPEGSegment(marker byte, payload []byte, preserveICC bool) bool {
	switch marker {
	case 0xe1:
		return bytes.HasPrefix(payload, jpegExifHeader) || bytes.HasPrefix(payload, jpegXmpHeader)
	case 0xed:
		return bytes.HasPrefix(payload, jpegPhotoshop)
	case 0xe2:
		return !preserveICC && bytes.HasPrefix(payload, jpegICCHeader)
	}
	return false
}
