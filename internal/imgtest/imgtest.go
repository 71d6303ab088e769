// Package imgtest builds small image fixtures for tests.
package imgtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Gradient returns a w x h RGBA image with non-uniform pixels so encoders
// produce output that is not trivially small.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x ^ y), A: 0xff})
		}
	}
	return img
}

// PNG encodes a gradient PNG.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Gradient(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// APNG returns a PNG with an acTL chunk inserted right after IHDR.
func APNG(t *testing.T, w, h int) []byte {
	t.Helper()
	data := PNG(t, w, h)
	// signature (8) + IHDR chunk (4 length + 4 type + 13 data + 4 crc)
	insertAt := 8 + 25
	actl := make([]byte, 8)
	binary.BigEndian.PutUint32(actl[0:4], 1)
	binary.BigEndian.PutUint32(actl[4:8], 0)

	out := append([]byte{}, data[:insertAt]...)
	out = append(out, Chunk("acTL", actl)...)
	out = append(out, data[insertAt:]...)
	return out
}

// PNGWithText returns a PNG carrying tEXt and tIME chunks before IEND.
func PNGWithText(t *testing.T, w, h int) []byte {
	t.Helper()
	data := PNG(t, w, h)
	insertAt := len(data) - 12

	out := append([]byte{}, data[:insertAt]...)
	out = append(out, Chunk("tEXt", []byte("Model\x00TestCam"))...)
	out = append(out, Chunk("tIME", []byte{0x07, 0xE8, 0x01, 0x02, 0x03, 0x04, 0x05})...)
	out = append(out, data[insertAt:]...)
	return out
}

// JPEG encodes a gradient JPEG at the given quality.
func JPEG(t *testing.T, w, h, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// JPEGWithExif returns a decodable JPEG with an APP1 EXIF segment holding
// a camera model and a timestamp.
func JPEGWithExif(t *testing.T, w, h int) []byte {
	t.Helper()
	data := JPEG(t, w, h, 90)
	exif := append([]byte("Exif\x00\x00"), ExifTIFF()...)

	var buf bytes.Buffer
	buf.Write(data[:2])
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(exif)+2))
	buf.Write(exif)
	buf.Write(data[2:])
	return buf.Bytes()
}

// ExifTIFF returns a little-endian TIFF block with Model and DateTime tags.
func ExifTIFF() []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0110))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(38))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0132))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(20))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(46))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write([]byte("2024:01:02 03:04:05\x00"))
	return tiff.Bytes()
}

// GIF encodes a paletted gradient GIF.
func GIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, Gradient(w, h), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// TGA returns an uncompressed 24-bit TGA of the given size.
func TGA(w, h int) []byte {
	header := make([]byte, 18)
	header[2] = 2
	binary.LittleEndian.PutUint16(header[12:14], uint16(w))
	binary.LittleEndian.PutUint16(header[14:16], uint16(h))
	header[16] = 24
	return append(header, make([]byte, w*h*3)...)
}

// Chunk frames data as a PNG chunk with a valid CRC.
func Chunk(chunkType string, data []byte) []byte {
	typeBytes := []byte(chunkType)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	crcBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBuf, crc32.ChecksumIEEE(append(append([]byte{}, typeBytes...), data...)))

	chunk := make([]byte, 0, 12+len(data))
	chunk = append(chunk, lenBuf...)
	chunk = append(chunk, typeBytes...)
	chunk = append(chunk, data...)
	chunk = append(chunk, crcBuf...)
	return chunk
}

// Write stores data as dir/name and returns the path.
func Write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
