package imgutil

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"os"
)

// Verify fully decodes the file at path and checks it is still an image of
// format f. Tools occasionally exit cleanly after writing a truncated file;
// this catches that before a smaller result is accepted.
func Verify(path string, f Format) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	switch f {
	case FormatTGA:
		_, _, err := ReadTGAHeader(r)
		return err
	case FormatGIF:
		if _, err := gif.DecodeAll(r); err != nil {
			return fmt.Errorf("decode gif: %w", err)
		}
		return nil
	}

	_, name, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("decode %s: %w", f, err)
	}

	want := map[Format]string{
		FormatJPG:  "jpeg",
		FormatPNG:  "png",
		FormatAPNG: "png",
		FormatBMP:  "bmp",
		FormatTIFF: "tiff",
		FormatWEBP: "webp",
	}[f]
	if name != want {
		return fmt.Errorf("expected %s data, decoded %s", f, name)
	}
	return nil
}
