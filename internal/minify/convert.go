package minify

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"imgmin/pkg/imgutil"
)

// Convert decodes src and writes it to dst encoded as target. Only the
// first frame of a multi-frame source is used, so callers must not pass
// animated images.
func Convert(src, dst string, target imgutil.Format, quality int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	switch target {
	case imgutil.FormatJPG:
		err = jpeg.Encode(out, flatten(img), &jpeg.Options{Quality: clampQuality(quality)})
	case imgutil.FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(out, img)
	case imgutil.FormatGIF:
		err = gif.Encode(out, dither(img), nil)
	default:
		err = fmt.Errorf("cannot convert to %s", target)
	}
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// flatten composites img over white; JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgba, b, img, b.Min, draw.Over)
	return rgba
}

// dither quantises img to the Plan 9 palette with Floyd-Steinberg error
// diffusion.
func dither(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok {
		return p
	}
	b := img.Bounds()
	pal := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(pal, b, img, b.Min)
	return pal
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	default:
		return q
	}
}
