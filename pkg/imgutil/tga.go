package imgutil

import (
	"encoding/binary"
	"errors"
	"io"
)

const tgaHeaderSize = 18

var errBadTGAHeader = errors.New("invalid TGA header")

// ReadTGAHeader reads the fixed TGA header from r and returns the image size.
// Only the fields a TGA decoder would refuse outright are checked.
func ReadTGAHeader(r io.Reader) (int, int, error) {
	header := make([]byte, tgaHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, 0, err
	}

	if header[1] > 1 {
		return 0, 0, errBadTGAHeader
	}
	switch header[2] {
	case 1, 2, 3, 9, 10, 11:
	default:
		return 0, 0, errBadTGAHeader
	}

	w := int(binary.LittleEndian.Uint16(header[12:14]))
	h := int(binary.LittleEndian.Uint16(header[14:16]))
	if w == 0 || h == 0 {
		return 0, 0, errBadTGAHeader
	}
	return w, h, nil
}
