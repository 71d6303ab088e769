package imgutil

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// PNGSignature is the eight byte header every PNG stream starts with.
var PNGSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

var actlChunk = []byte("acTL")

// IsAnimatedPNG walks the chunk list of a PNG stream looking for the
// animation control chunk, which must precede the first IDAT. When the chunk
// list is damaged the whole stream is scanned for the chunk name instead.
func IsAnimatedPNG(rs io.ReadSeeker) (bool, error) {
	br := bufio.NewReader(rs)

	sig := make([]byte, len(PNGSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return false, err
	}
	if !bytes.Equal(sig, PNGSignature) {
		return false, errors.New("invalid PNG signature")
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return rescan(rs)
		}
		length := binary.BigEndian.Uint32(header[:4])
		if length > maxChunkLength {
			return rescan(rs)
		}

		switch string(header[4:]) {
		case "acTL":
			return true, nil
		case "IDAT", "IEND":
			return false, nil
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return rescan(rs)
		}
	}
}

const maxChunkLength = 1<<31 - 1

func rescan(rs io.ReadSeeker) (bool, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	return scanForChunk(rs, actlChunk)
}

// scanForChunk reports whether name occurs anywhere in the rest of r.
func scanForChunk(r io.Reader, name []byte) (bool, error) {
	buf := make([]byte, 32*1024)
	carry := 0
	for {
		n, err := r.Read(buf[carry:])
		window := buf[:carry+n]
		if bytes.Contains(window, name) {
			return true, nil
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		carry = len(name) - 1
		if carry > len(window) {
			carry = len(window)
		}
		copy(buf, window[len(window)-carry:])
	}
}
