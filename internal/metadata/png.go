package metadata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"imgmin/pkg/imgutil"
)

// Text chunks larger than this are skipped rather than read into memory.
const maxTextChunk = 1 << 20

// pngEntries walks the chunk list up to IEND, collecting text keys and the
// tIME stamp.
func pngEntries(rs io.ReadSeeker) (map[string][]string, error) {
	found := make(map[string][]string)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return found, err
	}
	br := bufio.NewReader(rs)

	sig := make([]byte, len(imgutil.PNGSignature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return found, err
	}
	if !bytes.Equal(sig, imgutil.PNGSignature) {
		return found, errors.New("invalid PNG signature")
	}

	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, header); err != nil {
			if err == io.EOF {
				return found, nil
			}
			return found, err
		}
		length := binary.BigEndian.Uint32(header[:4])
		name := string(header[4:])

		switch {
		case name == "tIME" && length == 7:
			data := make([]byte, 7)
			if _, err := io.ReadFull(br, data); err != nil {
				return found, err
			}
			found[CategoryTimestamp] = append(found[CategoryTimestamp], "tIME="+formatPNGTime(data))
			length = 0
		case isTextChunk(name) && length <= maxTextChunk:
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return found, err
			}
			if key, value := textKeyValue(name, data); key != "" {
				cat := textCategory(key)
				found[cat] = append(found[cat], key+"="+value)
			}
			length = 0
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
			return found, err
		}
		if name == "IEND" {
			return found, nil
		}
	}
}

func isTextChunk(name string) bool {
	return name == "tEXt" || name == "zTXt" || name == "iTXt"
}

// textKeyValue extracts the keyword and, for uncompressed text, the value.
func textKeyValue(chunk string, data []byte) (string, string) {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return "", ""
	}
	key := string(data[:idx])
	rest := data[idx+1:]

	switch chunk {
	case "tEXt":
		return key, string(rest)
	case "iTXt":
		// compression flag, method, language tag, translated keyword, text
		if len(rest) < 2 || rest[0] != 0 {
			return key, ""
		}
		parts := bytes.SplitN(rest[2:], []byte{0}, 3)
		if len(parts) == 3 {
			return key, string(parts[2])
		}
	}
	return key, ""
}

func textCategory(key string) string {
	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "gps"), strings.Contains(lower, "latitude"), strings.Contains(lower, "longitude"):
		return CategoryGPS
	case strings.Contains(lower, "model"), strings.Contains(lower, "make"):
		return CategoryDevice
	case strings.Contains(lower, "date"), strings.Contains(lower, "time"):
		return CategoryTimestamp
	case strings.Contains(lower, "serial"):
		return CategorySerial
	}
	return CategoryText
}

func formatPNGTime(b []byte) string {
	year := binary.BigEndian.Uint16(b[:2])
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, b[2], b[3], b[4], b[5], b[6])
}
