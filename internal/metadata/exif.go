package metadata

import (
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifEntries runs a universal EXIF search over rs and buckets the tags it
// finds by category. Files without EXIF yield an empty map.
func exifEntries(rs io.ReadSeeker) (map[string][]string, error) {
	found := make(map[string][]string)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return found, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return found, nil
		}
		return found, err
	}

	for _, tag := range tags {
		cat := exifCategory(tag.TagName, tag.IfdPath)
		if cat == "" {
			continue
		}
		found[cat] = append(found[cat], tag.TagName+"="+strings.TrimSpace(tag.Formatted))
	}
	return found, nil
}

func exifCategory(name, ifdPath string) string {
	switch {
	case strings.HasPrefix(name, "GPS") || strings.Contains(ifdPath, "GPS"):
		return CategoryGPS
	case name == "Make" || name == "Model" || name == "CameraModelName" || name == "LensModel":
		return CategoryDevice
	case name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime":
		return CategoryTimestamp
	case strings.Contains(strings.ToLower(name), "serial"):
		return CategorySerial
	}
	return ""
}

// go-exif wraps its sentinel, so match on the message.
func isNoExif(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no exif")
}
