package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

func buildInsights(details []Detail) []Insight {
	if len(details) == 0 {
		return nil
	}
	values := make(map[string]string)
	for _, d := range details {
		for _, entry := range d.Values {
			key, value, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			if _, seen := values[key]; !seen {
				values[key] = strings.TrimSpace(value)
			}
		}
	}

	var out []Insight
	if lat, lon, ok := coordinates(values); ok {
		out = append(out, Insight{Kind: "Location", Message: fmt.Sprintf("Approx location: %.5f, %.5f", lat, lon)})
	}
	if device := strings.TrimSpace(values["Make"] + " " + values["Model"]); device != "" {
		msg := "Device: " + device
		if kind := deviceType(strings.ToLower(device)); kind != "" {
			msg += " (" + kind + ")"
		}
		out = append(out, Insight{Kind: "Device", Message: msg})
	}
	for _, key := range []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime", "tIME"} {
		if ts := values[key]; ts != "" {
			if key != "tIME" {
				// EXIF dates use colons in the date part too.
				ts = strings.Replace(ts, ":", "-", 2)
			}
			out = append(out, Insight{Kind: "Timeline", Message: "Captured: " + ts})
			break
		}
	}
	for key := range values {
		if strings.Contains(strings.ToLower(key), "serial") {
			out = append(out, Insight{Kind: "Identifier", Message: "Device serial numbers are present."})
			break
		}
	}
	return out
}

func coordinates(values map[string]string) (float64, float64, bool) {
	lat, okLat := parseCoordinate(values["GPSLatitude"])
	lon, okLon := parseCoordinate(values["GPSLongitude"])
	if !okLat || !okLon {
		return 0, 0, false
	}
	if values["GPSLatitudeRef"] == "S" {
		lat = -lat
	}
	if values["GPSLongitudeRef"] == "W" {
		lon = -lon
	}
	return lat, lon, true
}

// parseCoordinate accepts go-exif's formatted rationals, e.g.
// "[52/1 22/1 3035/100]", or a single decimal.
func parseCoordinate(raw string) (float64, bool) {
	fields := strings.Fields(strings.Trim(strings.TrimSpace(raw), "[]"))
	if len(fields) == 0 {
		return 0, false
	}

	var parts []float64
	for _, f := range fields {
		v, ok := parseRational(f)
		if !ok {
			return 0, false
		}
		parts = append(parts, v)
	}

	deg := parts[0]
	if len(parts) > 1 {
		deg += parts[1] / 60
	}
	if len(parts) > 2 {
		deg += parts[2] / 3600
	}
	return deg, true
}

func parseRational(s string) (float64, bool) {
	num, den, isFrac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !isFrac {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func deviceType(device string) string {
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(device, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("iphone", "pixel", "galaxy", "android"):
		return "smartphone"
	case has("ipad", "tablet"):
		return "tablet"
	case has("gopro"):
		return "action camera"
	case has("dji"):
		return "drone"
	case has("canon", "nikon", "sony", "fujifilm", "panasonic", "olympus", "leica"):
		return "camera"
	}
	return ""
}
