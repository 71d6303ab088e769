package minify

import (
	"fmt"
	"math"
	"time"
)

var sizeUnits = []string{"bytes", "KB", "MB", "GB", "TB", "PB", "EB"}

// SizeSuffix renders a byte count with a 1024-based unit and two decimals,
// e.g. 3000000 -> "2.86 MB".
func SizeSuffix(n int64) string {
	if n < 0 {
		return "-" + SizeSuffix(-n)
	}
	v := float64(n)
	i := 0
	for math.Round(v*100)/100 >= 1000 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[i])
}

// Ratio returns out/in as a percentage truncated (not rounded) to two
// decimals.
func Ratio(in, out int64) string {
	if in <= 0 {
		return "100.00"
	}
	basis := out * 10000 / in
	return fmt.Sprintf("%d.%02d", basis/100, basis%100)
}

// FormatElapsed renders d as "MMm, SSs, FFFms", "SSs, FFFms" or "FFFms"
// depending on its magnitude.
func FormatElapsed(d time.Duration) string {
	minutes := int(d / time.Minute)
	seconds := int(d%time.Minute) / int(time.Second)
	millis := int(d%time.Second) / int(time.Millisecond)

	switch {
	case minutes > 0:
		return fmt.Sprintf("%02dm, %02ds, %03dms", minutes, seconds, millis)
	case seconds > 0:
		return fmt.Sprintf("%02ds, %03dms", seconds, millis)
	default:
		return fmt.Sprintf("%03dms", millis)
	}
}

func statLine(tool string, v Verdict, size int64) string {
	return fmt.Sprintf("%-16s %-20s %s", tool, v, SizeSuffix(size))
}
