package tools

import "strings"

var niceValues = map[string]int{
	"idle":        19,
	"belownormal": 10,
	"normal":      0,
	"abovenormal": -5,
	"high":        -10,
	"realtime":    -20,
}

// niceFor maps a priority name to a Unix nice value.
func niceFor(priority string) (int, bool) {
	n, ok := niceValues[strings.ToLower(priority)]
	return n, ok
}
