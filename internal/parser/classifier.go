package parser

import (
	"regexp"
	"strings"
)

// Detection is deliberately an ordered list evaluated top to bottom; first match wins.
// MCQ markers must win over code fences because MCQ answers sometimes embed example
// code in their explanation, and HTML must be checked before python because web-dev
// responses can carry script-adjacent fences. This priority is a contract, not an
// implementation detail.
var detectors = []struct {
	match func(string) bool
	parse func(string) Solution
}{
	{isMultipleChoice, parseMultipleChoice},
	{isWebDev, parseWebDev},
	{isPython, parsePython},
	{func(string) bool { return true }, parsePlainText},
}

var (
	optionMarkerRe = regexp.MustCompile(`(?i)option\s+\d+\)`)
	pythonFenceRe  = regexp.MustCompile("```python")
)

const finalAnswerMarker = "FINAL ANSWER:"

// Classify inspects raw response text and runs the first matching typed parser.
// Deterministic, single pass, no I/O.
func Classify(raw string) Solution {
	for _, d := range detectors {
		if d.match(raw) {
			return d.parse(raw)
		}
	}
	// unreachable: the last detector always matches
	return parsePlainText(raw)
}

func isMultipleChoice(raw string) bool {
	return optionMarkerRe.MatchString(raw) || strings.Contains(raw, finalAnswerMarker)
}

func isWebDev(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

func isPython(raw string) bool {
	return pythonFenceRe.MatchString(raw)
}
