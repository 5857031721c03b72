package parser

import (
	"regexp"
	"strings"
)

var fenceRes = map[string]*regexp.Regexp{
	"reasoning": compileFence("reasoning"),
	"markdown":  compileFence("markdown"),
	"python":    compileFence("python"),
	"text":      compileFence("text"),
	"css":       compileFence("css"),
}

func compileFence(tag string) *regexp.Regexp {
	return regexp.MustCompile("(?s)```" + tag + "[ \t]*\r?\n(.*?)```")
}

func fenceRe(tag string) *regexp.Regexp {
	if re, ok := fenceRes[tag]; ok {
		return re
	}
	return compileFence(tag)
}

// extractFence returns the body of the first fenced block tagged `tag`.
func extractFence(raw, tag string) (string, bool) {
	m := fenceRe(tag).FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// stripFence removes the first fenced block tagged `tag` from raw.
func stripFence(raw, tag string) string {
	return fenceRe(tag).ReplaceAllString(raw, "")
}

// collectThoughts pulls bullet lines out of explanatory text, capped at five.
// Always returns a non-nil slice.
func collectThoughts(text string) []string {
	thoughts := []string{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			thoughts = append(thoughts, strings.TrimSpace(trimmed[2:]))
			if len(thoughts) == 5 {
				break
			}
		}
	}
	return thoughts
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
