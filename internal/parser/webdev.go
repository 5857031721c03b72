package parser

import (
	"regexp"
	"strings"
)

var (
	doctypeBlockRe = regexp.MustCompile(`(?is)<!DOCTYPE html>.*?</html>`)
	htmlBlockRe    = regexp.MustCompile(`(?is)<html.*?</html>`)
	styleTagRe     = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
)

func parseWebDev(raw string) Solution {
	html, start, end := extractHTMLBlock(raw)

	css := extractCSSFromStyleTags(html)
	if css == "" && end > 0 {
		css = extractTrailingCSS(raw[end:])
	}

	explanation := ""
	if start > 0 {
		explanation = strings.TrimSpace(raw[:start])
	}
	if explanation == "" {
		explanation = "See the generated page below."
	}

	return Solution{
		Type:        TypeWebDev,
		HTML:        html,
		CSS:         css,
		Code:        html,
		Thoughts:    collectThoughts(explanation),
		Explanation: explanation,
	}
}

// extractHTMLBlock returns the first well-formed document block and its bounds in raw.
// A partial document (opening tag without </html>) degrades to everything from the
// opening tag onward.
func extractHTMLBlock(raw string) (block string, start, end int) {
	if loc := doctypeBlockRe.FindStringIndex(raw); loc != nil {
		return raw[loc[0]:loc[1]], loc[0], loc[1]
	}
	if loc := htmlBlockRe.FindStringIndex(raw); loc != nil {
		return raw[loc[0]:loc[1]], loc[0], loc[1]
	}
	lower := strings.ToLower(raw)
	if idx := strings.Index(lower, "<!doctype html"); idx >= 0 {
		return strings.TrimSpace(raw[idx:]), idx, len(raw)
	}
	if idx := strings.Index(lower, "<html"); idx >= 0 {
		return strings.TrimSpace(raw[idx:]), idx, len(raw)
	}
	return strings.TrimSpace(raw), 0, len(raw)
}

// extractCSSFromStyleTags concatenates every <style> body, blank-line separated.
func extractCSSFromStyleTags(html string) string {
	var blocks []string
	for _, m := range styleTagRe.FindAllStringSubmatch(html, -1) {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// extractTrailingCSS scans the remainder after the HTML block for a fenced css block,
// or a bare CSS-looking tail: non-empty and free of markup.
func extractTrailingCSS(after string) string {
	if css, ok := extractFence(after, "css"); ok {
		return css
	}
	tail := strings.TrimSpace(after)
	if tail != "" && !strings.Contains(tail, "<") {
		return tail
	}
	return ""
}
