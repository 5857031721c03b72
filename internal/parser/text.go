package parser

import "strings"

func parsePlainText(raw string) Solution {
	code, ok := extractFence(raw, "text")
	explanation := strings.TrimSpace(raw)
	if ok {
		if rest := strings.TrimSpace(stripFence(raw, "text")); rest != "" {
			explanation = rest
		} else {
			explanation = code
		}
	} else {
		code = explanation
	}

	return Solution{
		Type:        TypeText,
		Code:        code,
		Thoughts:    collectThoughts(explanation),
		Explanation: explanation,
	}
}
