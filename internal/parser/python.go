package parser

import "strings"

func parsePython(raw string) Solution {
	code, ok := extractFence(raw, "python")
	explanation := ""
	if ok {
		idx := strings.Index(raw, "```python")
		explanation = strings.TrimSpace(raw[:idx])
	} else {
		// no fence: the whole response is treated as code
		code = strings.TrimSpace(raw)
	}
	if explanation == "" {
		explanation = "Python solution extracted from response."
	}

	concept := firstLine(explanation)
	if len(concept) > 120 {
		concept = concept[:120]
	}

	return Solution{
		Type:        TypePython,
		Code:        code,
		Concept:     concept,
		Thoughts:    collectThoughts(explanation),
		Explanation: explanation,
	}
}
