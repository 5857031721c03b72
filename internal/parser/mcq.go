package parser

import (
	"regexp"
	"strings"
)

const answerNotFound = "Answer not found"

// Answer extraction cascade, most specific first. Each pattern anchors on the
// FINAL ANSWER: marker except the last-resort bare option scan.
var (
	// FINAL ANSWER: option 2) True   /  FINAL ANSWER: option 1, 3) A and C
	finalOptionRe = regexp.MustCompile(`(?i)FINAL ANSWER:\s*(option\s+\d+(?:\s*,\s*\d+)*\).*)`)
	// FINAL ANSWER: B) Paris  /  FINAL ANSWER: A, C
	finalLetterRe = regexp.MustCompile(`(?i)FINAL ANSWER:\s*([A-Da-d](?:\s*,\s*[A-Da-d])*\)?(?:\s+.*)?)$`)
	// FINAL ANSWER: 5050  (fill in the blank)
	finalBareRe = regexp.MustCompile(`(?i)FINAL ANSWER:\s*(\S.*)`)
	// bare "option 3) value" anywhere, last resort
	bareOptionRe = regexp.MustCompile(`(?i)(option\s+\d+\).*)`)
)

// Known prompt-echo boilerplate. The first matching pattern is stripped; exactly one
// strip happens per response.
var boilerplateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here'?s? (?:is )?(?:the|my) (?:answer|solution|reasoning)[.:]?\s*`),
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,!.]?\s*`),
	regexp.MustCompile(`(?i)^let'?s (?:analyze|break down|look at) (?:the|this) (?:question|problem|options)[.:]?\s*`),
	regexp.MustCompile(`(?i)^based on the (?:question|screenshot|image)s?[,.]?\s*`),
}

func parseMultipleChoice(raw string) Solution {
	answer := extractAnswer(raw)
	reasoning := extractReasoning(raw)

	// Downstream rendering keys off the FINAL ANSWER: line; synthesize one when the
	// model produced only a bare option marker.
	code := raw
	if !strings.Contains(raw, finalAnswerMarker) {
		code = strings.TrimRight(raw, "\n") + "\n\n" + finalAnswerMarker + " " + answer
	}

	return Solution{
		Type:                 TypeMultipleChoice,
		Answer:               answer,
		Reasoning:            reasoning,
		FinalAnswerHighlight: answer,
		Code:                 code,
		Thoughts:             collectThoughts(reasoning),
	}
}

func extractAnswer(raw string) string {
	// Cascade runs line by line for the anchored patterns so trailing prose on later
	// lines cannot bleed into the answer.
	for _, line := range strings.Split(raw, "\n") {
		if !strings.Contains(strings.ToUpper(line), finalAnswerMarker) {
			continue
		}
		if m := finalOptionRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := finalLetterRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := finalBareRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if m := bareOptionRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(firstLine(m[1]))
	}
	return answerNotFound
}

func extractReasoning(raw string) string {
	reasoning, ok := extractFence(raw, "reasoning")
	if !ok {
		// legacy responses fenced reasoning as markdown
		reasoning, ok = extractFence(raw, "markdown")
	}
	if !ok {
		reasoning = stripBoilerplate(raw)
	}
	if len(strings.TrimSpace(reasoning)) < 10 {
		if idx := strings.Index(raw, finalAnswerMarker); idx > 0 {
			reasoning = strings.TrimSpace(raw[:idx])
		}
	}
	return strings.TrimSpace(reasoning)
}

func stripBoilerplate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, re := range boilerplateRes {
		if re.MatchString(trimmed) {
			return strings.TrimSpace(re.ReplaceAllString(trimmed, ""))
		}
	}
	return trimmed
}
