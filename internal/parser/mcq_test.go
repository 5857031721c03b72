package parser

import (
	"strings"
	"testing"
)

func TestMCQAnswerOptionNumbered(t *testing.T) {
	sol := parseMultipleChoice("Reasoning goes here at length.\nFINAL ANSWER: option 2) True")
	if sol.Answer != "option 2) True" {
		t.Errorf("expected %q, got %q", "option 2) True", sol.Answer)
	}
	if sol.FinalAnswerHighlight != sol.Answer {
		t.Errorf("highlight %q does not match answer %q", sol.FinalAnswerHighlight, sol.Answer)
	}
}

func TestMCQAnswerMultipleOptions(t *testing.T) {
	sol := parseMultipleChoice("FINAL ANSWER: option 1, 3) A and C")
	if sol.Answer != "option 1, 3) A and C" {
		t.Errorf("unexpected answer %q", sol.Answer)
	}
}

func TestMCQAnswerLetter(t *testing.T) {
	sol := parseMultipleChoice("Both options reduce latency, but only caching avoids the round trip.\nFINAL ANSWER: B) Caching")
	if sol.Answer != "B) Caching" {
		t.Errorf("unexpected answer %q", sol.Answer)
	}
}

func TestMCQAnswerBareValue(t *testing.T) {
	sol := parseMultipleChoice("Sum of 1..100 follows Gauss's formula.\nFINAL ANSWER: 5050")
	if sol.Answer != "5050" {
		t.Errorf("expected %q, got %q", "5050", sol.Answer)
	}
}

func TestMCQAnswerBareOptionLastResort(t *testing.T) {
	sol := parseMultipleChoice("The best match is option 4) Mercury given the density argument.")
	if !strings.HasPrefix(sol.Answer, "option 4)") {
		t.Errorf("expected bare option answer, got %q", sol.Answer)
	}
}

func TestMCQAnswerNotFound(t *testing.T) {
	sol := parseMultipleChoice("I cannot determine the answer from the given screenshot.")
	if sol.Answer != "Answer not found" {
		t.Errorf("expected %q, got %q", "Answer not found", sol.Answer)
	}
}

func TestMCQReasoningFromFencedBlock(t *testing.T) {
	raw := "```reasoning\nGauss pairing gives n(n+1)/2.\n```\nFINAL ANSWER: 5050"
	sol := parseMultipleChoice(raw)
	if sol.Reasoning != "Gauss pairing gives n(n+1)/2." {
		t.Errorf("unexpected reasoning %q", sol.Reasoning)
	}
}

func TestMCQReasoningLegacyMarkdownBlock(t *testing.T) {
	raw := "```markdown\nLegacy reasoning block content.\n```\nFINAL ANSWER: A"
	sol := parseMultipleChoice(raw)
	if sol.Reasoning != "Legacy reasoning block content." {
		t.Errorf("unexpected reasoning %q", sol.Reasoning)
	}
}

func TestMCQReasoningStripsBoilerplateOnce(t *testing.T) {
	raw := "Sure, let's analyze this question: the capital of France is Paris.\nFINAL ANSWER: option 1) Paris"
	sol := parseMultipleChoice(raw)
	if strings.HasPrefix(strings.ToLower(sol.Reasoning), "sure") {
		t.Errorf("boilerplate not stripped: %q", sol.Reasoning)
	}
}

func TestMCQReasoningFallbackToPreMarkerText(t *testing.T) {
	// Fenced reasoning is too short, so the text before the marker wins.
	raw := "The perimeter doubles when every side doubles.\n```reasoning\nok\n```\nFINAL ANSWER: 24"
	sol := parseMultipleChoice(raw)
	if !strings.Contains(sol.Reasoning, "perimeter doubles") {
		t.Errorf("expected pre-marker fallback, got %q", sol.Reasoning)
	}
}

func TestMCQCodeGuaranteesFinalAnswerLine(t *testing.T) {
	sol := parseMultipleChoice("The answer is clearly option 2) False based on the premise.")
	if !strings.Contains(sol.Code, "FINAL ANSWER:") {
		t.Errorf("code missing synthetic FINAL ANSWER line: %q", sol.Code)
	}
}

func TestMCQReparseStable(t *testing.T) {
	sol := parseMultipleChoice("Reasoning about the options in detail.\nFINAL ANSWER: option 2) True")
	again := Classify(sol.Code + "\n" + sol.FinalAnswerHighlight)
	if again.Type != TypeMultipleChoice {
		t.Fatalf("re-parse changed classification to %s", again.Type)
	}
	if again.Answer != sol.Answer {
		t.Errorf("re-parse changed answer: %q vs %q", again.Answer, sol.Answer)
	}
}
