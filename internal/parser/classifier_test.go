package parser

import "testing"

func TestClassifyMultipleChoiceByFinalAnswer(t *testing.T) {
	sol := Classify("Some reasoning here.\nFINAL ANSWER: option 2) True")
	if sol.Type != TypeMultipleChoice {
		t.Fatalf("expected multiple_choice, got %s", sol.Type)
	}
}

func TestClassifyMultipleChoiceByOptionMarker(t *testing.T) {
	sol := Classify("The correct choice is option 3) Paris because of the capital rule.")
	if sol.Type != TypeMultipleChoice {
		t.Fatalf("expected multiple_choice, got %s", sol.Type)
	}
}

func TestClassifyPriorityOverCodeFence(t *testing.T) {
	// MCQ markers must shadow code fences: answers sometimes embed example code.
	raw := "FINAL ANSWER: option 2) True\n\nExample check:\n```python\nprint(2 + 2 == 4)\n```"
	sol := Classify(raw)
	if sol.Type != TypeMultipleChoice {
		t.Fatalf("expected multiple_choice, got %s", sol.Type)
	}
	if sol.Answer != "option 2) True" {
		t.Errorf("expected answer %q, got %q", "option 2) True", sol.Answer)
	}
}

func TestClassifyHTMLBeforePython(t *testing.T) {
	raw := "<html><body><script>x</script></body></html>\n```python\nprint('inline')\n```"
	sol := Classify(raw)
	if sol.Type != TypeWebDev {
		t.Fatalf("expected web_dev, got %s", sol.Type)
	}
}

func TestClassifyPython(t *testing.T) {
	sol := Classify("Use a loop.\n```python\nfor i in range(3):\n    print(i)\n```")
	if sol.Type != TypePython {
		t.Fatalf("expected python, got %s", sol.Type)
	}
}

func TestClassifyDefaultText(t *testing.T) {
	sol := Classify("The mitochondria is the powerhouse of the cell.")
	if sol.Type != TypeText {
		t.Fatalf("expected text, got %s", sol.Type)
	}
}

func TestClassifyNeverNilThoughts(t *testing.T) {
	for _, raw := range []string{
		"FINAL ANSWER: 42",
		"<html></html>",
		"```python\npass\n```",
		"plain prose",
	} {
		if sol := Classify(raw); sol.Thoughts == nil {
			t.Errorf("nil thoughts for %q", raw)
		}
	}
}
