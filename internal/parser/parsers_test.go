package parser

import (
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { margin: 0; }
</style>
<style>
h1 { color: red; }
</style>
</head>
<body><h1>Hi</h1></body>
</html>`

func TestWebDevExtractsDocumentAndStyles(t *testing.T) {
	raw := "Here is the page:\n" + sampleHTML
	sol := parseWebDev(raw)
	if !strings.HasPrefix(sol.HTML, "<!DOCTYPE html>") || !strings.HasSuffix(sol.HTML, "</html>") {
		t.Fatalf("unexpected html block: %q", sol.HTML)
	}
	if !strings.Contains(sol.CSS, "body { margin: 0; }") || !strings.Contains(sol.CSS, "h1 { color: red; }") {
		t.Errorf("expected both style blocks concatenated, got %q", sol.CSS)
	}
	if !strings.Contains(sol.CSS, "\n\n") {
		t.Errorf("expected blank-line separator between style blocks, got %q", sol.CSS)
	}
}

func TestWebDevTrailingCSSFallback(t *testing.T) {
	raw := "<html><body>x</body></html>\nbody { background: blue; }"
	sol := parseWebDev(raw)
	if sol.CSS != "body { background: blue; }" {
		t.Errorf("expected trailing css fallback, got %q", sol.CSS)
	}
}

func TestWebDevNoTrailingCSSWhenMarkupRemains(t *testing.T) {
	raw := "<html><body>x</body></html>\n<footer>not css</footer>"
	sol := parseWebDev(raw)
	if sol.CSS != "" {
		t.Errorf("expected no css, got %q", sol.CSS)
	}
}

func TestWebDevReparseStable(t *testing.T) {
	sol := parseWebDev("intro\n" + sampleHTML)
	again := Classify(sol.Code)
	if again.Type != TypeWebDev {
		t.Fatalf("re-parse changed classification to %s", again.Type)
	}
}

func TestPythonFencedBlock(t *testing.T) {
	raw := "Use a running total.\n```python\ntotal = sum(range(101))\nprint(total)\n```"
	sol := parsePython(raw)
	if sol.Code != "total = sum(range(101))\nprint(total)" {
		t.Errorf("unexpected code %q", sol.Code)
	}
	if sol.Explanation != "Use a running total." {
		t.Errorf("unexpected explanation %q", sol.Explanation)
	}
	if sol.Concept == "" {
		t.Error("expected non-empty concept")
	}
}

func TestPythonNoFenceWholeResponseIsCode(t *testing.T) {
	raw := "print('hello')"
	sol := parsePython(raw)
	if sol.Code != "print('hello')" {
		t.Errorf("unexpected code %q", sol.Code)
	}
	if sol.Explanation == "" {
		t.Error("expected placeholder explanation")
	}
}

func TestPythonReparseStable(t *testing.T) {
	sol := parsePython("Loop over items.\n```python\nfor x in xs:\n    f(x)\n```")
	again := parsePython(sol.Code)
	if again.Code != sol.Code {
		t.Errorf("re-parse changed code: %q vs %q", again.Code, sol.Code)
	}
}

func TestTextFencedBlock(t *testing.T) {
	raw := "Summary first.\n```text\nPhotosynthesis converts light to chemical energy.\n```"
	sol := parsePlainText(raw)
	if sol.Code != "Photosynthesis converts light to chemical energy." {
		t.Errorf("unexpected code %q", sol.Code)
	}
	if !strings.Contains(sol.Explanation, "Summary first.") {
		t.Errorf("unexpected explanation %q", sol.Explanation)
	}
}

func TestTextVerbatimPassthrough(t *testing.T) {
	raw := "Just prose, no fences."
	sol := parsePlainText(raw)
	if sol.Code != raw || sol.Explanation != raw {
		t.Errorf("expected verbatim passthrough, got code=%q explanation=%q", sol.Code, sol.Explanation)
	}
}

func TestTextReparseStable(t *testing.T) {
	sol := parsePlainText("Plain answer with no markers at all.")
	again := Classify(sol.Code + "\n" + sol.Explanation)
	if again.Type != TypeText {
		t.Fatalf("re-parse changed classification to %s", again.Type)
	}
}
