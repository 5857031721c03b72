package pipeline

import (
	"fmt"
	"strings"

	"github.com/local/answerpipe/internal/config"
)

const mcqSystemPrompt = `You are an expert exam assistant. Analyze the question shown in the input and answer it.
If options are numbered, answer in the form "option <n>) <value>". Always end your response with a line starting with "FINAL ANSWER:" followed by the answer.
Put your reasoning in a fenced block tagged reasoning.`

const codingSystemPrompt = `You are an expert software engineer. Solve the programming problem shown in the input.
For Python problems return the solution in a fenced block tagged python, preceded by a short explanation.
For web problems return a complete HTML document including any styles.
For everything else return the answer as plain text, optionally in a fenced block tagged text.`

// systemPrompt selects the prompt for the user-facing mode. The preferred language is
// folded into the coding prompt only; MCQ answers are language independent.
func systemPrompt(mode config.Mode, language string) string {
	if mode == config.ModeCoding {
		if language != "" {
			return codingSystemPrompt + fmt.Sprintf("\nPreferred language: %s.", language)
		}
		return codingSystemPrompt
	}
	return mcqSystemPrompt
}

// visionPrompt asks the model to read the attached screenshots directly.
func visionPrompt() string {
	return "The attached screenshots show a question in their original order. Solve it following the system instructions."
}

// textPrompt wraps OCR-extracted text for the text-only path.
func textPrompt(extracted string) string {
	return fmt.Sprintf("The following question text was captured from screenshots:\n\n%s\n\nSolve it following the system instructions.", extracted)
}

// ocrFallbackPrompt warns the model that its input came through OCR and may carry
// character-recognition noise. Used for the one-shot rate-limit escalation.
func ocrFallbackPrompt(extracted string) string {
	return fmt.Sprintf("The following question text was extracted from screenshots via OCR and may contain character recognition errors; read it charitably:\n\n%s\n\nSolve it following the system instructions.", extracted)
}

// debugPrompt restates the prior answer and asks for corrected output in the same format.
func debugPrompt(priorResponse, extra string) string {
	var b strings.Builder
	b.WriteString("Your previous answer was:\n\n```\n")
	b.WriteString(priorResponse)
	b.WriteString("\n```\n\n")
	if extra != "" {
		b.WriteString("Additional context captured from new screenshots:\n\n")
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
	b.WriteString("The answer above is wrong or incomplete. Return a corrected answer in exactly the same format as before.")
	return b.String()
}
