package parser

// QuestionType tags which parser produced a Solution.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeWebDev         QuestionType = "web_dev"
	TypePython         QuestionType = "python"
	TypeText           QuestionType = "text"
)

// Solution is the typed result of parsing one raw model response. Type is set exactly
// once and determines which other fields are populated; unused fields stay empty
// strings / empty slices so consumers need no nil checks.
type Solution struct {
	Type QuestionType `json:"questionType"`

	// multiple_choice
	Answer               string `json:"answer,omitempty"`
	Reasoning            string `json:"reasoning,omitempty"`
	FinalAnswerHighlight string `json:"finalAnswerHighlight,omitempty"`

	// web_dev
	HTML string `json:"html,omitempty"`
	CSS  string `json:"css,omitempty"`

	// python
	Concept string `json:"concept,omitempty"`

	// shared
	Code        string   `json:"code"`
	Thoughts    []string `json:"thoughts"`
	Explanation string   `json:"explanation,omitempty"`
}
