package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/parser"
)

// Progress milestones reported to the sink while a request runs.
const (
	StageOCRExtracting = "ocr-extracting"
	StageGenerating    = "generating"
	StageRetrying      = "retrying"
	StageFallback      = "fallback"
	StageComplete      = "complete"
)

// EventKind distinguishes terminal events from progress updates.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventSolution  EventKind = "solution"
	EventFailure   EventKind = "failure"
	EventCancelled EventKind = "cancelled"
)

// Event is one message to the result sink. Every request ends with exactly one
// terminal event (solution, failure, or cancelled) so the shell never sticks on
// its processing indicator.
type Event struct {
	Kind      EventKind
	RequestID string
	Stage     string
	Attempt   int    // set on retrying progress
	Degraded  bool   // set once the fallback model took over
	ErrKind   string // set on failure
	Message   string
	View      string // view hint for the shell: "queue" or "solutions"
	Solution  *parser.Solution
}

// Sink receives progress milestones and the terminal result of each request.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// LogSink writes events to the structured log; the default when the shell does not
// install its own sink.
type LogSink struct{}

func (LogSink) Publish(ev Event) {
	log.Info().
		Str("request_id", ev.RequestID).
		Str("kind", string(ev.Kind)).
		Str("stage", ev.Stage).
		Str("err_kind", ev.ErrKind).
		Str("message", ev.Message).
		Msg("pipeline event")
}
