package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/ai"
	"github.com/local/answerpipe/internal/config"
	"github.com/local/answerpipe/internal/conversation"
	"github.com/local/answerpipe/internal/dispatcher"
	"github.com/local/answerpipe/internal/imaging"
	"github.com/local/answerpipe/internal/metrics"
	"github.com/local/answerpipe/internal/ocr"
	"github.com/local/answerpipe/internal/parser"
	"github.com/local/answerpipe/internal/screens"
)

// Request describes one user action. Screenshots are snapshotted from the owning
// queue when the request starts; the struct is immutable once dispatched.
type Request struct {
	Mode     config.Mode
	Language string
}

// Archiver persists successful solutions; best-effort, may be nil.
type Archiver interface {
	Save(ctx context.Context, requestID string, sol parser.Solution) error
}

// Dependencies wires the orchestrator's collaborators.
type Dependencies struct {
	Screens      *screens.Store
	OCR          ocr.Extractor
	Compressor   imaging.Compressor
	Conversation *conversation.Store
	Controller   *dispatcher.Controller
	Sink         Sink
	Archiver     Archiver
	Cfg          config.Config
}

// Orchestrator is the top-level state machine for initial and debug requests.
// It owns the single in-flight cancellation slot: starting any request invalidates
// the one before it, and stale completions can never mutate state.
type Orchestrator struct {
	deps Dependencies

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

func New(deps Dependencies) *Orchestrator {
	if deps.Sink == nil {
		deps.Sink = LogSink{}
	}
	return &Orchestrator{deps: deps}
}

// Cancel aborts the in-flight request, if any. Calling with nothing in flight is a no-op.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// begin claims the cancellation slot, aborting any prior in-flight request.
func (o *Orchestrator) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	rctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	return rctx, cancel, gen
}

// current reports whether gen still owns the cancellation slot.
func (o *Orchestrator) current(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen == gen
}

func (o *Orchestrator) release(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen == gen {
		o.cancel = nil
	}
}

func (o *Orchestrator) publish(ev Event) { o.deps.Sink.Publish(ev) }

// ProcessInitial runs a brand-new question from the main screenshot queue.
func (o *Orchestrator) ProcessInitial(ctx context.Context, req Request) (parser.Solution, error) {
	paths := o.deps.Screens.MainQueue()
	if len(paths) == 0 {
		err := &NoScreenshotsError{Queue: "main"}
		o.publishFailure("", "initial", err)
		return parser.Solution{}, err
	}
	return o.run(ctx, req, paths, "initial")
}

// ProcessDebug runs a follow-up on the previous answer using the extra queue.
// Requires a prior assistant reply; appends to history instead of resetting it.
func (o *Orchestrator) ProcessDebug(ctx context.Context, req Request) (parser.Solution, error) {
	paths := o.deps.Screens.ExtraQueue()
	if len(paths) == 0 {
		err := &NoScreenshotsError{Queue: "extra"}
		o.publishFailure("", "debug", err)
		return parser.Solution{}, err
	}
	if _, ok := o.deps.Conversation.LastAssistant(); !ok {
		o.publishFailure("", "debug", ErrNoPriorResponse)
		return parser.Solution{}, ErrNoPriorResponse
	}
	return o.run(ctx, req, paths, "debug")
}

func (o *Orchestrator) run(ctx context.Context, req Request, paths []string, kind string) (parser.Solution, error) {
	rctx, cancel, gen := o.begin(ctx)
	defer cancel()
	defer o.release(gen)

	requestID := uuid.NewString()
	start := time.Now()
	log.Info().
		Str("request_id", requestID).
		Str("kind", kind).
		Str("mode", string(req.Mode)).
		Int("screenshots", len(paths)).
		Msg("processing request")

	if kind == "initial" {
		o.deps.Conversation.Reset()
	}

	plan, err := o.buildPlan(rctx, requestID, paths)
	if err != nil {
		return parser.Solution{}, o.fail(requestID, kind, err)
	}

	system := systemPrompt(req.Mode, req.Language)
	prompt := o.buildPrompt(kind, plan)

	job := dispatcher.Job{
		RequestID:   requestID,
		System:      system,
		Prompt:      prompt,
		Images:      plan.Images,
		History:     o.historyTurns(),
		VisionModel: o.deps.Cfg.Providers.VisionModel,
		TextModel:   o.deps.Cfg.Providers.TextModel,
		ExtractText: func(ectx context.Context) (string, error) {
			if plan.ExtractedText != "" {
				return plan.ExtractedText, nil
			}
			o.publish(Event{Kind: EventProgress, RequestID: requestID, Stage: StageOCRExtracting})
			return o.deps.OCR.ExtractTextFromMultiple(ectx, paths)
		},
		RebuildPrompt: func(text string) string {
			if kind == "debug" {
				prior, _ := o.deps.Conversation.LastAssistant()
				return debugPrompt(prior, text)
			}
			return ocrFallbackPrompt(text)
		},
		OnRetry: func(attempt int, lastErr error) {
			o.publish(Event{Kind: EventProgress, RequestID: requestID, Stage: StageRetrying, Attempt: attempt})
		},
		OnFallback: func() {
			o.publish(Event{Kind: EventProgress, RequestID: requestID, Stage: StageFallback, Degraded: true,
				Message: "vision model rate limited; answering from OCR text with reduced quality"})
		},
	}

	o.publish(Event{Kind: EventProgress, RequestID: requestID, Stage: StageGenerating})
	resp, err := o.deps.Controller.Dispatch(rctx, job)
	if err != nil {
		return parser.Solution{}, o.fail(requestID, kind, err)
	}

	// A newer request may have claimed the slot while this dispatch resolved;
	// its late result must not touch queues, history, or the sink.
	if !o.current(gen) {
		log.Warn().Str("request_id", requestID).Msg("dropping stale response")
		return parser.Solution{}, context.Canceled
	}

	o.deps.Conversation.Append(conversation.RoleUser, prompt)
	o.deps.Conversation.Append(conversation.RoleAssistant, resp.Text)

	sol := parser.Classify(resp.Text)
	metrics.IncParsed(string(sol.Type))

	if kind == "debug" {
		o.deps.Screens.ClearExtra()
	} else {
		o.deps.Screens.ClearMain()
	}

	if o.deps.Archiver != nil {
		if aerr := o.deps.Archiver.Save(context.WithoutCancel(rctx), requestID, sol); aerr != nil {
			log.Warn().Err(aerr).Str("request_id", requestID).Msg("failed to archive solution")
		}
	}

	metrics.IncProcessed(kind, "success")
	log.Info().
		Str("request_id", requestID).
		Str("type", string(sol.Type)).
		Bool("used_fallback", resp.UsedFallback).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	o.publish(Event{
		Kind:      EventSolution,
		RequestID: requestID,
		Stage:     StageComplete,
		Degraded:  resp.UsedFallback,
		View:      "solutions",
		Solution:  &sol,
	})
	return sol, nil
}

// buildPrompt assembles the user prompt for the selected path. Debug requests restate
// the prior reply; the vision path references the attached screenshots.
func (o *Orchestrator) buildPrompt(kind string, plan Plan) string {
	if kind == "debug" {
		prior, _ := o.deps.Conversation.LastAssistant()
		return debugPrompt(prior, plan.ExtractedText)
	}
	if plan.UseVision {
		return visionPrompt()
	}
	return textPrompt(plan.ExtractedText)
}

func (o *Orchestrator) historyTurns() []ai.Turn {
	turns := o.deps.Conversation.Turns()
	out := make([]ai.Turn, 0, len(turns))
	for _, t := range turns {
		out = append(out, ai.Turn{Role: t.Role, Content: t.Content})
	}
	return out
}

// fail categorizes an error, publishes the terminal event, and bumps metrics.
// On failure the consumed queue stays intact so the user can retry.
func (o *Orchestrator) fail(requestID, kind string, err error) error {
	if errors.Is(err, context.Canceled) {
		metrics.IncProcessed(kind, "cancelled")
		log.Info().Str("request_id", requestID).Msg("request cancelled")
		o.publish(Event{Kind: EventCancelled, RequestID: requestID, View: o.failView(kind)})
		return err
	}
	metrics.IncProcessed(kind, "error")
	o.publishFailure(requestID, kind, err)
	return err
}

func (o *Orchestrator) publishFailure(requestID, kind string, err error) {
	log.Error().Err(err).Str("request_id", requestID).Str("kind", kind).Msg("request failed")
	o.publish(Event{
		Kind:      EventFailure,
		RequestID: requestID,
		ErrKind:   Categorize(err),
		Message:   err.Error(),
		View:      o.failView(kind),
	})
}

// failView hints the shell's view transition: a failed initial request returns to the
// queue view, a failed debug keeps the prior successful answer on screen.
func (o *Orchestrator) failView(kind string) string {
	if kind == "debug" {
		return "solutions"
	}
	return "queue"
}
