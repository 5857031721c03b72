package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/ai"
	"github.com/local/answerpipe/internal/config"
	"github.com/local/answerpipe/internal/metrics"
)

// Job is one dispatch: a built prompt plus everything needed to escalate it to the
// text-only model if the vision model reports rate limiting.
type Job struct {
	RequestID string
	System    string
	Prompt    string
	Images    []ai.InlineImage // non-empty on the vision path
	History   []ai.Turn

	VisionModel string
	TextModel   string

	// ExtractText supplies OCR text lazily when escalation needs it and the plan
	// carried only images. RebuildPrompt wraps that text with the OCR-noise warning.
	ExtractText   func(ctx context.Context) (string, error)
	RebuildPrompt func(ocrText string) string

	// Progress callbacks for the shell; either may be nil.
	OnRetry    func(attempt int, err error)
	OnFallback func()
}

// Controller wraps provider calls with bounded retries, exponential backoff, and a
// one-shot escalation to the secondary text model on primary rate limiting.
type Controller struct {
	primary   ai.Client // vision-capable
	secondary ai.Client // text-only
	cfg       config.RetryConfig
	fallback  FallbackStore

	sleep func(ctx context.Context, d time.Duration) error
}

func NewController(primary, secondary ai.Client, cfg config.RetryConfig, fallback FallbackStore) *Controller {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	return &Controller{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		fallback:  fallback,
		sleep:     sleepCtx,
	}
}

// FallbackActive reports whether the cool-down from a previous escalation still holds.
func (c *Controller) FallbackActive(ctx context.Context) bool {
	return c.fallback.Active(ctx)
}

// Dispatch runs the retry loop. The retry machinery is invisible to the caller except
// through OnRetry/OnFallback notifications; the returned Response is final.
func (c *Controller) Dispatch(ctx context.Context, job Job) (ai.Response, error) {
	useVision := len(job.Images) > 0

	client := c.secondary
	model := job.TextModel
	if useVision {
		client = c.primary
		model = job.VisionModel
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(c.cfg.BaseDelay, c.cfg.MaxDelay, attempt-1)
			if job.OnRetry != nil {
				job.OnRetry(attempt, lastErr)
			}
			metrics.IncRetry()
			log.Warn().
				Str("request_id", job.RequestID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying dispatch after transient error")
			if err := c.sleep(ctx, delay); err != nil {
				return ai.Response{}, err
			}
		}

		resp, err := c.call(ctx, client, model, job.System, job.Prompt, job.Images, job.History)
		if err == nil {
			if useVision {
				c.fallback.Clear(ctx)
			}
			return resp, nil
		}

		// Cancellation aborts the loop immediately; it is an outcome, not a failure.
		if ctx.Err() != nil {
			return ai.Response{}, ctx.Err()
		}

		if useVision && ai.IsRateLimited(err) {
			// Rate limiting on the vision model escalates instead of retrying:
			// the secondary model has independent quota.
			return c.escalate(ctx, job)
		}

		if !isRetryable(err) {
			return ai.Response{}, err
		}
		lastErr = err
	}

	return ai.Response{}, lastErr
}

// escalate performs the one-shot degrade to the text-only model. It does not count
// against MaxRetries and trips the cool-down consulted by subsequent requests.
func (c *Controller) escalate(ctx context.Context, job Job) (ai.Response, error) {
	log.Warn().
		Str("request_id", job.RequestID).
		Str("model", job.TextModel).
		Msg("vision model rate limited - escalating to text-only model")

	text := ""
	if job.ExtractText != nil {
		var err error
		text, err = job.ExtractText(ctx)
		if err != nil {
			return ai.Response{}, fmt.Errorf("fallback ocr extraction: %w", err)
		}
	}

	prompt := job.Prompt
	if job.RebuildPrompt != nil {
		prompt = job.RebuildPrompt(text)
	}

	c.fallback.Trip(ctx)
	metrics.IncFallback()
	if job.OnFallback != nil {
		job.OnFallback()
	}

	resp, err := c.call(ctx, c.secondary, job.TextModel, job.System, prompt, nil, job.History)
	if err != nil {
		return ai.Response{}, err
	}
	resp.UsedFallback = true
	return resp, nil
}

// call runs one attempt under the per-attempt timeout and records provider metrics.
func (c *Controller) call(ctx context.Context, client ai.Client, model, system, prompt string, images []ai.InlineImage, history []ai.Turn) (ai.Response, error) {
	timeout := c.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Generate(cctx, ai.Request{
		Model:   model,
		System:  system,
		Prompt:  prompt,
		Images:  images,
		History: history,
	})
	dur := time.Since(start)

	result := "success"
	if err != nil {
		switch {
		case ctx.Err() != nil:
			result = "cancelled"
		case errors.Is(err, context.DeadlineExceeded):
			result = "timeout"
			err = context.DeadlineExceeded
		case ai.IsRateLimited(err):
			result = "rate_limited"
		case isRetryable(err):
			result = "transient"
		default:
			result = "fatal"
		}
	}
	metrics.ObserveProvider(client.Name(), model, result, dur)

	if err != nil {
		log.Warn().
			Str("provider", client.Name()).
			Str("model", model).
			Dur("duration", dur).
			Str("result", result).
			Err(err).
			Msg("provider call failed")
	} else {
		log.Debug().
			Str("provider", client.Name()).
			Str("model", model).
			Dur("duration", dur).
			Int("tokens_in", resp.TokensIn).
			Int("tokens_out", resp.TokensOut).
			Msg("provider call success")
	}

	return resp, err
}

// backoffDelay is min(base * 2^(k-1), max) for failed attempt k.
func backoffDelay(base, max time.Duration, k int) time.Duration {
	d := base
	for i := 1; i < k; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
