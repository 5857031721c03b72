package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/local/answerpipe/internal/ai"
	"github.com/local/answerpipe/internal/config"
)

type mockClient struct {
	name  string
	calls int
	fn    func(req ai.Request) (ai.Response, error)
}

func (m *mockClient) Name() string { return m.name }

func (m *mockClient) Generate(ctx context.Context, req ai.Request) (ai.Response, error) {
	m.calls++
	return m.fn(req)
}

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{
		MaxRetries:       3,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		RequestTimeout:   time.Second,
		FallbackCooldown: time.Minute,
	}
}

func newTestController(primary, secondary ai.Client, fb FallbackStore) *Controller {
	c := NewController(primary, secondary, testRetryConfig(), fb)
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c
}

func visionJob() Job {
	return Job{
		RequestID:   "req-1",
		Prompt:      "solve it",
		Images:      []ai.InlineImage{{MIME: "image/jpeg", DataBase64: "aGk="}},
		VisionModel: "gpt-4o",
		TextModel:   "gemini-2.0-flash",
		ExtractText: func(ctx context.Context) (string, error) { return "2+2=?", nil },
		RebuildPrompt: func(text string) string {
			return "ocr noise warning: " + text
		},
	}
}

func TestRetryBoundOnPermanent503(t *testing.T) {
	primary := &mockClient{name: "openai", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, ai.NewAPIError("openai", 503, "unavailable")
	}}
	secondary := &mockClient{name: "gemini", fn: func(ai.Request) (ai.Response, error) {
		t.Fatal("secondary must not be called for a non-429 transient")
		return ai.Response{}, nil
	}}
	c := newTestController(primary, secondary, NewMemoryFallback(time.Minute))

	_, err := c.Dispatch(context.Background(), visionJob())
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if primary.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", primary.calls)
	}
	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) || !apiErr.Retryable {
		t.Errorf("expected retryable APIError, got %v", err)
	}
}

func TestFallbackOneShotOn429(t *testing.T) {
	primary := &mockClient{name: "openai", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, ai.NewAPIError("openai", 429, "rate limited")
	}}
	var secondaryPrompt string
	secondary := &mockClient{name: "gemini", fn: func(req ai.Request) (ai.Response, error) {
		secondaryPrompt = req.Prompt
		return ai.Response{Text: "FINAL ANSWER: 4"}, nil
	}}
	fb := NewMemoryFallback(time.Minute)
	c := newTestController(primary, secondary, fb)

	fallbacks := 0
	job := visionJob()
	job.OnFallback = func() { fallbacks++ }

	resp, err := c.Dispatch(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected one primary and one secondary call, got %d/%d", primary.calls, secondary.calls)
	}
	if !resp.UsedFallback {
		t.Error("expected UsedFallback to be set")
	}
	if fallbacks != 1 {
		t.Errorf("expected exactly one escalation notice, got %d", fallbacks)
	}
	if secondaryPrompt != "ocr noise warning: 2+2=?" {
		t.Errorf("escalation did not rebuild the prompt: %q", secondaryPrompt)
	}
	if !fb.Active(context.Background()) {
		t.Error("expected fallback cool-down to be active after escalation")
	}
}

func TestNonRetryableFailsImmediately(t *testing.T) {
	primary := &mockClient{name: "openai", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, ai.NewAPIError("openai", 400, "bad request")
	}}
	secondary := &mockClient{name: "gemini", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, nil
	}}
	c := newTestController(primary, secondary, NewMemoryFallback(time.Minute))

	_, err := c.Dispatch(context.Background(), visionJob())
	if err == nil {
		t.Fatal("expected error")
	}
	if primary.calls != 1 {
		t.Errorf("expected a single attempt, got %d", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary must not run on a fatal error, got %d calls", secondary.calls)
	}
}

func TestTextPathUsesSecondaryClient(t *testing.T) {
	primary := &mockClient{name: "openai", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, nil
	}}
	var model string
	secondary := &mockClient{name: "gemini", fn: func(req ai.Request) (ai.Response, error) {
		model = req.Model
		return ai.Response{Text: "ok"}, nil
	}}
	c := newTestController(primary, secondary, NewMemoryFallback(time.Minute))

	job := visionJob()
	job.Images = nil // OCR path

	if _, err := c.Dispatch(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 0 || secondary.calls != 1 {
		t.Errorf("expected text path on secondary only, got %d/%d", primary.calls, secondary.calls)
	}
	if model != "gemini-2.0-flash" {
		t.Errorf("expected text model, got %q", model)
	}
}

func TestCancellationAbortsRetryLoop(t *testing.T) {
	primary := &mockClient{name: "openai", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, ai.NewAPIError("openai", 503, "unavailable")
	}}
	secondary := &mockClient{name: "gemini", fn: func(ai.Request) (ai.Response, error) {
		return ai.Response{}, nil
	}}
	c := NewController(primary, secondary, testRetryConfig(), NewMemoryFallback(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(sctx context.Context, d time.Duration) error {
		cancel() // user hits cancel while the loop backs off
		return sctx.Err()
	}

	_, err := c.Dispatch(ctx, visionJob())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("expected no further attempts after cancel, got %d", primary.calls)
	}
}

func TestBackoffDelayCurve(t *testing.T) {
	base := time.Second
	max := 5 * time.Second
	cases := []struct {
		k    int
		want time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDelay(base, max, tc.k); got != tc.want {
			t.Errorf("backoffDelay(k=%d) = %v, want %v", tc.k, got, tc.want)
		}
	}
}
