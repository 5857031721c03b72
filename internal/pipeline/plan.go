package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/ai"
	"github.com/local/answerpipe/internal/config"
	"github.com/local/answerpipe/internal/metrics"
)

// Plan is the prepared input for one dispatch. Invariant: exactly one of Images and
// ExtractedText is non-empty. Both follow the screenshot queue's insertion order.
type Plan struct {
	UseVision     bool
	Images        []ai.InlineImage
	ExtractedText string
}

// buildPlan decides the execution path for one request. The OCR+text path is forced
// when the configured model is text-only or a fallback cool-down is active; otherwise
// the screenshots are compressed for the vision path.
func (o *Orchestrator) buildPlan(ctx context.Context, requestID string, paths []string) (Plan, error) {
	textOnly := config.IsTextOnlyModel(o.deps.Cfg.Providers.ConfiguredModel)
	coolingDown := o.deps.Controller.FallbackActive(ctx)

	if textOnly || coolingDown {
		o.publish(Event{Kind: EventProgress, RequestID: requestID, Stage: StageOCRExtracting})
		log.Info().
			Str("request_id", requestID).
			Bool("text_only_model", textOnly).
			Bool("fallback_cooldown", coolingDown).
			Int("screenshots", len(paths)).
			Msg("taking OCR+text path")

		text, err := o.deps.OCR.ExtractTextFromMultiple(ctx, paths)
		if err != nil {
			return Plan{}, err
		}
		if text == "" {
			metrics.IncOCR("empty")
			return Plan{}, &OCRError{Reason: "no text recognized in any screenshot"}
		}
		metrics.IncOCR("ok")
		return Plan{UseVision: false, ExtractedText: text}, nil
	}

	images := make([]ai.InlineImage, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		img, err := o.deps.Compressor.Compress(p)
		if err != nil {
			// One bad screenshot fails the request rather than silently reordering.
			return Plan{}, fmt.Errorf("compress %s: %w", p, err)
		}
		images = append(images, img)
	}
	return Plan{UseVision: true, Images: images}, nil
}
