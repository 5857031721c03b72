package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog/log"
)

// Extractor turns an ordered list of screenshot paths into one text blob.
// Implementations must preserve input order and separate per-image results visibly.
// Per-image failures degrade to an empty segment; total failure yields "" and no error.
type Extractor interface {
	ExtractTextFromMultiple(ctx context.Context, paths []string) (string, error)
}

// TesseractExtractor runs local tesseract OCR over each screenshot.
type TesseractExtractor struct {
	language string
}

func NewTesseractExtractor(language string) *TesseractExtractor {
	if language == "" {
		language = "eng"
	}
	return &TesseractExtractor{language: language}
}

func (e *TesseractExtractor) ExtractTextFromMultiple(ctx context.Context, paths []string) (string, error) {
	var parts []string
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.extractOne(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Int("index", i).Msg("OCR failed for screenshot")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("--- Screenshot %d ---\n%s", i+1, strings.TrimSpace(text)))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (e *TesseractExtractor) extractOne(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr text: %w", err)
	}
	return text, nil
}
