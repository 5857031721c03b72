package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// GeminiClient calls the generateContent API. Text-only: it is the fallback target
// when the vision model is rate limited, and the direct target for text-only configs.
type GeminiClient struct {
	http   *http.Client
	apiKey string
	base   string
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{http: &http.Client{}, apiKey: apiKey, base: "https://generativelanguage.googleapis.com/v1beta/models"}
}

func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenReq struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiGenResp struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("gemini: %w", ErrMissingKey)
	}

	payload := geminiGenReq{}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, t := range req.History {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		payload.Contents = append(payload.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: t.Content}}})
	}
	payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}})
	payload.GenerationConfig.Temperature = 0
	payload.GenerationConfig.MaxOutputTokens = 4096

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.base, req.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, NewAPIError("gemini", resp.StatusCode, string(b))
	}

	var r geminiGenResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Response{}, err
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return Response{}, errors.New("gemini: no candidates")
	}

	var text string
	for _, p := range r.Candidates[0].Content.Parts {
		text += p.Text
	}

	return Response{
		Text:      text,
		TokensIn:  r.UsageMetadata.PromptTokenCount,
		TokensOut: r.UsageMetadata.CandidatesTokenCount,
	}, nil
}
