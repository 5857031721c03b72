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

// OpenAIClient calls the chat completions API with optional inline screenshots.
type OpenAIClient struct {
	http   *http.Client
	apiKey string
	base   string
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{http: &http.Client{}, apiKey: apiKey, base: "https://api.openai.com/v1/chat/completions"}
}

func (c *OpenAIClient) Name() string { return "openai" }

type openAIMessage struct {
	Role    string                   `json:"role"`
	Content []map[string]interface{} `json:"content"`
}

type openAIChatReq struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("openai: %w", ErrMissingKey)
	}

	var messages []openAIMessage

	if req.System != "" {
		messages = append(messages, openAIMessage{
			Role: "system",
			Content: []map[string]interface{}{
				{"type": "text", "text": req.System},
			},
		})
	}

	// Prior turns first, in order, so the model sees the original exchange before the new prompt.
	for _, t := range req.History {
		role := "user"
		if t.Role == "assistant" {
			role = "assistant"
		}
		messages = append(messages, openAIMessage{
			Role: role,
			Content: []map[string]interface{}{
				{"type": "text", "text": t.Content},
			},
		})
	}

	var userContent []map[string]interface{}
	for _, img := range req.Images {
		imageURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, img.DataBase64)
		userContent = append(userContent, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]string{"url": imageURL},
		})
	}
	userContent = append(userContent, map[string]interface{}{
		"type": "text",
		"text": req.Prompt,
	})

	messages = append(messages, openAIMessage{Role: "user", Content: userContent})

	payload := openAIChatReq{
		Model:       req.Model,
		Messages:    messages,
		Temperature: 0,
		MaxTokens:   4096,
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Response{}, NewAPIError("openai", resp.StatusCode, string(b))
	}

	var r openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Response{}, err
	}
	if len(r.Choices) == 0 {
		return Response{}, errors.New("openai: no choices")
	}

	return Response{
		Text:      r.Choices[0].Message.Content,
		TokensIn:  r.Usage.PromptTokens,
		TokensOut: r.Usage.CompletionTokens,
	}, nil
}
