// OpenAI chat completions implementation of [CompletionService]
//
// Request/response types based on https://platform.openai.com/docs/api-reference/chat
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/flowdj/internal/shared"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// chatMessage is a single role-tagged message in a completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responseFormat constrains the completion output shape.
type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResponse is the chat completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIService implements [CompletionService] against the chat completions
// endpoint with bearer authentication.
type OpenAIService struct {
	apiKey        string
	baseURL       string
	moodModel     string
	playlistModel string
	httpClient    *http.Client
}

// NewOpenAIService creates a new OpenAI completion service.
//
// moodModel serves plain completions; playlistModel serves JSON-mode
// completions. Both default to the embedded config values when empty.
func NewOpenAIService(apiKey, baseURL, moodModel, playlistModel string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing OpenAI api_key", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if moodModel == "" {
		moodModel = "gpt-3.5-turbo"
	}
	if playlistModel == "" {
		playlistModel = "gpt-4-1106-preview"
	}

	return &OpenAIService{
		apiKey:        apiKey,
		baseURL:       baseURL,
		moodModel:     moodModel,
		playlistModel: playlistModel,
		httpClient:    http.DefaultClient,
	}, nil
}

func (o *OpenAIService) Name() string {
	return "OpenAI"
}

// doRequest posts a chat completion request and returns the first choice's content.
func (o *OpenAIService) doRequest(ctx context.Context, request chatRequest) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := o.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai API error: status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", shared.ErrAPIRequest)
	}

	return completion.Choices[0].Message.Content, nil
}

// Complete sends a system instruction and user content and returns the
// completion text verbatim.
func (o *OpenAIService) Complete(ctx context.Context, system, user string) (string, error) {
	return o.doRequest(ctx, chatRequest{
		Model: o.moodModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
}

// CompleteJSON requests a JSON-constrained completion, priming the
// conversation with an assistant message carrying a worked example of valid
// output. Returns the raw completion body for the caller to decode.
func (o *OpenAIService) CompleteJSON(ctx context.Context, system, primer, user string) ([]byte, error) {
	content, err := o.doRequest(ctx, chatRequest{
		Model:          o.playlistModel,
		ResponseFormat: &responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "assistant", Content: primer},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, err
	}

	return []byte(content), nil
}
