package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/sidequest-backend/internal/logger"
)

// OpenAIClient is the single-call chat-completion adapter. It returns the
// assistant content unchanged or a *TransientLLMError; retry policy belongs
// to the caller.
type OpenAIClient interface {
	Complete(ctx context.Context, system string, user string, temperature float64, maxTokens int) (string, int, error)
	Model() string
}

type openAIClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(log *logger.Logger) (OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := os.Getenv("SIDEQUEST_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeoutSec := 30
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &openAIClient{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

func (c *openAIClient) Model() string {
	return c.model
}

type chatCompletionsRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature    float64 `json:"temperature,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *openAIClient) Complete(ctx context.Context, system string, user string, temperature float64, maxTokens int) (string, int, error) {
	req := chatCompletionsRequest{
		Model: c.model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	req.ResponseFormat.Type = "json_object"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return "", 0, &TransientLLMError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", 0, &TransientLLMError{Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, &TransientLLMError{Err: err}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", 0, &TransientLLMError{Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &TransientLLMError{Err: fmt.Errorf("openai http %d: %s", resp.StatusCode, string(raw))}
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, &TransientLLMError{Err: fmt.Errorf("openai decode error: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", 0, &TransientLLMError{Err: fmt.Errorf("openai returned no choices")}
	}
	return parsed.Choices[0].Message.Content, parsed.Usage.TotalTokens, nil
}
