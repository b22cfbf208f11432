package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/pkg/retry"
	"github.com/yungbote/notey-backend/internal/utils"
)

// AIClient is the single boundary to the text-generation and embedding
// collaborators. Responses from GenerateText are plain text with no schema
// guarantee; callers validate.
type AIClient interface {
	GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

type aiClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	embedModel string
	httpClient *http.Client
	policy     retry.Policy
}

func NewAIClient(log *logger.Logger) (AIClient, error) {
	apiKey := utils.GetEnv("AI_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	baseURL := utils.GetEnv("AI_BASE_URL", "https://api.openai.com", log)
	model := utils.GetEnv("AI_MODEL", "gpt-4o-mini", log)
	embedModel := utils.GetEnv("AI_EMBED_MODEL", "text-embedding-3-small", log)

	// Bounded timeout on every request so no suspension point can hang.
	timeoutSec := utils.GetEnvAsInt("AI_TIMEOUT_SECONDS", 30, log)
	maxRetries := utils.GetEnvAsInt("AI_MAX_RETRIES", 3, log)

	policy := retry.DefaultPolicy()
	policy.Attempts = maxRetries + 1

	return &aiClient{
		log:        log.With("service", "AIClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		policy:     policy,
	}, nil
}

type aiHTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *aiHTTPError) Error() string {
	return fmt.Sprintf("ai http %d: %s", e.StatusCode, e.Body)
}

func isRetryableAIErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *aiHTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		return code == 408 || code == 429 || (code >= 500 && code <= 599)
	}
	return false
}

func retryAfterHint(err error) time.Duration {
	var httpErr *aiHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}

func (c *aiClient) doOnce(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &aiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
				httpErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return httpErr
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("ai decode error: %w", uErr)
	}
	return nil
}

func (c *aiClient) do(ctx context.Context, method, path string, body any, out any) error {
	attempt := 0
	return c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		err := c.doOnce(ctx, method, path, body, out)
		if err != nil && isRetryableAIErr(err) && attempt < c.policy.Attempts {
			c.log.Warn("AI request retrying", "path", path, "attempt", attempt, "error", err.Error())
		}
		return err
	}, isRetryableAIErr, retryAfterHint)
}

// ---- Text generation ----

type chatCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *aiClient) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := chatCompletionRequest{
		Model: c.model,
		Messages: []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	var resp chatCompletionResponse
	if err := c.do(ctx, "POST", "/v1/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ---- Embeddings ----

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *aiClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	req := embeddingsRequest{Model: c.embedModel, Input: inputs}
	var resp embeddingsResponse
	if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}
	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = vec
		}
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return out, nil
}
