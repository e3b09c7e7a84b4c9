package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/speclens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Client produces Stage 1 / Stage 2 extraction records through an
// OpenAI-compatible chat-completions API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new extraction client. requestsPerHour bounds the
// upstream call rate; zero falls back to a conservative default.
func NewClient(apiKey, baseURL, model string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 500
	}
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// chatMessage is one turn of a chat-completions request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the chat-completions request payload.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatResponse is the subset of the chat-completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GenerateStage1 asks the model for the seller-defined specification set of
// a category, grouped into primary/secondary/tertiary buckets.
func (c *Client) GenerateStage1(ctx context.Context, category string) (*domain.Stage1Record, error) {
	content, err := c.chatCompletion(ctx, stage1SystemPrompt, stage1UserPrompt(category))
	if err != nil {
		return nil, err
	}
	record, err := ParseStage1Response(content)
	if err != nil {
		return nil, fmt.Errorf("stage 1: %w", err)
	}
	if record.Category == "" {
		record.Category = category
	}
	return record, nil
}

// GenerateStage2 asks the model for the buyer-facing option sets observed
// on the given marketplace URLs.
func (c *Client) GenerateStage2(ctx context.Context, category string, urls []string) (*domain.Stage2Record, error) {
	content, err := c.chatCompletion(ctx, stage2SystemPrompt, stage2UserPrompt(category, urls))
	if err != nil {
		return nil, err
	}
	record, err := ParseStage2Response(content)
	if err != nil {
		return nil, fmt.Errorf("stage 2: %w", err)
	}
	return record, nil
}

// chatCompletion posts one chat request and returns the first choice's
// content. Transient failures (429/502/503 and transport errors) are
// retried with exponential backoff up to maxAttempts.
func (c *Client) chatCompletion(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter error: %w", err)
		}

		body, status, err := c.doRequest(ctx, endpoint, payload)
		if err != nil {
			if c.debug {
				log.Printf("[LLM] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			if !sleepBackoff(ctx, attempt) {
				return "", ctx.Err()
			}
			continue
		}

		if status != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", domain.ErrLLMAPIFailure, status)
			if c.debug {
				log.Printf("[LLM] API error (attempt %d) - Status: %d, Body: %s", attempt, status, truncateForLog(body))
			}
			if !isTransientStatus(status) {
				return "", lastErr
			}
			if !sleepBackoff(ctx, attempt) {
				return "", ctx.Err()
			}
			continue
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", fmt.Errorf("%w: empty choices", domain.ErrLLMAPIFailure)
		}

		return parsed.Choices[0].Message.Content, nil
	}

	return "", lastErr
}

// doRequest executes one HTTP POST and returns the body and status.
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "SpecLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrLLMAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", domain.ErrLLMAPIFailure, err)
	}
	return body, resp.StatusCode, nil
}

// isTransientStatus reports whether the status is worth retrying.
func isTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// exponentialBackoff returns the wait before the next attempt:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// sleepBackoff waits out the backoff for the attempt, honoring context
// cancellation. Returns false when the context expired.
func sleepBackoff(ctx context.Context, attempt int) bool {
	timer := time.NewTimer(exponentialBackoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncateForLog(body []byte) string {
	const max = 512
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
