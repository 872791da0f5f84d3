package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// KeyNotConfiguredSentinel is the placeholder the deployment tooling
	// writes when no API key was supplied. It must be rejected like an
	// empty key.
	KeyNotConfiguredSentinel = "TOGETHER_API_KEY_NOT_CONFIGURED"

	// DefaultModel is used when no model is configured.
	DefaultModel = "meta-llama/Llama-2-7b-chat-hf"

	// DefaultTimeout bounds a single completion call. A timeout is
	// reported as KindServiceUnavailable.
	DefaultTimeout = 20 * time.Second

	defaultMaxTokens   = 512
	defaultTemperature = 0.7
	defaultTopP        = 0.7
	defaultTopK        = 50
)

// defaultStop are the stop sequences sent with every request.
var defaultStop = []string{"<|im_end|>", "</s>"}

// Config holds the completion endpoint configuration.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// Validate checks that the endpoint and key are usable. The sentinel key
// value counts as unconfigured.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return &ConfigError{Field: "endpoint", Err: errors.New("completion endpoint is not set")}
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Field: "api_key", Err: errors.New("completion API key is not set")}
	}
	if c.APIKey == KeyNotConfiguredSentinel {
		return &ConfigError{Field: "api_key", Err: errors.New("completion API key is the unconfigured placeholder")}
	}
	return nil
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a completion client, failing fast with a *ConfigError
// if the configuration is unusable.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = defaultTopP
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends the message sequence to the completion endpoint and
// returns the generated text. Failures are reported as *APIError; no
// retries are attempted.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", &APIError{Kind: KindUnknown, Err: errors.New("no messages to send")}
	}

	reqBody := completionRequest{
		Model:             c.cfg.Model,
		Messages:          messages,
		MaxTokens:         c.cfg.MaxTokens,
		Temperature:       c.cfg.Temperature,
		TopP:              c.cfg.TopP,
		TopK:              defaultTopK,
		RepetitionPenalty: 1,
		Stop:              defaultStop,
		Stream:            false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &APIError{Kind: KindUnknown, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &APIError{Kind: KindUnknown, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A client-side timeout means the service did not answer in
		// time; report it the same way as an upstream 503.
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return "", &APIError{Kind: KindServiceUnavailable, Err: fmt.Errorf("completion call timed out: %w", err)}
		}
		return "", &APIError{Kind: KindUnknown, Err: fmt.Errorf("completion call failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{
			Kind:   kindForStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &APIError{Kind: KindUnknown, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &APIError{Kind: KindUnknown, Status: resp.StatusCode, Err: errors.New("no completion choices returned")}
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// kindForStatus maps an HTTP status code to an error kind.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}
