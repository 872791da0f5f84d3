package llm

import "fmt"

// Message is one entry in the message sequence sent to the completion
// endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles understood by the completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrorKind classifies a completion endpoint failure.
type ErrorKind string

// Error kinds mapped from the endpoint's HTTP status.
const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindRateLimited        ErrorKind = "rate_limited"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindUnknown            ErrorKind = "unknown"
)

// APIError represents a failure reported by (or while reaching) the
// completion endpoint.
type APIError struct {
	// Kind classifies the failure for user-facing reporting
	Kind ErrorKind

	// Status is the HTTP status code, 0 for transport-level failures
	Status int

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion request failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("completion request failed (%s): %v", e.Kind, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ConfigError indicates the client is misconfigured. It is reported at
// construction time and blocks all processing.
type ConfigError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config %s: %v", e.Field, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// completionRequest is the wire format for the chat completions call.
type completionRequest struct {
	Model             string    `json:"model"`
	Messages          []Message `json:"messages"`
	MaxTokens         int       `json:"max_tokens"`
	Temperature       float64   `json:"temperature"`
	TopP              float64   `json:"top_p"`
	TopK              int       `json:"top_k"`
	RepetitionPenalty float64   `json:"repetition_penalty"`
	Stop              []string  `json:"stop"`
	Stream            bool      `json:"stream"`
}

// completionResponse is the subset of the response the client consumes.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
