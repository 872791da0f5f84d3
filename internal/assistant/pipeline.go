package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/schedchat/schedchat/internal/actions"
	"github.com/schedchat/schedchat/internal/enrich"
	"github.com/schedchat/schedchat/internal/history"
	"github.com/schedchat/schedchat/internal/llm"
	"github.com/schedchat/schedchat/internal/logging"
	"github.com/schedchat/schedchat/internal/prompt"
	"github.com/schedchat/schedchat/internal/sanitize"
)

// Completer produces a model response for an ordered message sequence.
// *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Recorder receives per-turn measurements. Implementations must be safe
// for concurrent use; a nil Recorder disables recording.
type Recorder interface {
	RecordTurn(ctx context.Context, status string, duration time.Duration)
	RecordCompletion(ctx context.Context, duration time.Duration, err error)
	RecordDirective(ctx context.Context, kind, status string)
}

// ValidationError reports unusable user input. The turn is rejected
// before any state changes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Pipeline runs conversation turns end to end and owns the conversation
// history. Turns are serialized; concurrent Process calls queue.
type Pipeline struct {
	mu        sync.Mutex
	cfg       Config
	history   *history.Store
	enricher  *enrich.Enricher
	builder   *prompt.Builder
	completer Completer
	executor  *actions.Executor
	sanitizer *sanitize.Sanitizer
	recorder  Recorder
	logger    *slog.Logger
}

// NewPipeline assembles a conversation pipeline. The completer is
// required; enricher and executor may be nil for calendar-less operation
// (every turn then runs with access unavailable).
func NewPipeline(cfg Config, completer Completer, enricher *enrich.Enricher, executor *actions.Executor, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:       cfg,
		history:   history.NewStore(cfg.MaxExchanges),
		enricher:  enricher,
		builder:   prompt.NewBuilder(),
		completer: completer,
		executor:  executor,
		sanitizer: cfg.sanitizer(),
		logger:    logging.WithComponent(logger, "pipeline"),
	}, nil
}

// SetRecorder attaches a measurement sink. Call before the first turn.
// The executor, when present, reports its directive outcomes to the
// same sink.
func (p *Pipeline) SetRecorder(r Recorder) {
	p.recorder = r
	if p.executor != nil {
		p.executor.SetRecorder(r)
	}
}

// Process runs one conversation turn and returns the final response
// text. On error the user's turn remains in history but no assistant
// turn is recorded, so a retry sees the same conversation state.
func (p *Pipeline) Process(ctx context.Context, input string) (string, error) {
	validated, err := p.validate(input)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	started := time.Now()
	response, err := p.processLocked(ctx, validated)
	if p.recorder != nil {
		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		p.recorder.RecordTurn(ctx, status, time.Since(started))
	}
	return response, err
}

func (p *Pipeline) processLocked(ctx context.Context, input string) (string, error) {
	// Snapshot before recording the new turn so the prompt does not
	// carry the input twice.
	prior := p.history.Recent(p.cfg.MaxExchanges)
	p.history.Append(history.RoleUser, input)

	var enriched enrich.Context
	if p.enricher != nil {
		enriched = p.enricher.Enrich(ctx)
	} else {
		enriched = enrich.Context{AccessState: enrich.AccessUnavailable}
	}

	messages := p.builder.Build(input, enriched, prior)

	completionStart := time.Now()
	raw, err := p.completer.Complete(ctx, messages)
	if p.recorder != nil {
		p.recorder.RecordCompletion(ctx, time.Since(completionStart), err)
	}
	if err != nil {
		p.logger.Error("completion failed", logging.Err(err))
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	response := strings.TrimSpace(raw)
	if p.executor != nil {
		response = p.executor.Execute(ctx, response)
	}
	response = p.sanitizer.Clean(response)

	p.history.Append(history.RoleAssistant, response)
	p.logger.Info("turn processed",
		slog.Int("prompt_messages", len(messages)),
		slog.Int("history_turns", p.history.Len()))

	return response, nil
}

// validate trims the input, rejects empty turns, and silently clips
// oversized ones.
func (p *Pipeline) validate(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &ValidationError{Reason: "message is empty"}
	}
	if len(trimmed) > p.cfg.MaxMessageLength {
		trimmed = sanitize.ClipRunes(trimmed, p.cfg.MaxMessageLength)
	}
	return trimmed, nil
}

// History returns the full conversation transcript in order.
func (p *Pipeline) History() []history.Turn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.All()
}

// ClearHistory forgets the conversation.
func (p *Pipeline) ClearHistory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history.Clear()
}

// Status summarizes the pipeline for diagnostics.
type Status struct {
	HistoryTurns  int       `json:"history_turns"`
	LastProcessed time.Time `json:"last_processed"`
}

// Status reports the current conversation state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		HistoryTurns:  p.history.Len(),
		LastProcessed: p.history.LastProcessed(),
	}
}
