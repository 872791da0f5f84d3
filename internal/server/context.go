package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/schedchat/schedchat/internal/assistant"
	"github.com/schedchat/schedchat/internal/auth"
	"github.com/schedchat/schedchat/internal/calendar"
	"github.com/schedchat/schedchat/internal/google"
	"github.com/schedchat/schedchat/internal/instrumentation"
	"github.com/schedchat/schedchat/internal/logging"
)

// ServerContext holds the shared state for the MCP server: calendar
// clients, auth states and conversation pipelines keyed by account.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	completer    assistant.Completer
	assistantCfg assistant.Config

	calendarClients map[string]*calendar.Client // account name to Calendar client
	authStates      map[string]*auth.State      // account name to auth state
	pipelines       map[string]*assistant.Pipeline

	tokenProvider google.TokenProvider
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The completer may be
// nil when the completion endpoint is not configured; conversation tools
// then report a configuration error while calendar tools keep working.
func NewServerContext(ctx context.Context, completer assistant.Completer, cfg assistant.Config, logger *slog.Logger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		logger:          logging.WithComponent(logger, "server"),
		completer:       completer,
		assistantCfg:    cfg,
		calendarClients: make(map[string]*calendar.Client),
		authStates:      make(map[string]*auth.State),
		pipelines:       make(map[string]*assistant.Pipeline),
		tokenProvider:   google.NewFileTokenProvider(),
	}

	// Warm the default account client when a token is already on disk.
	// Missing tokens are fine; clients are lazily created on first use.
	if calendar.HasToken() {
		client, err := calendar.NewClient(shutdownCtx)
		if err != nil {
			sc.logger.Warn("failed to create Calendar client for default account", logging.Err(err))
		} else {
			sc.calendarClients["default"] = client
		}
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// SetTokenProvider replaces the token source used for new clients and
// auth states. Call before serving requests.
func (sc *ServerContext) SetTokenProvider(provider google.TokenProvider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.tokenProvider = provider
}

// SetMetrics attaches the instrumentation sink used by new pipelines.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the instrumentation sink, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger attaches the audit logger used by instrumented tool
// handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// CalendarClientForAccount returns the Calendar client for a specific
// account, creating and caching it on first use. Returns nil if the
// account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calendarClientLocked(account)
}

func (sc *ServerContext) calendarClientLocked(account string) *calendar.Client {
	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if !calendar.HasTokenForAccountWithProvider(account, sc.tokenProvider) {
		return nil
	}

	client, err := calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		sc.logger.Warn("failed to create Calendar client",
			logging.Account(account), logging.Err(err))
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// AuthStateForAccount returns the auth state for an account, creating it
// on first use.
func (sc *ServerContext) AuthStateForAccount(account string) *auth.State {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.authStateLocked(account)
}

func (sc *ServerContext) authStateLocked(account string) *auth.State {
	if state, ok := sc.authStates[account]; ok {
		return state
	}
	state := auth.NewState(account, sc.tokenProvider, sc.logger)
	sc.authStates[account] = state
	return state
}

// PipelineForAccount returns the conversation pipeline for an account,
// assembling it on first use. Each account keeps its own history.
func (sc *ServerContext) PipelineForAccount(account string) (*assistant.Pipeline, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if pipeline, ok := sc.pipelines[account]; ok {
		return pipeline, nil
	}

	if sc.completer == nil {
		return nil, fmt.Errorf("completion endpoint is not configured")
	}

	pipeline, err := assistant.NewConversation(
		sc.assistantCfg,
		sc.completer,
		sc.authStateLocked(account),
		sc.calendarClientLocked(account),
		sc.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble pipeline for account %s: %w", account, err)
	}
	if sc.metrics != nil {
		pipeline.SetRecorder(sc.metrics)
	}

	sc.pipelines[account] = pipeline
	return pipeline, nil
}

// Pipeline returns the conversation pipeline for the default account
func (sc *ServerContext) Pipeline() (*assistant.Pipeline, error) {
	return sc.PipelineForAccount("default")
}

// ResetPipelineForAccount drops the cached pipeline so the next request
// rebuilds it, picking up new clients after sign-in or sign-out.
func (sc *ServerContext) ResetPipelineForAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.pipelines, account)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
