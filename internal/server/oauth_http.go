package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/schedchat/schedchat/internal/instrumentation"
	"github.com/schedchat/schedchat/internal/mcp/oauthbridge"
)

// OAuthConfig holds the settings for the OAuth-protected HTTP transport.
type OAuthConfig struct {
	// BaseURL is the public issuer URL, e.g. https://chat.example.com.
	// HTTP is only accepted for loopback addresses.
	BaseURL string

	// Google OAuth app credentials for the upstream identity provider.
	GoogleClientID     string
	GoogleClientSecret string

	// AllowPublicClientRegistration permits unauthenticated dynamic client
	// registration. Not recommended outside development.
	AllowPublicClientRegistration bool

	// RegistrationAccessToken gates client registration when public
	// registration is disabled.
	RegistrationAccessToken string

	// AllowInsecureAuthWithoutState permits authorization requests without a
	// state parameter, weakening CSRF protection.
	AllowInsecureAuthWithoutState bool

	// MaxClientsPerIP bounds registrations per source IP.
	MaxClientsPerIP int

	// DisableStreaming turns off streaming responses on the MCP endpoint.
	DisableStreaming bool
}

func (c OAuthConfig) bridgeConfig() *oauthbridge.Config {
	return &oauthbridge.Config{
		BaseURL:            c.BaseURL,
		GoogleClientID:     c.GoogleClientID,
		GoogleClientSecret: c.GoogleClientSecret,
		Security: oauthbridge.SecurityConfig{
			AllowPublicClientRegistration: c.AllowPublicClientRegistration,
			RegistrationAccessToken:       c.RegistrationAccessToken,
			AllowInsecureAuthWithoutState: c.AllowInsecureAuthWithoutState,
			MaxClientsPerIP:               c.MaxClientsPerIP,
			EnableAuditLogging:            true,
		},
		RateLimit: oauthbridge.RateLimitConfig{
			Rate:      10,
			Burst:     20,
			UserRate:  100,
			UserBurst: 200,
		},
	}
}

// CreateOAuthHandler creates the OAuth handler separately from the server so
// its token store can be injected into the ServerContext before serving.
func CreateOAuthHandler(config OAuthConfig) (*oauthbridge.Handler, error) {
	return oauthbridge.NewHandler(config.bridgeConfig())
}

// OAuthHTTPServer wraps the MCP server with OAuth 2.1 authentication.
// It serves RFC 9728 protected resource metadata so MCP clients can discover
// Google as the authorization server.
type OAuthHTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	oauthHandler     *oauthbridge.Handler
	httpServer       *http.Server
	disableStreaming bool
	metrics          *instrumentation.Metrics
	healthChecker    *HealthChecker
	sessions         *SessionIDManager
}

// NewOAuthHTTPServer creates an OAuth-enabled HTTP server for MCP.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, config OAuthConfig) (*OAuthHTTPServer, error) {
	oauthHandler, err := CreateOAuthHandler(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}
	return NewOAuthHTTPServerWithHandler(mcpServer, oauthHandler, config.DisableStreaming), nil
}

// NewOAuthHTTPServerWithHandler creates an OAuth-enabled HTTP server reusing
// an existing handler.
func NewOAuthHTTPServerWithHandler(mcpServer *mcpserver.MCPServer, oauthHandler *oauthbridge.Handler, disableStreaming bool) *OAuthHTTPServer {
	return &OAuthHTTPServer{
		mcpServer:        mcpServer,
		oauthHandler:     oauthHandler,
		disableStreaming: disableStreaming,
		sessions:         NewSessionIDManager(),
	}
}

// SetMetrics enables HTTP and OAuth instrumentation on the server.
func (s *OAuthHTTPServer) SetMetrics(metrics *instrumentation.Metrics) {
	s.metrics = metrics
}

// SetHealthChecker registers Kubernetes probe endpoints on the server.
// Call before Start.
func (s *OAuthHTTPServer) SetHealthChecker(hc *HealthChecker) {
	s.healthChecker = hc
}

// Start starts the OAuth-enabled HTTP server on addr. It blocks until the
// server stops.
func (s *OAuthHTTPServer) Start(addr string) error {
	if err := validateHTTPSRequirement(s.oauthHandler.Issuer()); err != nil {
		return err
	}

	mux := http.NewServeMux()
	lib := s.oauthHandler.GetHandler()

	// Health probes are unauthenticated.
	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	// Protected Resource Metadata (RFC 9728)
	mux.Handle("/.well-known/oauth-protected-resource", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeProtectedResourceMetadata)))

	// Authorization Server Metadata (RFC 8414)
	mux.Handle("/.well-known/oauth-authorization-server", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeAuthorizationServerMetadata)))

	// Dynamic Client Registration (RFC 7591)
	mux.Handle("/oauth/register", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeClientRegistration)))

	mux.Handle("/oauth/authorize", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeAuthorization)))
	mux.Handle("/oauth/token", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeToken)))
	mux.Handle("/oauth/callback", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeCallback)))

	// Token Revocation (RFC 7009) and Introspection (RFC 7662)
	mux.Handle("/oauth/revoke", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeTokenRevocation)))
	mux.Handle("/oauth/introspect", s.instrumentationMiddleware(http.HandlerFunc(lib.ServeTokenIntrospection)))

	// MCP endpoint, protected by token validation.
	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if s.disableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)
	mux.Handle("/mcp", s.instrumentationMiddleware(s.oauthInstrumentationWrapper(lib.ValidateToken(s.sessionTrackingMiddleware(streamable)))))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// sessionTrackingMiddleware runs inside token validation, so the OAuth user
// is already in the request context. It binds the session derived from the
// bearer token to the authenticated Google account.
func (s *OAuthHTTPServer) sessionTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions != nil {
			if sessionID, err := s.sessions.ResolveSessionID(r); err == nil {
				if user, ok := oauthbridge.UserFromContext(r.Context()); ok && user.Email != "" {
					s.sessions.SetAccountForSession(sessionID, user.Email)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Sessions returns the session manager tracking account bindings for the
// HTTP transport.
func (s *OAuthHTTPServer) Sessions() *SessionIDManager {
	return s.sessions
}

// Shutdown gracefully shuts down the server and the OAuth handler's
// background services.
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if s.sessions != nil {
		s.sessions.Stop()
	}
	if s.oauthHandler != nil {
		s.oauthHandler.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// GetOAuthHandler returns the OAuth handler for testing or direct access.
func (s *OAuthHTTPServer) GetOAuthHandler() *oauthbridge.Handler {
	return s.oauthHandler
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// instrumentationMiddleware records request metrics for each HTTP endpoint.
// It is a pass-through when no metrics are configured.
func (s *OAuthHTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// oauthInstrumentationWrapper records token validation outcomes on protected
// endpoints. Wrap it outside ValidateToken so rejected requests are counted.
func (s *OAuthHTTPServer) oauthInstrumentationWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		result := instrumentation.StatusSuccess
		if rw.statusCode == http.StatusUnauthorized || rw.statusCode == http.StatusForbidden {
			result = instrumentation.StatusError
		}
		s.metrics.RecordOAuthAuth(r.Context(), result)
	})
}

// validateHTTPSRequirement enforces OAuth 2.1 HTTPS compliance. HTTP is
// allowed only for loopback addresses during development.
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	default:
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
