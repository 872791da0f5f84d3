package oauthbridge

import (
	"fmt"

	mcpoauth "github.com/giantswarm/mcp-oauth"
	googleprovider "github.com/giantswarm/mcp-oauth/providers/google"
	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/schedchat/schedchat/internal/google"
)

// SecurityConfig and RateLimitConfig re-export the library's tuning knobs so
// callers outside this package do not import the library directly.
type (
	SecurityConfig  = mcpoauth.SecurityConfig
	RateLimitConfig = mcpoauth.RateLimitConfig
)

// Config holds the settings needed to stand up the OAuth authorization
// server for the HTTP transport.
type Config struct {
	// BaseURL is the public issuer URL of this server, e.g. https://chat.example.com
	BaseURL string

	// GoogleClientID and GoogleClientSecret identify the Google OAuth app
	// used as the upstream identity provider.
	GoogleClientID     string
	GoogleClientSecret string

	Security  SecurityConfig
	RateLimit RateLimitConfig
}

// Handler owns the library's OAuth server and its token store for the
// lifetime of the HTTP transport.
type Handler struct {
	server *mcpoauth.Server
	store  *memory.Store
	issuer string
}

// NewHandler creates an OAuth handler backed by an in-memory token store and
// Google as the identity provider.
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for the OAuth server")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("Google OAuth client credentials are required")
	}

	store := memory.New()

	provider, err := googleprovider.NewProvider(&googleprovider.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.BaseURL + "/oauth/callback",
		Scopes:       google.DefaultOAuthScopes,
	})
	if err != nil {
		store.Stop()
		return nil, fmt.Errorf("failed to create Google provider: %w", err)
	}

	server, err := mcpoauth.NewServer(&mcpoauth.Config{
		Issuer:    cfg.BaseURL,
		Security:  cfg.Security,
		RateLimit: cfg.RateLimit,
	}, provider, store)
	if err != nil {
		store.Stop()
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	return &Handler{
		server: server,
		store:  store,
		issuer: cfg.BaseURL,
	}, nil
}

// GetHandler returns the library server whose methods serve the individual
// OAuth HTTP endpoints.
func (h *Handler) GetHandler() *mcpoauth.Server {
	return h.server
}

// GetStore returns the token store backing this handler. The store satisfies
// storage.TokenStore and can feed a TokenProvider.
func (h *Handler) GetStore() *memory.Store {
	return h.store
}

// Issuer returns the public base URL the server was configured with.
func (h *Handler) Issuer() string {
	return h.issuer
}

// Stop shuts down the handler's background services.
func (h *Handler) Stop() {
	if h.store != nil {
		h.store.Stop()
	}
}
