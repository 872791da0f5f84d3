package oauthbridge

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider adapts the mcp-oauth token store to the google.TokenProvider
// interface so Google API clients can use tokens acquired over the HTTP
// transport's OAuth flow.
type TokenProvider struct {
	store storage.TokenStore
}

// NewTokenProvider creates a token provider from an mcp-oauth token store.
func NewTokenProvider(store storage.TokenStore) *TokenProvider {
	return &TokenProvider{
		store: store,
	}
}

// GetTokenForAccount retrieves a Google OAuth token for the specified account.
// The account is typically the authenticated user's email address.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	return p.store.GetToken(ctx, account)
}

// HasTokenForAccount reports whether a token exists for the specified account.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetToken(context.Background(), account)
	return err == nil
}

// SaveToken stores a Google OAuth token for the given account. Used when
// tokens are refreshed or initially acquired.
func (p *TokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}
