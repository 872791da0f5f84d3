package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/schedchat/schedchat/internal/enrich"
	"github.com/schedchat/schedchat/internal/google"
	"github.com/schedchat/schedchat/internal/logging"
)

// UnknownUserName is reported while no profile has been loaded.
const UnknownUserName = enrich.UnknownUserName

// State tracks the signed-in identity for one account. It is safe for
// concurrent use.
type State struct {
	account       string
	tokenProvider google.TokenProvider
	logger        *slog.Logger

	mu      sync.RWMutex
	profile *enrich.UserProfile
}

// NewState returns a State for the given account backed by the token
// provider. A nil provider falls back to file-based tokens.
func NewState(account string, provider google.TokenProvider, logger *slog.Logger) *State {
	if provider == nil {
		provider = google.NewFileTokenProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		account:       account,
		tokenProvider: provider,
		logger:        logging.WithComponent(logger, "auth"),
	}
}

// Account returns the account name this state tracks.
func (s *State) Account() string {
	return s.account
}

// IsAuthenticated reports whether a token exists for the account.
func (s *State) IsAuthenticated() bool {
	return s.tokenProvider.HasTokenForAccount(s.account)
}

// GetAccessToken returns the current OAuth access token.
func (s *State) GetAccessToken(ctx context.Context) (string, error) {
	token, err := s.tokenProvider.GetTokenForAccount(ctx, s.account)
	if err != nil {
		return "", fmt.Errorf("failed to get token for account %s: %w", s.account, err)
	}
	return token.AccessToken, nil
}

// GetUserProfile returns the signed-in user's identity, fetching it from
// the userinfo endpoint on first use and caching it afterwards.
func (s *State) GetUserProfile(ctx context.Context) (*enrich.UserProfile, error) {
	s.mu.RLock()
	cached := s.profile
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	token, err := s.tokenProvider.GetTokenForAccount(ctx, s.account)
	if err != nil {
		return nil, fmt.Errorf("failed to get token for account %s: %w", s.account, err)
	}

	profile, err := fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	s.logger.Debug("user profile loaded",
		logging.Account(s.account),
		logging.UserHash(profile.Email))
	return profile, nil
}

// SignOut forgets the cached profile and removes the stored token.
func (s *State) SignOut() error {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()

	if err := google.RemoveTokenForAccount(s.account); err != nil {
		return fmt.Errorf("failed to sign out account %s: %w", s.account, err)
	}
	s.logger.Info("signed out", logging.Account(s.account))
	return nil
}

// fetchUserInfo queries the OpenID userinfo endpoint with the token.
func fetchUserInfo(ctx context.Context, token *oauth2.Token) (*enrich.UserProfile, error) {
	conf := google.GetOAuthConfig()
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	svc, err := oauth2api.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	name := info.Name
	if name == "" {
		name = UnknownUserName
	}

	return &enrich.UserProfile{
		Name:    name,
		Email:   info.Email,
		Picture: info.Picture,
	}, nil
}
