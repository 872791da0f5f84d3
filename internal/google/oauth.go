package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables carrying the OAuth client credentials.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
)

// cacheDirName is the directory under the user cache dir where tokens
// are stored.
const cacheDirName = "schedchat"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName rejects account names that cannot safely form a
// file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphen and underscore are allowed", account)
	}
	return nil
}

// getTokenFilePath returns the on-disk token location for an account.
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), cacheDirName, fmt.Sprintf("google-%s.token", account))
}

// GetOAuthConfig returns the OAuth2 configuration for Google services.
// Client credentials come from the environment.
func GetOAuthConfig() *oauth2.Config {
	const oob = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetAuthURL returns the OAuth URL for user authorization
func GetAuthURL() string {
	conf := GetOAuthConfig()
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// HasTokenForAccount checks if a token file exists for the given account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.ReadFile(getTokenFilePath(account))
	return err == nil
}

// SaveToken exchanges an authorization code for tokens and saves them
// for the default account
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// SaveTokenForAccount exchanges an authorization code for tokens and
// saves them under the given account name
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	conf := GetOAuthConfig()
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// RemoveTokenForAccount deletes the stored token for an account
func RemoveTokenForAccount(account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(getTokenFilePath(account)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// GetTokenSource returns an OAuth2 token source for the default account
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, "default")
}

// GetTokenSourceForAccount returns an OAuth2 token source for the stored
// token of the given account. Returns an error if no valid token exists.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	conf := GetOAuthConfig()

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// GetHTTPClient returns an HTTP client configured with OAuth2 authentication
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func GetHTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := GetTokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	return client, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

// GetAuthenticationErrorMessage returns a user-facing explanation for a
// missing or invalid token on the given account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no Google OAuth token for account %q: run 'schedchat auth' to complete the OAuth flow, or connect through a transport that provides OAuth tokens", account)
}
