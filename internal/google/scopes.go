package google

// DefaultOAuthScopes are the Google OAuth scopes the assistant needs.
//
// The scopes provide access to:
//   - OpenID Connect user identity (name, email, picture)
//   - Google Calendar: full access for reading context and managing events
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar",
}
