package oauthbridge

import (
	"context"

	mcpoauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers"
)

// UserInfo is the authenticated user attached to a request by the OAuth
// middleware.
type UserInfo = providers.UserInfo

// UserFromContext returns the authenticated user stored in the context by the
// token validation middleware, if any.
func UserFromContext(ctx context.Context) (*UserInfo, bool) {
	return mcpoauth.UserInfoFromContext(ctx)
}
