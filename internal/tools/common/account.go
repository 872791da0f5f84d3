package common

import (
	"context"

	"github.com/schedchat/schedchat/internal/mcp/oauthbridge"
)

// GetAccountFromArgs resolves the Google account a tool call should act on.
//
// Priority order:
//  1. OAuth user email from context (set by the token validation middleware)
//  2. Explicit "account" argument in the request
//  3. "default"
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if userInfo, ok := oauthbridge.UserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		return userInfo.Email
	}

	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
