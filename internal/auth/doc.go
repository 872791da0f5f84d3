// Package auth tracks the signed-in Google identity for a conversation.
//
// State lazily loads the user profile through the OpenID userinfo
// endpoint and caches it. It satisfies the auth port the enrichment and
// directive-execution layers consume, so calendar access follows the
// sign-in state without those layers knowing about OAuth.
package auth
