// Package oauthbridge wires the github.com/giantswarm/mcp-oauth library into
// the schedchat MCP server.
//
// The library implements the OAuth 2.1 authorization server surface required
// by MCP clients (RFC 9728 protected resource metadata, RFC 7591 dynamic
// client registration, PKCE, token introspection and revocation) with Google
// as the upstream identity provider. This package adapts its storage to the
// google.TokenProvider interface so Google API clients can reuse tokens
// acquired over the HTTP transport.
package oauthbridge
