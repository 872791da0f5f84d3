// Package resources provides MCP resources for exposing user and session data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the authenticated user's profile and the scheduling assistant's
// conversation transcript.
//
// Resources resolve the acting account from the OAuth context when the HTTP
// transport is used, falling back to the default account on stdio.
package resources
