// Package calendar_tools provides MCP (Model Context Protocol) tools for Google Calendar operations.
//
// This package exposes Google Calendar functionality through a standardized MCP interface,
// allowing AI assistants to manage calendars, events, and scheduling on behalf of users.
//
// The tools support multi-account authentication and cover event management,
// availability checks, conflict detection, and meeting scheduling.
package calendar_tools
