// Package cmd implements the command-line interface for schedchat.
//
// This package provides the following commands:
//   - chat: Start an interactive scheduling conversation in the terminal
//   - auth: Authorize access to a Google Calendar account
//   - serve: Start the MCP server to provide tools for AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The chat command is the default command when no subcommand is specified.
package cmd
