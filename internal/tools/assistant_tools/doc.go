// Package assistant_tools provides MCP tools for the scheduling assistant.
//
// The assistant holds a natural-language conversation about the user's
// calendar: it answers questions about upcoming events and creates or
// updates events when the conversation calls for it. Each account keeps its
// own conversation history on the server.
package assistant_tools
