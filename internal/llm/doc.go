// Package llm provides the client for the external chat-completion
// endpoint. It speaks the OpenAI-compatible chat completions wire format
// and translates transport failures into typed errors the pipeline can
// report to the user.
package llm
