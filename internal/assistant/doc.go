// Package assistant orchestrates one conversation: it owns the turn
// pipeline that takes raw user input through validation, context
// enrichment, prompt assembly, completion, directive execution, and
// response cleanup, and it maintains the conversation history across
// turns.
//
// A Pipeline serializes its turns; concurrent Process calls queue rather
// than interleave, so the history always reflects a coherent exchange
// order.
package assistant
