// Package prompt assembles the ordered message sequence sent to the
// completion endpoint. The sequence is always: system prompt, optional
// context message, recent conversation history, then the current user
// input.
//
// The system prompt carries the assistant's behavioral rules and the
// calendar directive grammar. The context message renders the per-turn
// snapshot produced by the enrich package; its calendar phrasing is
// keyed off the access state so the model never sees contradictory
// signals about calendar availability.
package prompt
