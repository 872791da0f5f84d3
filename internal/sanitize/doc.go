// Package sanitize normalizes raw completion text for display: it strips
// role-echo prefixes and trailing markers the model sometimes emits,
// collapses whitespace, fixes sentence punctuation and enforces the
// configured length bound. Sanitizing already-sanitized text is a no-op.
package sanitize
