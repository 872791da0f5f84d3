// Package history provides the bounded in-memory conversation log for a
// chat session. The store keeps role-tagged turns in insertion order and
// evicts the oldest turns once the configured bound is exceeded, so prompt
// replay always sees the most recent exchanges.
package history
