// Package enrich builds the per-turn context snapshot injected into the
// prompt: the signed-in user's profile, the current time and timezone, and
// a bounded window of upcoming calendar events. Every enrichment step is
// independently fault-tolerant; a failed calendar fetch marks the access
// state unavailable instead of failing the turn.
package enrich
