// Package actions extracts calendar directives from model output and
// executes them against the calendar port.
//
// The model requests calendar changes with inline directive spans:
//
//	[CREATE_EVENT]
//	Title: Lunch with Sam
//	Date: 2025-08-18
//	Start: 12:00
//	End: 13:00
//	[/CREATE_EVENT]
//
//	[UPDATE_EVENT:event_id]
//	Location: Cafe Luna
//	[/UPDATE_EVENT]
//
// Spans are executed strictly left to right in the order they appear in
// the response, and each span is replaced in place with a human-readable
// result line. Text outside the spans passes through untouched.
package actions
