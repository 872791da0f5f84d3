package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsRolePrefixes(t *testing.T) {
	s := New(0)

	tests := []struct {
		in   string
		want string
	}{
		{"Assistant: Sure, I can help.", "Sure, I can help."},
		{"AI: Done.", "Done."},
		{"Response: Here you go.", "Here you go."},
		{"answer: yes.", "yes."},
		{"I am an AI assistant built to help. Your meeting is set.", "Your meeting is set."},
		{"As an AI, I cannot feel. Your meeting is set.", "Your meeting is set."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Clean(tt.in), "input: %q", tt.in)
	}
}

func TestClean_StripsEndMarker(t *testing.T) {
	s := New(0)
	assert.Equal(t, "All done.", s.Clean("All done. [END]"))
	assert.Equal(t, "All done.", s.Clean("All done.[END]"))
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	s := New(0)
	got := s.Clean("First line.\n\n\n\nSecond   line.")
	assert.Equal(t, "First line. Second line.", got)
	assert.NotContains(t, got, "\n")
}

func TestClean_EnsuresSentenceEnding(t *testing.T) {
	s := New(0)
	assert.Equal(t, "No terminator here.", s.Clean("No terminator here"))
	assert.Equal(t, "Already ends!", s.Clean("Already ends!"))
	assert.Equal(t, "A question?", s.Clean("A question?"))
}

func TestClean_CapitalizesGreeting(t *testing.T) {
	s := New(0)
	assert.Equal(t, "Hello there.", s.Clean("hello there"))
	assert.Equal(t, "Good morning.", s.Clean("good morning"))
	assert.Equal(t, "Hi! How can I help?", s.Clean("hi! How can I help?"))
}

func TestClean_Empty(t *testing.T) {
	s := New(0)
	assert.Equal(t, "", s.Clean(""))
	assert.Equal(t, "", s.Clean("   \n\t "))
}

func TestClean_TruncatesAtSentenceBoundary(t *testing.T) {
	s := New(100)

	// Sentence terminator past the 70% mark: cut there, inclusive.
	text := strings.Repeat("a", 78) + ". " + strings.Repeat("b", 200)
	got := s.Clean(text)
	assert.Equal(t, strings.Repeat("a", 78)+".", got)
	assert.LessOrEqual(t, len(got), 100)
}

func TestClean_HardTruncateAddsEllipsis(t *testing.T) {
	s := New(100)

	// No terminator anywhere: hard cut to max-20 plus ellipsis.
	text := strings.Repeat("x", 300)
	got := s.Clean(text)
	assert.Equal(t, strings.Repeat("x", 80)+"...", got)
}

func TestClean_TruncatesOnRuneBoundary(t *testing.T) {
	s := New(100)

	// 79 ASCII bytes push the cut point into the middle of the first
	// two-byte rune; the cut must back up instead of splitting it.
	text := strings.Repeat("x", 79) + strings.Repeat("é", 120)
	got := s.Clean(text)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 100)
}

func TestClipRunes(t *testing.T) {
	assert.Equal(t, "abc", ClipRunes("abc", 10))
	assert.Equal(t, "abc", ClipRunes("abcdef", 3))
	assert.Equal(t, "abc", ClipRunes("abcé", 4))
	assert.Equal(t, "café", ClipRunes("café", 5))
	assert.Equal(t, "unbounded", ClipRunes("unbounded", 0))
}

func TestClean_WithinBoundUnchanged(t *testing.T) {
	s := New(100)
	assert.Equal(t, "Short and sweet.", s.Clean("Short and sweet."))
}

func TestClean_Idempotent(t *testing.T) {
	s := New(120)

	inputs := []string{
		"Assistant: hello there\n\n\nSecond paragraph [END]",
		strings.Repeat("long sentence. ", 30),
		"good evening, here is your schedule",
		strings.Repeat("z", 500),
	}

	for _, in := range inputs {
		once := s.Clean(in)
		twice := s.Clean(once)
		assert.Equal(t, once, twice, "input: %.40q", in)
	}
}
