package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxLength is the display length bound applied when none is
// configured.
const DefaultMaxLength = 2000

var (
	rolePrefixPattern = regexp.MustCompile(`(?i)^(Assistant:|AI:|Response:|Answer:)\s*`)
	selfIntroPattern  = regexp.MustCompile(`(?i)^(I am an AI|As an AI|As a virtual assistant)[^.]*\.\s*`)
	endMarkerPattern  = regexp.MustCompile(`(?i)\s*\[END\]\s*$`)
	tripleNewlines    = regexp.MustCompile(`\n\s*\n\s*\n`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
	greetingPattern   = regexp.MustCompile(`(?i)^(hello|hi|hey|good\s+(morning|afternoon|evening))`)
)

// Sanitizer applies the fixed cleanup sequence to completion output.
type Sanitizer struct {
	maxLength int
}

// New creates a sanitizer enforcing the given maximum length. A
// non-positive value selects DefaultMaxLength.
func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// Clean runs the sanitation steps in their fixed order and returns the
// display-ready text. The transformation is idempotent.
func (s *Sanitizer) Clean(text string) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return ""
	}

	cleaned = rolePrefixPattern.ReplaceAllString(cleaned, "")
	cleaned = selfIntroPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	cleaned = endMarkerPattern.ReplaceAllString(cleaned, "")

	// Newline collapse must run before the generic whitespace collapse;
	// the pair is a fixed contract even though the second step flattens
	// the paragraph breaks the first one keeps.
	cleaned = tripleNewlines.ReplaceAllString(cleaned, "\n\n")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned != "" && !strings.ContainsAny(cleaned[len(cleaned)-1:], ".!?") {
		cleaned += "."
	}

	if greetingPattern.MatchString(cleaned) {
		r := []rune(cleaned)
		r[0] = unicode.ToUpper(r[0])
		cleaned = string(r)
	}

	return s.truncate(cleaned)
}

// ClipRunes shortens text to at most limit bytes, backing the cut up to
// the nearest rune boundary so the result stays valid UTF-8. A
// non-positive limit leaves the text unchanged.
func ClipRunes(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// truncate enforces the length bound on a rune boundary, preferring to
// cut at the last sentence terminator when one falls late enough in the
// text.
func (s *Sanitizer) truncate(text string) string {
	if len(text) <= s.maxLength {
		return text
	}

	cut := ClipRunes(text, s.maxLength-20)
	lastEnd := -1
	for _, term := range []string{".", "!", "?"} {
		if i := strings.LastIndex(cut, term); i > lastEnd {
			lastEnd = i
		}
	}

	if lastEnd >= 0 && float64(lastEnd) > float64(s.maxLength)*0.7 {
		return cut[:lastEnd+1]
	}
	return cut + "..."
}
