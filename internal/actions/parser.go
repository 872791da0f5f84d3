package actions

import (
	"regexp"
	"sort"
	"strings"
)

var (
	createPattern = regexp.MustCompile(`\[CREATE_EVENT\]([\s\S]*?)\[/CREATE_EVENT\]`)
	updatePattern = regexp.MustCompile(`\[UPDATE_EVENT:([^\]]+)\]([\s\S]*?)\[/UPDATE_EVENT\]`)
)

// Parse extracts every directive span from a model response. Directives
// are returned in document order regardless of kind. Responses without
// spans yield an empty slice.
func Parse(response string) []Directive {
	var directives []Directive

	for _, m := range createPattern.FindAllStringSubmatchIndex(response, -1) {
		directives = append(directives, Directive{
			Kind:   KindCreate,
			Fields: parseFields(response[m[2]:m[3]]),
			start:  m[0],
			end:    m[1],
		})
	}

	for _, m := range updatePattern.FindAllStringSubmatchIndex(response, -1) {
		directives = append(directives, Directive{
			Kind:    KindUpdate,
			EventID: response[m[2]:m[3]],
			Fields:  parseFields(response[m[4]:m[5]]),
			start:   m[0],
			end:     m[1],
		})
	}

	sort.Slice(directives, func(i, j int) bool {
		return directives[i].start < directives[j].start
	})

	return directives
}

// parseFields reads the key/value lines of a span body. Keys are matched
// case-insensitively and values keep everything after the first colon,
// so times like "14:00" survive intact.
func parseFields(body string) Fields {
	var fields Fields

	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			fields.Title = value
		case "date":
			fields.Date = value
		case "start":
			fields.StartTime = value
		case "end":
			fields.EndTime = value
		case "location":
			fields.Location = value
		case "description":
			fields.Description = value
		case "attendees":
			for _, email := range strings.Split(value, ",") {
				if email = strings.TrimSpace(email); email != "" {
					fields.Attendees = append(fields.Attendees, email)
				}
			}
		}
	}

	return fields
}
