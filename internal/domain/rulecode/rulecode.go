// Package rulecode renders the canonical full code of a rule and the
// search projection stored alongside it.
package rulecode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	FirstRevision = "a"

	// DescriptionLimit is the rune length of a truncated description before the ellipsis.
	DescriptionLimit = 100
	ellipsis         = "..."
)

// Render builds "L.N", "L.N.S", and appends the revision letter unless it
// is the first revision: Render("C", 7, nil, "b") == "C.7b".
func Render(letter string, ruleNumber int, subNumber *int, revision string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(letter)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(ruleNumber))
	if subNumber != nil {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(*subNumber))
	}
	rev := strings.ToLower(strings.TrimSpace(revision))
	if rev != "" && rev != FirstRevision {
		b.WriteString(rev)
	}
	return b.String()
}

// ValidLetter reports whether s is a single upper-case A–Z letter.
func ValidLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// ValidRevision reports whether s is a single lower-case a–z letter.
func ValidRevision(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}

// Truncate collapses whitespace runs (newlines included) to single spaces and
// cuts to DescriptionLimit runes, appending "..." when anything was cut.
func Truncate(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(collapsed) <= DescriptionLimit {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimRight(string(runes[:DescriptionLimit]), " ") + ellipsis
}

// Searchable is the lower-cased title + " " + content used for search.
func Searchable(title, content string) string {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return strings.ToLower(content)
	}
	return strings.ToLower(title + " " + content)
}

// Projection is the derived row stored for a rule.
type Projection struct {
	FullCode             string
	SearchableContent    string
	TruncatedDescription string
}

// Project computes the full projection for a numbered rule.
func Project(letter string, ruleNumber int, subNumber *int, revision, title, content string) (Projection, error) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	if !ValidLetter(l) {
		return Projection{}, fmt.Errorf("invalid category letter %q", letter)
	}
	if ruleNumber <= 0 {
		return Projection{}, fmt.Errorf("invalid rule number %d", ruleNumber)
	}
	if subNumber != nil && *subNumber <= 0 {
		return Projection{}, fmt.Errorf("invalid sub number %d", *subNumber)
	}
	return Projection{
		FullCode:             Render(l, ruleNumber, subNumber, revision),
		SearchableContent:    Searchable(title, content),
		TruncatedDescription: Truncate(content),
	}, nil
}
