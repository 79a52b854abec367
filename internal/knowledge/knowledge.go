// Package knowledge answers free-text guidance questions from a fixed
// keyword table.
//
// Matching is deterministic: an exact substring pass over the keywords in
// table order, then a per-token fuzzy pass using Jaro-Winkler similarity,
// then a fixed fallback. There is no language understanding involved.
package knowledge

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// SimilarityThreshold is the minimum Jaro-Winkler similarity for a fuzzy
// token match.
const SimilarityThreshold = 0.80

// FallbackResponse is returned when nothing matches.
const FallbackResponse = "I don't have specific information on that topic. Please ask about biosafety guidelines, ethics requirements, or approval processes for more targeted assistance."

// Entry pairs a keyword phrase with its response.
type Entry struct {
	Keyword  string `yaml:"keyword" json:"keyword"`
	Response string `yaml:"response" json:"response"`
}

// Base is an ordered, read-only keyword table. Earlier entries win ties.
type Base struct {
	entries []Entry
}

// NewBase builds a table from entries in order. Keywords are normalised the
// same way queries are; entries with an empty keyword or response are
// rejected.
func NewBase(entries []Entry) (*Base, error) {
	b := &Base{entries: make([]Entry, 0, len(entries))}
	for i, e := range entries {
		kw := strings.Join(strings.Fields(Normalize(e.Keyword)), " ")
		if kw == "" {
			return nil, fmt.Errorf("knowledge: entry %d: empty keyword", i)
		}
		if strings.TrimSpace(e.Response) == "" {
			return nil, fmt.Errorf("knowledge: entry %d (%q): empty response", i, kw)
		}
		b.entries = append(b.entries, Entry{Keyword: kw, Response: e.Response})
	}
	return b, nil
}

// LoadBase reads an ordered YAML list of {keyword, response} entries.
func LoadBase(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("knowledge: parse %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("knowledge: %s has no entries", path)
	}
	return NewBase(entries)
}

// Entries returns a copy of the table.
func (b *Base) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Normalize lowercases s and drops every rune that is neither a word
// character (letter, digit, underscore) nor whitespace.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', unicode.IsSpace(r):
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

// Respond returns the response for query. It never returns an empty string.
func (b *Base) Respond(query string) string {
	if e, ok := b.Match(query); ok {
		return e.Response
	}
	return FallbackResponse
}

// Match resolves query to an entry: the first keyword in table order that
// occurs in the normalised query, otherwise the first query token whose
// closest keyword of comparable length reaches SimilarityThreshold.
func (b *Base) Match(query string) (Entry, bool) {
	q := Normalize(query)
	for _, e := range b.entries {
		if strings.Contains(q, e.Keyword) {
			return e, true
		}
	}
	for _, tok := range strings.Fields(q) {
		best, score := -1, 0.0
		for i, e := range b.entries {
			if !comparableLength(tok, e.Keyword) {
				continue
			}
			if s := Similarity(tok, e.Keyword); s > score {
				best, score = i, s
			}
		}
		if best >= 0 && score >= SimilarityThreshold {
			return b.entries[best], true
		}
	}
	return Entry{}, false
}

// comparableLength reports whether a and b differ in length by at most a
// quarter of the longer one. The Winkler prefix bonus otherwise lets a short
// token such as "ge" reach the threshold against a longer keyword.
func comparableLength(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return 4*diff <= max(la, lb)
}
