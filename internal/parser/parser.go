// Package parser extracts word/meaning pairs from plain bulk-import text.
package parser

import (
	"bufio"
	"io"
	"strings"
)

// Entry is one word/meaning pair parsed from an input line.
type Entry struct {
	Word    string
	Meaning string
}

// Parse reads bulk-import text and extracts entries. Each line is split on
// commas, semicolons and tabs; the first token is the word and the
// remaining tokens, rejoined with ", ", form the meaning. Lines that do not
// yield both a word and a meaning are silently skipped.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry

	for scanner.Scan() {
		if e, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseString is a convenience wrapper for pasted content.
func ParseString(s string) []Entry {
	entries, _ := Parse(strings.NewReader(s))
	return entries
}

func parseLine(line string) (Entry, bool) {
	normalized := strings.NewReplacer(";", ",", "\t", ",").Replace(line)
	parts := strings.Split(normalized, ",")
	if len(parts) < 2 {
		return Entry{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	word := parts[0]
	meaning := strings.Join(parts[1:], ", ")
	if word == "" || meaning == "" {
		return Entry{}, false
	}
	return Entry{Word: word, Meaning: meaning}, true
}
