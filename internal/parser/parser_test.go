package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"hola,hello",
		"adiós; goodbye",
		"gato\tcat",
		"echar de menos, to miss, to long for",
		"just-one-token",
		"",
		" , leading empty word",
	}, "\n")

	entries, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := []Entry{
		{Word: "hola", Meaning: "hello"},
		{Word: "adiós", Meaning: "goodbye"},
		{Word: "gato", Meaning: "cat"},
		{Word: "echar de menos", Meaning: "to miss, to long for"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, e, want[i])
		}
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Entry
		ok   bool
	}{
		{"comma separated", "uno, one", Entry{"uno", "one"}, true},
		{"semicolon separated", "dos;two", Entry{"dos", "two"}, true},
		{"tab separated", "tres\tthree", Entry{"tres", "three"}, true},
		{"multi-part meaning rejoined", "ser,to be,to exist", Entry{"ser", "to be, to exist"}, true},
		{"mixed separators", "ir;to go\tto walk", Entry{"ir", "to go, to walk"}, true},
		{"single token skipped", "solo", Entry{}, false},
		{"empty meaning skipped", "palabra,", Entry{}, false},
		{"empty word skipped", ",meaning", Entry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLine(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseLine(%q) = %+v, %v; want %+v, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseString(t *testing.T) {
	entries := ParseString("uno,one\r\ndos,two")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Word != "dos" {
		t.Errorf("expected second word %q, got %q", "dos", entries[1].Word)
	}
}
