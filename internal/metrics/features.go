package metrics

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Features are size counts of a piece of text. They stand in for the text in
// telemetry so that user input never reaches the event log.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures computes byte, rune, word, and line counts for s.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: countLines(s),
	}
}

// 0 for "", else one more than the number of newlines.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

// ArgFields reports how many top-level keys a tool call's argument document
// carries. Empty arguments count as an empty object; anything that is not a
// JSON object yields -1.
func ArgFields(raw string) int {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return -1
	}
	return len(obj)
}
