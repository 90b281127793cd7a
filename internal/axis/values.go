package axis

import "strings"

// SplitValues splits a raw value list on ';' when present, otherwise on ',', otherwise
// keeps the whole string as one value. Elements are trimmed and empties dropped, so values
// may contain commas as long as the list is semicolon separated.
func SplitValues(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return []string{}
	}

	var parts []string
	switch {
	case strings.Contains(text, ";"):
		parts = strings.Split(text, ";")
	case strings.Contains(text, ","):
		parts = strings.Split(text, ",")
	default:
		parts = []string{text}
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
