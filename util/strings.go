package util

import "strings"

// SplitAndTrim splits s on sep and trims whitespace from every element.
// Empty elements are dropped; an empty or blank s yields nil.
func SplitAndTrim(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
