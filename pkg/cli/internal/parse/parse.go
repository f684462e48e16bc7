// Package parse provides string parsing utilities for CLI commands.
package parse

import (
	"fmt"
	"strings"
)

// KeyValue parses a "key=value" or "key:value" string.
// If delimiters are provided, uses the first one found; otherwise defaults to '='.
// Returns the key, value, and a boolean indicating success.
func KeyValue(s string, delimiters ...rune) (key, value string, ok bool) {
	if len(delimiters) == 0 {
		delimiters = []rune{'='}
	}

	for i, c := range s {
		for _, d := range delimiters {
			if c == d {
				return strings.TrimSpace(s[:i]), s[i+1:], true
			}
		}
	}
	return "", "", false
}

// Pairs parses repeated "key=value" flags in order. A key given twice keeps
// its last value.
func Pairs(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := KeyValue(v, '=')
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q (want key=value)", v)
		}
		out[key] = value
	}
	return out, nil
}
