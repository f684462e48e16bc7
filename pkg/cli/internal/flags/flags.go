// Package flags provides reusable flag types for CLI commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/akiliapp/lms/pkg/cli/internal/parse"
)

// KeyValues is a repeatable key=value flag (--set, --filter, --answer).
// Malformed pairs are rejected while the command line is parsed, and the
// order of the pairs is kept.
type KeyValues []string

func (s *KeyValues) String() string {
	return strings.Join(*s, ",")
}

func (s *KeyValues) Set(value string) error {
	key, _, ok := parse.KeyValue(value, '=')
	if !ok || key == "" {
		return fmt.Errorf("%q is not key=value", value)
	}
	*s = append(*s, value)
	return nil
}

func (s *KeyValues) Type() string {
	return "key=value"
}
