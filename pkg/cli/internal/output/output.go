// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stdout and Stderr are the command output streams.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// JSON writes indented JSON to stdout.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table creates an aligned table writer for stdout.
// Remember to call Flush() when done writing.
func Table() *tabwriter.Writer {
	return tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
}

// Warn prints a warning message to stderr.
func Warn(format string, args ...any) {
	fmt.Fprintf(Stderr, "Warning: "+format+"\n", args...)
}

var titler = cases.Title(language.English)

// Title turns a field key such as "module_id" into "Module Id".
func Title(key string) string {
	return titler.String(strings.ReplaceAll(key, "_", " "))
}

// Header writes a tab-separated, title-cased header row.
func Header(w io.Writer, keys []string) {
	titles := make([]string, len(keys))
	for i, k := range keys {
		titles[i] = strings.ToUpper(Title(k))
	}
	fmt.Fprintln(w, strings.Join(titles, "\t"))
}

// Row writes one tab-separated row.
func Row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
