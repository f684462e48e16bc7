package cli

import (
	"fmt"

	"github.com/akiliapp/lms/pkg/cli/internal/output"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose (progress messages, hints) must go to stderr
// or be omitted entirely. textFn is called only in text mode.
func printResult(data any, textFn func()) error {
	if jsonOutput {
		return output.JSON(data)
	}
	textFn()
	return nil
}

// printList outputs a collection of items. Same contract as printResult;
// textFn typically uses output.Table() for aligned columns.
func printList(data any, textFn func()) error {
	return printResult(data, textFn)
}

// say prints a line of prose in text mode only.
func say(format string, args ...any) {
	if jsonOutput {
		return
	}
	fmt.Fprintf(output.Stdout, format+"\n", args...)
}

// cliNotifier reports store mutations on stdout.
type cliNotifier struct{}

func (cliNotifier) Success(_, text string) {
	say("%s", text)
}

// Failure is silent; the error is returned and printed by Execute.
func (cliNotifier) Failure(string, string) {}
