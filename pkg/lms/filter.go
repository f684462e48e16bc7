package lms

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/akiliapp/lms/pkg/envelope"
)

// Tab names shared by the progress views.
const (
	TabAll     = "all"
	TabActive  = "active"
	TabExpired = "expired"
)

var tabExprs = map[string]string{
	TabAll:     "",
	TabActive:  "num(progress) < 100",
	TabExpired: "num(progress) >= 100",
}

// num coerces a row value to a number. Missing or non-numeric values
// count as 0, so a row without progress is active.
var num = expr.Function("num", func(params ...any) (any, error) {
	f, _ := envelope.Number(params[0])
	return f, nil
}, new(func(any) float64))

// TabNames returns the known tab names, sorted.
func TabNames() []string {
	names := make([]string, 0, len(tabExprs))
	for name := range tabExprs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter is a compiled row predicate over a record's JSON fields.
// A nil *Filter matches everything.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a boolean expression such as `num(progress) < 100`
// or `type == "media"`. Unknown fields evaluate to nil, and num(x) reads x
// as a number (numeric strings included, anything else 0). An empty source
// yields a nil filter.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables(), num)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// TabFilter returns the filter for a named tab.
func TabFilter(tab string) (*Filter, error) {
	source, ok := tabExprs[tab]
	if !ok {
		return nil, fmt.Errorf("unknown tab %q (want one of %v)", tab, TabNames())
	}
	return CompileFilter(source)
}

// String returns the filter source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter against a record. Records are compared by their
// JSON field names.
func (f *Filter) Match(record any) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, ToMap(record))
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// And combines filters; nil filters are skipped.
func And(filters ...*Filter) *Filter {
	var kept []*Filter
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	source := ""
	for i, f := range kept {
		if i > 0 {
			source += " && "
		}
		source += "(" + f.source + ")"
	}
	combined, err := CompileFilter(source)
	if err != nil {
		return kept[0]
	}
	return combined
}
