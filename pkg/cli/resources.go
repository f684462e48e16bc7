package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/cli/internal/flags"
	"github.com/akiliapp/lms/pkg/cli/internal/output"
	"github.com/akiliapp/lms/pkg/cli/internal/parse"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/lms"
	"github.com/akiliapp/lms/pkg/store"
)

// Command names of the managed resources.
var resourceCommands = map[string]string{
	api.KindModule.Path:           "modules",
	api.KindLearningMaterial.Path: "materials",
	api.KindQuiz.Path:             "quizzes",
	api.KindCertificate.Path:      "certificates",
	api.KindAssignment.Path:       "assignments",
	api.KindUser.Path:             "users",
}

// resourceCommandName maps a kind name to its command, falling back to the
// kind's plural.
func resourceCommandName(kindName string) string {
	if k, ok := api.KindByName(kindName); ok {
		if name, ok := resourceCommands[k.Path]; ok {
			return name
		}
		return strings.ReplaceAll(k.Plural, " ", "-")
	}
	return kindName
}

// Row is one record as returned by the server.
type Row = map[string]any

// ListOutput is the JSON form of '<kind> list'.
type ListOutput struct {
	Kind       string           `json:"kind"`
	Items      []Row            `json:"items"`
	Shown      int              `json:"shown"`
	PageTotal  int              `json:"page_total"`
	Pagination store.Pagination `json:"pagination"`
	Filter     string           `json:"filter,omitempty"`
}

// MutationOutput is the JSON form of create, update and delete.
type MutationOutput struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// trackingSource keeps the last List error so commands can report the
// original error rather than the store's message.
type trackingSource struct {
	store.Source
	lastErr error
}

func (t *trackingSource) List(ctx context.Context, p api.ListParams) (*envelope.Envelope, error) {
	env, err := t.Source.List(ctx, p)
	t.lastErr = err
	if err == nil {
		t.lastErr = env.Err()
	}
	return env, err
}

type listOptions struct {
	page    int
	filters flags.KeyValues
	where   string
	tab     string
}

type mutateOptions struct {
	set  flags.KeyValues
	file string
	yes  bool
}

func init() {
	for _, r := range lms.Resources {
		rootCmd.AddCommand(newResourceCmd(r))
	}
}

func newResourceCmd(r lms.Resource) *cobra.Command {
	name := resourceCommands[r.Kind.Path]
	cmd := &cobra.Command{
		Use:     name,
		Aliases: []string{strings.ReplaceAll(r.Kind.Name, " ", "-")},
		Short:   fmt.Sprintf("List and manage %s", r.Kind.Plural),
	}
	cmd.AddCommand(
		newListCmd(r),
		newGetCmd(r),
		newCreateCmd(r),
		newUpdateCmd(r),
		newDeleteCmd(r),
	)
	if r.Kind == api.KindModule {
		cmd.AddCommand(moduleShowCmd)
	}
	return cmd
}

func newListCmd(r lms.Resource) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s page by page", r.Kind.Plural),
		Example: fmt.Sprintf(`  lmsctl %[1]s list
  lmsctl %[1]s list --page 2 --per-page 10
  lmsctl %[1]s list --filter module_id=3 --where 'id > 10'`, resourceCommands[r.Kind.Path]),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			return runList(cmd.Context(), r, opts)
		},
	}
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to load (1-based)")
	cmd.Flags().Var(&opts.filters, "filter", "Server-side filter key=value (repeatable)")
	cmd.Flags().StringVar(&opts.where, "where", "", "Client-side row expression, e.g. 'type == \"media\"'")
	cmd.Flags().StringVar(&opts.tab, "tab", "", "Progress tab: "+strings.Join(lms.TabNames(), ", "))
	return cmd
}

func runList(ctx context.Context, r lms.Resource, opts listOptions) error {
	pairs, err := parse.Pairs(opts.filters)
	if err != nil {
		return err
	}
	filters := url.Values{}
	for k, v := range pairs {
		filters.Set(k, v)
	}

	filter, err := lms.CompileFilter(opts.where)
	if err != nil {
		return err
	}
	if opts.tab != "" {
		tab, err := lms.TabFilter(opts.tab)
		if err != nil {
			return err
		}
		filter = lms.And(filter, tab)
	}

	src := &trackingSource{Source: deps.client.Resource(r.Kind)}
	s := store.New[Row](src,
		store.WithPerPage(deps.cfg.PerPage),
		store.WithFilters(filters),
		store.WithLabel(r.Kind.Name),
		store.WithLogger(deps.logger),
	)
	defer s.Dispose()

	st := s.Refresh(ctx, opts.page)
	if !st.Failed() {
		// The last page is only known after the first fetch.
		if last := envelope.DisplayLastPage(st.Meta); opts.page > last {
			output.Warn("page %d is past the last page; showing page %d", opts.page, last)
			st = s.Refresh(ctx, last)
		}
	}
	if st.Failed() {
		if src.lastErr != nil {
			return src.lastErr
		}
		return errors.New(st.Err)
	}

	var matchErr error
	view := s.View(func(row Row) bool {
		ok, err := filter.Match(row)
		if err != nil && matchErr == nil {
			matchErr = err
		}
		return ok
	})
	if matchErr != nil {
		return matchErr
	}

	pg := store.PaginationOf(view.Meta)
	out := ListOutput{
		Kind:       r.Kind.Name,
		Items:      view.Rows,
		Shown:      view.Shown,
		PageTotal:  view.PageTotal,
		Pagination: pg,
		Filter:     filter.String(),
	}
	return printList(out, func() {
		if len(view.Rows) == 0 {
			say("No %s found.", r.Kind.Plural)
		} else {
			printRows(r.Columns, view.Rows)
		}
		say("%s", paginationSummary(pg))
		if filter != nil {
			say("%d of %d rows on this page match %s", view.Shown, view.PageTotal, filter.String())
		}
	})
}

// printRows writes rows as an aligned table.
func printRows(columns []string, rows []Row) {
	w := output.Table()
	output.Header(w, columns)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = output.Truncate(cellString(row[col]), 40)
		}
		output.Row(w, cells...)
	}
	_ = w.Flush()
}

func cellString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return envelope.String(v)
}

// paginationSummary renders "Showing 6 to 10 of 23 · page 2 of 5 [1 (2) 3 4 5]".
func paginationSummary(p store.Pagination) string {
	items := make([]string, len(p.Items))
	for i, it := range p.Items {
		if it.Page == p.Page {
			items[i] = "(" + it.String() + ")"
		} else {
			items[i] = it.String()
		}
	}
	return fmt.Sprintf("Showing %d to %d of %d · page %d of %d [%s]",
		p.From, p.To, p.Total, p.Page, p.LastPage, strings.Join(items, " "))
}

func newGetCmd(r lms.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", r.Kind.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireSession(); err != nil {
				return err
			}
			row, err := fetchRecord(cmd.Context(), r.Kind, args[0])
			if err != nil {
				return err
			}
			return printResult(row, func() {
				printRecord(r.Columns, row)
			})
		},
	}
}

// fetchRecord loads one record through iget.
func fetchRecord(ctx context.Context, kind api.Kind, id string) (Row, error) {
	env, err := deps.client.Resource(kind).Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, &notFoundError{kind: kind.Name, id: id}
		}
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	switch p := env.Payload().(type) {
	case map[string]any:
		if len(p) > 0 {
			return p, nil
		}
	case []any:
		if len(p) > 0 {
			if row, ok := p[0].(map[string]any); ok {
				return row, nil
			}
		}
	}
	return nil, &notFoundError{kind: kind.Name, id: id}
}

// printRecord prints the known columns first, then the remaining keys sorted.
func printRecord(columns []string, row Row) {
	w := output.Table()
	seen := map[string]bool{}
	for _, col := range columns {
		seen[col] = true
		if v, ok := row[col]; ok {
			output.Row(w, output.Title(col)+":", cellString(v))
		}
	}
	rest := make([]string, 0, len(row))
	for k := range row {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		output.Row(w, output.Title(k)+":", output.Truncate(cellString(row[k]), 80))
	}
	_ = w.Flush()
}

func newCreateCmd(r lms.Resource) *cobra.Command {
	var opts mutateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s", r.Kind.Name),
		Example: fmt.Sprintf(`  lmsctl %[1]s create --set name=Algebra --set code=MTH101
  lmsctl %[1]s create --file fields.yaml`, resourceCommands[r.Kind.Path]),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			values, err := readFieldValues(opts)
			if err != nil {
				return err
			}
			fields, err := lms.DecodeFields(r.NewCreate, values)
			if err != nil {
				return err
			}
			s := mutationStore(r, false)
			defer s.Dispose()
			if err := s.Create(cmd.Context(), fields); err != nil {
				return err
			}
			return printResult(MutationOutput{Kind: r.Kind.Name, Action: "created"}, func() {})
		},
	}
	addFieldFlags(cmd, &opts)
	return cmd
}

func newUpdateCmd(r lms.Resource) *cobra.Command {
	var opts mutateOptions
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s; unset fields keep their current values", r.Kind.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			id := args[0]
			current, err := fetchRecord(cmd.Context(), r.Kind, id)
			if err != nil {
				return err
			}
			values, err := readFieldValues(opts)
			if err != nil {
				return err
			}
			merged := make(map[string]any, len(current)+len(values))
			for k, v := range current {
				merged[k] = v
			}
			for k, v := range values {
				merged[k] = v
			}
			fields, err := lms.DecodeFields(r.NewUpdate, merged)
			if err != nil {
				return err
			}
			s := mutationStore(r, false)
			defer s.Dispose()
			if err := s.Update(cmd.Context(), id, fields); err != nil {
				return err
			}
			return printResult(MutationOutput{Kind: r.Kind.Name, Action: "updated", ID: id}, func() {})
		},
	}
	addFieldFlags(cmd, &opts)
	return cmd
}

func newDeleteCmd(r lms.Resource) *cobra.Command {
	var opts mutateOptions
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", r.Kind.Name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := requireAdmin(); err != nil {
				return err
			}
			id := args[0]
			s := mutationStore(r, opts.yes)
			defer s.Dispose()
			if err := s.Delete(cmd.Context(), id, id); err != nil {
				return err
			}
			return printResult(MutationOutput{Kind: r.Kind.Name, Action: "deleted", ID: id}, func() {})
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func mutationStore(r lms.Resource, yes bool) *store.Store[Row] {
	return store.New[Row](deps.client.Resource(r.Kind),
		store.WithPerPage(deps.cfg.PerPage),
		store.WithLabel(r.Kind.Name),
		store.WithConfirmer(confirmer(yes)),
		store.WithNotifier(cliNotifier{}),
		store.WithLogger(deps.logger),
	)
}

func addFieldFlags(cmd *cobra.Command, opts *mutateOptions) {
	cmd.Flags().Var(&opts.set, "set", "Field value key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML file with the field values")
}

// readFieldValues merges --file and --set. Values that look like YAML flow
// collections ("[...]" or "{...}") are decoded; others stay strings.
func readFieldValues(opts mutateOptions) (map[string]any, error) {
	values := map[string]any{}
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", opts.file, err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", opts.file, err)
		}
		if values == nil {
			values = map[string]any{}
		}
	}
	pairs, err := parse.Pairs(opts.set)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
			var decoded any
			if err := yaml.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", k, err)
			}
			values[k] = decoded
			continue
		}
		values[k] = v
	}
	if len(values) == 0 {
		return nil, errors.New("no fields given (use --set key=value or --file)")
	}
	return values, nil
}
