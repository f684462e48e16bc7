package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/lms"
	"github.com/akiliapp/lms/pkg/logging"
)

// Source is the remote side of a store. *api.Resource satisfies it.
type Source interface {
	List(ctx context.Context, p api.ListParams) (*envelope.Envelope, error)
	Mutate(ctx context.Context, form api.Form) (*envelope.Envelope, error)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	perPage   int
	filters   url.Values
	label     string
	confirmer Confirmer
	notifier  Notifier
	validate  func(any) error
	logger    *slog.Logger
	onSaved   func()
}

// WithPerPage sets the page size requested from the server.
func WithPerPage(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.perPage = n
		}
	}
}

// WithFilters adds server-side query filters to every list call.
func WithFilters(filters url.Values) Option {
	return func(o *options) {
		o.filters = filters
	}
}

// WithLabel names the resource in prompts and notifications.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithConfirmer sets the delete confirmation collaborator. Without one,
// every delete is declined.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) {
		o.confirmer = c
	}
}

// WithNotifier sets the success/failure reporter.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithValidator replaces the field-set validator (lms.Validate by default).
func WithValidator(fn func(any) error) Option {
	return func(o *options) {
		o.validate = fn
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// OnSaved registers a hook run after a successful create or update, before
// the reload.
func OnSaved(fn func()) Option {
	return func(o *options) {
		o.onSaved = fn
	}
}

// Store is the state machine of one paginated resource. It is safe for
// concurrent use.
type Store[T any] struct {
	src  Source
	opts options

	mu       sync.Mutex
	state    State[T]
	seq      uint64
	cancel   context.CancelFunc
	disposed bool
	subs     map[int]func(State[T])
	nextSub  int
}

// New creates an idle store over src.
func New[T any](src Source, opts ...Option) *Store[T] {
	o := options{
		perPage:   envelope.DefaultPerPage,
		label:     "item",
		confirmer: NeverConfirm,
		notifier:  nopNotifier{},
		validate:  lms.Validate,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.confirmer == nil {
		o.confirmer = NeverConfirm
	}
	return &Store[T]{
		src:  src,
		opts: o,
		state: State[T]{
			Items: []T{},
			Page:  1,
			Meta:  envelope.NewPageMeta(o.perPage),
		},
		subs: make(map[int]func(State[T])),
	}
}

// State returns a snapshot of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Pagination returns the navigation view of the current page.
func (s *Store[T]) Pagination() Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PaginationOf(s.state.Meta)
}

// View filters the loaded page. Pagination counters are left untouched.
func (s *Store[T]) View(filter Filter[T]) View[T] {
	st := s.State()
	v := View[T]{Rows: []T{}, PageTotal: len(st.Items), Meta: st.Meta}
	for _, item := range st.Items {
		if filter == nil || filter(item) {
			v.Rows = append(v.Rows, item)
		}
	}
	v.Shown = len(v.Rows)
	return v
}

// Subscribe registers fn to receive every state change. The returned
// function unregisters it.
func (s *Store[T]) Subscribe(fn func(State[T])) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispose cancels any fetch in flight and stops all further state updates.
func (s *Store[T]) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.subs = nil
}

// Refresh loads page (1-based) and returns the resulting state. Failures are
// recorded in the state, never returned.
func (s *Store[T]) Refresh(ctx context.Context, page int) State[T] {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	if s.disposed {
		st := s.state.clone()
		s.mu.Unlock()
		return st
	}
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	s.state.Err = ""
	s.state.Page = page
	s.state.Phase = PhaseLoading
	notify := s.snapshotLocked()
	s.mu.Unlock()
	notify()

	env, err := s.src.List(fetchCtx, api.ListParams{
		Page:    page,
		PerPage: s.opts.perPage,
		Filters: s.opts.filters,
	})
	cancel()
	if err == nil {
		err = env.Err()
	}

	s.mu.Lock()
	if s.disposed || seq != s.seq {
		st := s.state.clone()
		s.mu.Unlock()
		s.opts.logger.Debug("discarding stale fetch", "label", s.opts.label, "page", page, "seq", seq)
		return st
	}
	s.cancel = nil

	if err != nil {
		msg := api.MessageOf(err)
		s.opts.logger.Debug("fetch failed", "label", s.opts.label, "page", page, "error", msg)
		s.state.Items = []T{}
		s.state.Err = msg
		s.state.Phase = PhaseFailed
		// The previous page's counters no longer describe what is shown.
		meta := envelope.NewPageMeta(s.opts.perPage)
		meta.CurrentPage = page
		meta.LastPage = page
		s.state.Meta = meta
	} else {
		s.state.Items = s.decode(env.List())
		s.state.Meta = envelope.ExtractMetaWithDefaults(env.Body(), envelope.Defaults{
			PerPage: s.opts.perPage,
			Page:    page,
		})
		s.state.Phase = PhaseLoaded
	}
	s.state.Loading = false
	st := s.state.clone()
	notify = s.snapshotLocked()
	s.mu.Unlock()
	notify()
	return st
}

// Reload refreshes the current page.
func (s *Store[T]) Reload(ctx context.Context) State[T] {
	return s.Refresh(ctx, s.currentPage())
}

// Create validates fields, sends a save form and reloads the current page.
func (s *Store[T]) Create(ctx context.Context, fields any) error {
	if err := s.check(fields); err != nil {
		return err
	}
	form, err := api.SaveForm(fields)
	if err != nil {
		return err
	}
	return s.mutate(ctx, form, "created")
}

// Update validates fields, sends an update form for id and reloads the
// current page.
func (s *Store[T]) Update(ctx context.Context, id string, fields any) error {
	if err := s.check(fields); err != nil {
		return err
	}
	form, err := api.UpdateForm(id, fields)
	if err != nil {
		return err
	}
	return s.mutate(ctx, form, "updated")
}

// Delete asks for confirmation, then deletes id and reloads the current
// page. label names the entity in the prompt.
func (s *Store[T]) Delete(ctx context.Context, id string, label string) error {
	if label == "" {
		label = id
	}
	ok, err := s.opts.confirmer.Confirm(ctx, Prompt{
		Title:       "Are you sure?",
		Text:        fmt.Sprintf("Delete %s %q? This cannot be undone.", s.opts.label, label),
		Affirmative: "Yes, delete it",
		Negative:    "Cancel",
	})
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return s.mutate(ctx, api.DeleteForm(id), "deleted")
}

func (s *Store[T]) check(fields any) error {
	if s.opts.validate == nil {
		return nil
	}
	if err := s.opts.validate(fields); err != nil {
		verr := &ValidationError{Err: err}
		s.opts.notifier.Failure("Validation error", verr.Error())
		return verr
	}
	return nil
}

func (s *Store[T]) mutate(ctx context.Context, form api.Form, verb string) error {
	s.mu.Lock()
	disposed := s.disposed
	s.mu.Unlock()
	if disposed {
		return ErrDisposed
	}

	env, err := s.src.Mutate(ctx, form)
	if err == nil {
		err = env.Err()
	}
	if err != nil {
		msg := api.MessageOf(err)
		s.mu.Lock()
		notify := func() {}
		if !s.disposed {
			s.state.Err = msg
			notify = s.snapshotLocked()
		}
		s.mu.Unlock()
		notify()
		s.opts.notifier.Failure("Error", msg)
		return err
	}

	title := cases.Title(language.English).String(s.opts.label)
	s.opts.notifier.Success(cases.Title(language.English).String(verb)+"!",
		fmt.Sprintf("%s %s successfully.", title, verb))
	if form.Method() != api.MethodDelete && s.opts.onSaved != nil {
		s.opts.onSaved()
	}
	s.Reload(ctx)
	return nil
}

func (s *Store[T]) currentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Page > 0 {
		return s.state.Page
	}
	return 1
}

// decode converts raw rows to T. Rows that do not decode are skipped.
func (s *Store[T]) decode(raw []any) []T {
	items := make([]T, 0, len(raw))
	for i, row := range raw {
		data, err := json.Marshal(row)
		if err != nil {
			s.opts.logger.Warn("skipping row", "label", s.opts.label, "index", i, "error", err)
			continue
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			s.opts.logger.Warn("skipping row", "label", s.opts.label, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// snapshotLocked captures the subscribers and a state snapshot while s.mu
// is held. The returned function delivers it and must be called after
// unlocking.
func (s *Store[T]) snapshotLocked() func() {
	if s.disposed || len(s.subs) == 0 {
		return func() {}
	}
	snap := s.state.clone()
	subs := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(snap)
		}
	}
}
