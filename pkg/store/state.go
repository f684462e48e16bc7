package store

import (
	"github.com/akiliapp/lms/pkg/envelope"
)

// Phase is the lifecycle position of a store.
type Phase int

// Phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of a store.
type State[T any] struct {
	// Items holds the rows of the last successful fetch. A failed fetch
	// empties it.
	Items   []T
	Loading bool
	// Err is the last error message, or "".
	Err   string
	Page  int
	Meta  envelope.PageMeta
	Phase Phase
}

// Failed reports whether the state carries an error.
func (s State[T]) Failed() bool {
	return s.Err != ""
}

func (s State[T]) clone() State[T] {
	out := s
	out.Items = append(make([]T, 0, len(s.Items)), s.Items...)
	return out
}

// Pagination is the page-navigation view of a state.
type Pagination struct {
	Page     int                 `json:"page"`
	From     int                 `json:"from"`
	To       int                 `json:"to"`
	LastPage int                 `json:"last_page"`
	Total    int                 `json:"total"`
	PerPage  int                 `json:"per_page"`
	HasPrev  bool                `json:"has_prev"`
	HasNext  bool                `json:"has_next"`
	Items    []envelope.PageItem `json:"items"`
}

// PaginationOf derives the navigation view from page metadata.
func PaginationOf(meta envelope.PageMeta) Pagination {
	last := envelope.DisplayLastPage(meta)
	from, to := envelope.Range(meta)
	cur := meta.CurrentPage
	if cur < 1 {
		cur = 1
	}
	return Pagination{
		Page:     cur,
		From:     from,
		To:       to,
		LastPage: last,
		Total:    meta.Total,
		PerPage:  meta.PerPage,
		HasPrev:  cur > 1,
		HasNext:  cur < last,
		Items:    envelope.PageItems(cur, last),
	}
}

// Filter selects rows of a loaded page.
type Filter[T any] func(T) bool

// View is a filtered view of the loaded page. Meta still describes the
// unfiltered server page; Shown counts only the filtered rows.
type View[T any] struct {
	Rows      []T
	Shown     int
	PageTotal int
	Meta      envelope.PageMeta
}
