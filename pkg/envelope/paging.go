package envelope

import (
	"math"
	"strconv"
)

// DisplayLastPage is the last page a pager should offer. It tolerates
// servers that under-report last_page by taking the larger of the reported
// value and ceil(total/perPage), both computed from server values.
func DisplayLastPage(m PageMeta) int {
	last := m.LastPage
	if last < 1 {
		last = 1
	}
	if m.PerPage > 0 && m.Total > 0 {
		if derived := int(math.Ceil(float64(m.Total) / float64(m.PerPage))); derived > last {
			last = derived
		}
	}
	return last
}

// Range returns the 1-based, inclusive index range of the rows on the
// current page. Both ends are 0 when the result set is empty or the page
// lies past the last row.
func Range(m PageMeta) (from, to int) {
	if m.Total <= 0 || m.PerPage <= 0 {
		return 0, 0
	}
	cur := m.CurrentPage
	if cur < 1 {
		cur = 1
	}
	from = (cur-1)*m.PerPage + 1
	if from > m.Total {
		return 0, 0
	}
	to = cur * m.PerPage
	if to > m.Total {
		to = m.Total
	}
	return from, to
}

// PageItem is one pager entry: a page number or an ellipsis.
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "…"
	}
	return strconv.Itoa(p.Page)
}

// PageItems lays out pager buttons around current. With five pages or
// fewer every page is listed; otherwise the first and last pages stay
// visible and gaps collapse into ellipses:
//
//	1 2 3 … 20        (near the start)
//	1 … 9 10 11 … 20  (in the middle)
//	1 … 18 19 20      (near the end)
func PageItems(current, last int) []PageItem {
	if last <= 0 {
		return nil
	}
	if last <= 5 {
		items := make([]PageItem, 0, last)
		for p := 1; p <= last; p++ {
			items = append(items, PageItem{Page: p})
		}
		return items
	}

	gap := PageItem{Ellipsis: true}
	var items []PageItem
	switch {
	case current >= last-2 && current > 3:
		items = append(items, PageItem{Page: 1}, gap)
		for p := max(1, last-2); p <= last; p++ {
			items = append(items, PageItem{Page: p})
		}
	case current <= 3:
		for p := 1; p <= 3; p++ {
			items = append(items, PageItem{Page: p})
		}
		items = append(items, gap, PageItem{Page: last})
	default:
		items = append(items,
			PageItem{Page: 1}, gap,
			PageItem{Page: current - 1}, PageItem{Page: current}, PageItem{Page: current + 1},
			gap, PageItem{Page: last},
		)
	}
	return dedupePages(items)
}

func dedupePages(items []PageItem) []PageItem {
	seen := make(map[int]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if !it.Ellipsis {
			if seen[it.Page] {
				continue
			}
			seen[it.Page] = true
		}
		out = append(out, it)
	}
	return out
}
