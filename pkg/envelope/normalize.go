package envelope

import "math"

// DefaultPerPage is used when neither the server nor the caller supply a
// positive page size.
const DefaultPerPage = 5

// ListProbeOrder is the ordered list of locations where ExtractList looks for
// the entity list. The first location holding an array wins.
var ListProbeOrder = []string{
	"$.returnData.list_of_item",
	"$.returnData",
	"$.returnData.list_of_item.data",
	"$.returnData.data",
}

// MetaProbeOrder is the ordered list of locations where ExtractMeta looks for
// the pagination object. The first location holding an object wins.
var MetaProbeOrder = []string{
	"$.returnData.list_of_item.meta",
	"$.returnData.meta",
	"$.returnData.pagination",
	"$.pagination",
	"$.returnData.list_of_item",
	"$.returnData",
	"$",
}

// metaScopes are the ancestors consulted after the chosen meta object,
// nearest first.
var metaScopes = []string{
	"$.returnData.list_of_item",
	"$.returnData",
	"$",
}

// Field names probed for each pagination value, in order.
var (
	TotalKeys       = []string{"total", "totalCount", "total_count", "totalRecords", "count"}
	PerPageKeys     = []string{"per_page", "perPage"}
	CurrentPageKeys = []string{"current_page", "currentPage"}
	LastPageKeys    = []string{"last_page", "lastPage"}
)

// PageMeta is the canonical pagination metadata.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

// NewPageMeta returns the metadata of an empty first page.
func NewPageMeta(perPage int) PageMeta {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return PageMeta{CurrentPage: 1, LastPage: 1, Total: 0, PerPage: perPage}
}

// Defaults are the fallbacks ExtractMetaWithDefaults uses for values the
// server omits.
type Defaults struct {
	PerPage int
	Page    int
}

// ExtractList returns the entity list of a success envelope. It returns an
// empty, non-nil slice when the envelope has no returnData or no list could
// be located.
func ExtractList(body any) []any {
	if Lookup(body, "$.returnData") == nil {
		return []any{}
	}
	for _, path := range ListProbeOrder {
		if list, ok := Lookup(body, path).([]any); ok {
			return list
		}
	}
	return []any{}
}

// ExtractMeta returns the pagination metadata of an envelope, falling back
// to requestedPerPage for the page size and to 1 for the current page.
func ExtractMeta(body any, requestedPerPage int) PageMeta {
	return ExtractMetaWithDefaults(body, Defaults{PerPage: requestedPerPage, Page: 1})
}

// ExtractMetaWithDefaults is ExtractMeta with an explicit fallback page.
func ExtractMetaWithDefaults(body any, def Defaults) PageMeta {
	if def.PerPage <= 0 {
		def.PerPage = DefaultPerPage
	}
	if def.Page <= 0 {
		def.Page = 1
	}

	scopes := make([]map[string]any, 0, len(metaScopes)+1)
	for _, path := range MetaProbeOrder {
		if m, ok := LookupObject(body, path); ok {
			scopes = append(scopes, m)
			break
		}
	}
	for _, path := range metaScopes {
		if m, ok := LookupObject(body, path); ok {
			scopes = append(scopes, m)
		}
	}

	meta := PageMeta{
		Total:       0,
		PerPage:     def.PerPage,
		CurrentPage: def.Page,
	}
	if total, ok := probeInt(scopes, TotalKeys); ok && total > 0 {
		meta.Total = total
	}
	if per, ok := probeInt(scopes, PerPageKeys); ok && per > 0 {
		meta.PerPage = per
	}
	if cur, ok := probeInt(scopes, CurrentPageKeys); ok {
		meta.CurrentPage = cur
	}
	if meta.CurrentPage < 1 {
		meta.CurrentPage = 1
	}

	if last, ok := probeInt(scopes, LastPageKeys); ok {
		meta.LastPage = last
	} else {
		meta.LastPage = derivedLastPage(meta.Total, meta.PerPage)
	}
	if meta.LastPage < 1 {
		meta.LastPage = 1
	}
	return meta
}

// probeInt returns the first coercible value of keys, scanning scopes
// nearest first.
func probeInt(scopes []map[string]any, keys []string) (int, bool) {
	for _, scope := range scopes {
		for _, k := range keys {
			v, present := scope[k]
			if !present {
				continue
			}
			if n, ok := Int(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// derivedLastPage is max(1, ceil(total/perPage)), or 1 when perPage <= 0.
func derivedLastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(float64(total)/float64(perPage))))
}
