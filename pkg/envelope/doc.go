// Package envelope normalizes the loosely-shaped JSON envelopes returned by
// the LMS backend.
//
// Every response carries a top-level "status" field ("OK" on success), an
// optional "errorMessage" (a string or an array of strings) and, on success,
// a "returnData" payload. Where the list of entities and the pagination
// metadata live inside that payload differs between endpoints. This package
// isolates all of that probing behind two pure functions:
//
//	items := envelope.ExtractList(body)
//	meta := envelope.ExtractMeta(body, perPage)
//
// Neither function ever fails: malformed input degrades to an empty list and
// default pagination values.
//
// # Probe order
//
// The order in which candidate locations are tried is a versioned contract,
// see ListProbeOrder and MetaProbeOrder. Call sites must not probe envelope
// shapes themselves.
//
// # Rendering helpers
//
// Range, DisplayLastPage and PageItems compute what a pager shows for a
// PageMeta: the "Showing from–to of total" range and the page buttons with
// ellipsis markers.
package envelope
