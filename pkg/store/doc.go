// Package store keeps the client-side state of one paginated resource.
//
// A Store[T] wraps a Source (normally an *api.Resource) and exposes the
// current page as a State[T] snapshot. Refresh loads a page; Create, Update
// and Delete send a form action and reload the current page on success.
// Every failure, whether a transport error, a non-2xx response or an envelope
// whose status is not "OK", ends up as the Err message of the state. Refresh
// never returns an error.
//
// Only the latest refresh affects state. Starting a refresh cancels the one
// in flight, and any completion that is not the latest is discarded. After
// Dispose, completions are dropped and subscribers are no longer called.
package store
