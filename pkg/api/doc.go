// Package api is the HTTP client for the LMS backend.
//
// One Client is shared by every resource kind. It injects the caller's
// identity into each outgoing request (an "Authorization: Bearer" header and
// a user_id query parameter) through an http.RoundTripper, so callers never
// handle tokens directly.
//
// Each resource kind (modules, learning materials, quizzes, certificates,
// assignments, users, ...) exposes the same three operations:
//
//	List    GET  {path}/ilist        paginated listing, always paginate=true
//	Get     GET  {path}/iget?id=     single entity
//	Mutate  POST {path}/iformAction  save / update / delete, chosen by form_method
//
// Responses are returned as *envelope.Envelope. A 2xx response whose status is
// not "OK" is still returned without error; use Envelope.Err to inspect it.
// Transport failures and non-2xx responses are returned as *APIError. The
// client never retries.
package api
