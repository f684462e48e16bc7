// Package session is the single source of truth for who is logged in.
//
// A Provider owns the current Session. Only Login and Logout change it; every
// other caller reads a copy through Current or Identity. The Provider is the
// api.IdentitySource handed to api.New, so the bearer token and user id
// follow the session without any global state.
//
// Sessions are persisted by a Store (a 0600 JSON file by default) and
// rehydrated once when the Provider is built.
package session
