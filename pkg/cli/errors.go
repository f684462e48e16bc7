package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/session"
	"github.com/akiliapp/lms/pkg/store"
)

// Common CLI errors
var (
	ErrAdminRequired = errors.New("this command requires an Admin account")
	ErrNoTerminal    = errors.New("no terminal available for interactive input")
)

var timeNow = time.Now

// FormatConnectionError returns a user-friendly message for errors talking
// to the backend.
func FormatConnectionError(err error) string {
	if api.IsConnectionError(err) {
		return fmt.Sprintf(`Error: %s

Suggestions:
  • Check your network connection
  • Verify the API URL with: lmsctl config
  • Override it with --base-url or LMS_BASE_URL`, api.MessageOf(err))
	}
	return "Error: " + api.MessageOf(err)
}

// FormatNotFoundError returns a user-friendly error message for not found errors.
func FormatNotFoundError(resourceType, id string) string {
	return fmt.Sprintf(`Error: %s not found: %s

Suggestions:
  • Check the ID with: lmsctl %s list`, resourceType, id, resourceCommandName(resourceType))
}

// formatError renders any command error for stderr.
func formatError(err error) string {
	switch {
	case api.IsConnectionError(err):
		return FormatConnectionError(err)
	case errors.Is(err, session.ErrNoSession):
		return "Error: not logged in\n\nRun 'lmsctl login' first."
	case errors.Is(err, api.ErrUnauthorized):
		return "Error: " + api.MessageOf(err) + "\n\nYour session is no longer valid. Run 'lmsctl login' again."
	case errors.Is(err, store.ErrDeclined):
		return "Aborted: deletion not confirmed (use --yes to skip the prompt)."
	}
	var notFound *notFoundError
	if errors.As(err, &notFound) {
		return FormatNotFoundError(notFound.kind, notFound.id)
	}
	var loginErr *session.LoginError
	if errors.As(err, &loginErr) {
		return "Error: login failed: " + loginErr.Message
	}
	return FormatConnectionError(err)
}

// isNotFound reports whether err is a 404 from the backend.
func isNotFound(err error) bool {
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type notFoundError struct {
	kind string
	id   string
}

func (e *notFoundError) Error() string {
	return e.kind + " not found: " + e.id
}
