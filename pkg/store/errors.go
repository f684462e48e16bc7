package store

import (
	"context"
	"errors"
)

var (
	// ErrDeclined is returned by Delete when the user does not confirm.
	ErrDeclined = errors.New("deletion cancelled")

	// ErrDisposed is returned by mutations on a disposed store.
	ErrDisposed = errors.New("store disposed")
)

// ValidationError is a field set rejected before any request was sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Prompt is a destructive-action confirmation request.
type Prompt struct {
	Title       string
	Text        string
	Affirmative string
	Negative    string
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// AlwaysConfirm confirms every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

// NeverConfirm declines every prompt.
var NeverConfirm = ConfirmFunc(func(context.Context, Prompt) (bool, error) { return false, nil })

// Notifier reports the outcome of a mutation to the user.
type Notifier interface {
	Success(title, text string)
	Failure(title, text string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string, string) {}
func (nopNotifier) Failure(string, string) {}
