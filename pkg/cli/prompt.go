package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/akiliapp/lms/pkg/store"
)

// isTerminal reports whether stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// confirmer returns the delete confirmation collaborator: --yes confirms,
// a terminal asks, anything else declines.
func confirmer(yes bool) store.Confirmer {
	if yes {
		return store.AlwaysConfirm
	}
	if !isTerminal() {
		return store.NeverConfirm
	}
	return store.ConfirmFunc(func(ctx context.Context, p store.Prompt) (bool, error) {
		var ok bool
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(p.Title).
				Description(p.Text).
				Affirmative(p.Affirmative).
				Negative(p.Negative).
				Value(&ok),
		)).RunWithContext(ctx)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, err
		}
		return ok, nil
	})
}

// promptCredentials asks for the missing login fields.
func promptCredentials(ctx context.Context, email, password *string) error {
	if !isTerminal() {
		return ErrNoTerminal
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(email).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)
	return form.RunWithContext(ctx)
}
