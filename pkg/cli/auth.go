package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/cli/internal/output"
	"github.com/akiliapp/lms/pkg/lms"
	"github.com/akiliapp/lms/pkg/session"
)

var (
	loginEmail    string
	loginPassword string
	loginRole     string

	registerName     string
	registerEmail    string
	registerPassword string
	registerPhone    string
)

// SessionOutput is the JSON form of the signed-in user. The token is never
// printed.
type SessionOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Expired   bool   `json:"expired"`
}

func sessionOutput(s *session.Session) SessionOutput {
	out := SessionOutput{
		ID:    s.ID,
		Name:  s.Name,
		Email: s.Email,
		Role:  string(s.Role),
	}
	if exp := s.ExpiresAt(); !exp.IsZero() {
		out.ExpiresAt = exp.UTC().Format(time.RFC3339)
		out.Expired = s.Expired(timeNow())
	}
	return out
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Example: `  lmsctl login --email amina@example.com --password secret
  lmsctl login            # prompts on a terminal`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" || loginPassword == "" {
			if err := promptCredentials(cmd.Context(), &loginEmail, &loginPassword); err != nil {
				if errors.Is(err, ErrNoTerminal) {
					return errors.New("--email and --password are required when not running in a terminal")
				}
				return err
			}
		}

		s, err := deps.sessions.Login(cmd.Context(), api.Credentials{
			Email:    loginEmail,
			Password: loginPassword,
			UserRole: loginRole,
		})
		if err != nil {
			return err
		}

		return printResult(sessionOutput(s), func() {
			say("Logged in as %s <%s> (%s)", s.Name, s.Email, s.Role)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		had := deps.sessions.Current() != nil
		if err := deps.sessions.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return printResult(map[string]bool{"logged_out": had}, func() {
			if had {
				say("Logged out.")
			} else {
				say("Not logged in.")
			}
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		out := sessionOutput(s)
		return printResult(out, func() {
			w := output.Table()
			output.Row(w, "ID:", out.ID)
			output.Row(w, "Name:", out.Name)
			output.Row(w, "Email:", out.Email)
			output.Row(w, "Role:", out.Role)
			if out.ExpiresAt != "" {
				state := "valid"
				if out.Expired {
					state = "expired"
				}
				output.Row(w, "Token:", fmt.Sprintf("%s until %s", state, out.ExpiresAt))
			}
			_ = w.Flush()
		})
	},
}

var registerCmd = &cobra.Command{
	Use:     "register",
	Short:   "Create a learner account",
	Example: `  lmsctl register --name "Amina Juma" --email amina@example.com --password secret1`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := &lms.RegisterFields{
			Name:     registerName,
			Email:    registerEmail,
			Password: registerPassword,
			Phone:    registerPhone,
		}
		if err := lms.Validate(fields); err != nil {
			return err
		}

		env, err := deps.client.Register(cmd.Context(), fields)
		if err != nil {
			return err
		}
		if err := env.Err(); err != nil {
			return err
		}

		return printResult(map[string]string{"email": fields.Email, "status": "registered"}, func() {
			say("Registered %s. You can now run 'lmsctl login'.", fields.Email)
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().StringVar(&loginRole, "role", "", "Role to report when the server omits it (User or Admin)")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (at least 6 characters)")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd)
}
