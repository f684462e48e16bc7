package api

import (
	"context"
	"net/url"

	"github.com/akiliapp/lms/pkg/envelope"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserRole string `json:"user_role,omitempty"`
}

// Login exchanges credentials for a session envelope. No identity is attached.
func (c *Client) Login(ctx context.Context, cr Credentials) (*envelope.Envelope, error) {
	return c.post(anonymous(ctx), "/auth/login", nil, cr)
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	env, err := c.get(ctx, "/auth/logout", nil)
	if err != nil {
		return err
	}
	if env.Status() != "" && !env.OK() {
		return env.Err()
	}
	return nil
}

// Register creates an account. It is sent without identity.
func (c *Client) Register(ctx context.Context, fields any) (*envelope.Envelope, error) {
	form, err := toForm(fields)
	if err != nil {
		return nil, err
	}
	return c.post(anonymous(ctx), "/users/register", nil, form)
}

// Profile fetches the current user's record.
func (c *Client) Profile(ctx context.Context) (*envelope.Envelope, error) {
	return c.get(ctx, KindUser.Path+"/iget", nil)
}

// QuizResults fetches the current user's quiz results for a module.
func (c *Client) QuizResults(ctx context.Context, moduleID string) (*envelope.Envelope, error) {
	q := url.Values{}
	if moduleID != "" {
		q.Set("module_id", moduleID)
	}
	return c.get(ctx, KindQuizAnswer.Path+"/iresults", q)
}
