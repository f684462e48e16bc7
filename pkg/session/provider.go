package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/logging"
)

// Authenticator is the remote side of login and logout. *api.Client
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, cr api.Credentials) (*envelope.Envelope, error)
	Logout(ctx context.Context) error
}

// LoginError is a failed login, carrying the message shown to the user.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgressCache attaches the per-user progress cache cleared on logout.
func WithProgressCache(c *ProgressCache) Option {
	return func(p *Provider) {
		p.progress = c
	}
}

// Provider owns the current session.
type Provider struct {
	store    Store
	auth     Authenticator
	logger   *slog.Logger
	progress *ProgressCache

	current atomic.Pointer[Session]
	writeMu sync.Mutex
}

// NewProvider builds a provider and rehydrates the stored session once.
// A corrupt stored session is discarded.
func NewProvider(store Store, auth Authenticator, opts ...Option) (*Provider, error) {
	if store == nil {
		store = NewMemoryStore(nil)
	}
	p := &Provider{
		store:  store,
		auth:   auth,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	s, err := store.Load()
	if err != nil {
		var corrupt *CorruptError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		p.logger.Warn("discarding unreadable session", "path", corrupt.Path, "error", corrupt.Err)
		if err := store.Clear(); err != nil {
			return nil, err
		}
		s = nil
	}
	if s.valid() {
		p.current.Store(s)
	}
	return p, nil
}

// SetAuthenticator replaces the remote authenticator. The provider is often
// built before the client that depends on it.
func (p *Provider) SetAuthenticator(auth Authenticator) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.auth = auth
}

// Current returns a copy of the current session, or nil.
func (p *Provider) Current() *Session {
	return p.current.Load().Clone()
}

// Require returns the current session or ErrNoSession.
func (p *Provider) Require() (*Session, error) {
	s := p.Current()
	if s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}

// Identity implements api.IdentitySource.
func (p *Provider) Identity() (token, userID string) {
	s := p.current.Load()
	if s == nil {
		return "", ""
	}
	return s.AccessToken, s.ID
}

// Login authenticates and persists the new session. Failures are returned
// as *LoginError.
func (p *Provider) Login(ctx context.Context, cr api.Credentials) (*Session, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if p.auth == nil {
		return nil, errors.New("no authenticator configured")
	}
	if cr.Email == "" || cr.Password == "" {
		return nil, &LoginError{Message: "email and password are required"}
	}

	env, err := p.auth.Login(ctx, cr)
	if err != nil {
		return nil, &LoginError{Message: api.MessageOf(err), Err: err}
	}
	if !env.OK() {
		rejected := env.Err()
		return nil, &LoginError{Message: rejected.Error(), Err: rejected}
	}

	s, err := FromEnvelope(env, cr)
	if err != nil {
		return nil, &LoginError{Message: err.Error(), Err: err}
	}
	if err := p.store.Save(s); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	p.current.Store(s)
	p.logger.Info("logged in", "user", s.ID, "role", s.Role)
	return s.Clone(), nil
}

// Logout invalidates the token remotely when possible and always clears the
// local session.
func (p *Provider) Logout(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	s := p.current.Load()
	if s != nil && p.auth != nil {
		if err := p.auth.Logout(ctx); err != nil {
			p.logger.Debug("remote logout failed", "error", err)
		}
	}

	p.current.Store(nil)
	if s != nil && p.progress != nil && s.ID != "" {
		if err := p.progress.Clear(s.ID); err != nil {
			p.logger.Warn("failed to clear progress cache", "user", s.ID, "error", err)
		}
	}
	return p.store.Clear()
}

// Token key aliases tried in order.
var tokenKeys = []string{"access_token", "token", "accessToken"}

// FromEnvelope builds a session from a successful login envelope.
func FromEnvelope(env *envelope.Envelope, cr api.Credentials) (*Session, error) {
	payload, _ := env.Payload().(map[string]any)
	top, _ := env.Body().(map[string]any)

	token := envelope.String(envelope.Field(payload, tokenKeys...))
	if token == "" {
		token = envelope.String(envelope.Field(top, tokenKeys...))
	}
	if token == "" {
		return nil, errors.New("login response did not include an access token")
	}

	user, ok := payload["user"].(map[string]any)
	if !ok {
		user = payload
	}

	s := &Session{
		ID:          envelope.String(envelope.Field(user, "id", "user_id")),
		Name:        envelope.String(envelope.Field(user, "name", "full_name")),
		Email:       envelope.String(envelope.Field(user, "email")),
		AccessToken: token,
	}
	if s.Email == "" {
		s.Email = cr.Email
	}
	if s.Name == "" {
		s.Name = nameFromEmail(s.Email)
	}
	role := envelope.String(envelope.Field(user, "role", "user_role"))
	if role == "" {
		role = cr.UserRole
	}
	s.Role = NormalizeRole(role)
	return s, nil
}

// nameFromEmail turns "jane.doe@x" into "Jane Doe".
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
