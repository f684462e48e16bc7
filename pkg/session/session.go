package session

import (
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by operations that need a logged-in user.
var ErrNoSession = errors.New("not logged in")

// Role is the normalized user role.
type Role string

// Roles.
const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

var adminPattern = regexp.MustCompile(`(?i)admin|administrator`)

// NormalizeRole maps any server role text onto User or Admin.
func NormalizeRole(raw string) Role {
	if adminPattern.MatchString(raw) {
		return RoleAdmin
	}
	return RoleUser
}

// Session is the authenticated user. It is replaced, never mutated.
type Session struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AccessToken string `json:"access_token"`
}

// IsAdmin reports whether the session has the Admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Clone returns a copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// ExpiresAt returns the exp claim of a JWT access token. The signature is not
// verified. Opaque tokens and tokens without exp yield the zero time.
func (s *Session) ExpiresAt() time.Time {
	if s == nil || s.AccessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Expired reports whether the token's exp claim is at or before now.
// A token without a readable expiry never reports expired.
func (s *Session) Expired(now time.Time) bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

func (s *Session) valid() bool {
	return s != nil && s.AccessToken != ""
}
