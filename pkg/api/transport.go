package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request id for log correlation.
const RequestIDHeader = "X-Request-ID"

// UserIDParam is the query parameter carrying the current user's id.
const UserIDParam = "user_id"

// IdentitySource supplies the credentials attached to outgoing requests.
// Either value may be empty.
type IdentitySource interface {
	Identity() (token, userID string)
}

type anonymousKey struct{}

// anonymous marks ctx so that no identity is attached to the request.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// identityTransport decorates requests with identity, request id and an
// optional rate limit before handing them to the base transport.
type identityTransport struct {
	base     http.RoundTripper
	identity IdentitySource
	limiter  *rate.Limiter
	logger   *slog.Logger
}

func (t *identityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	out := req.Clone(ctx)
	reqID := uuid.NewString()
	out.Header.Set(RequestIDHeader, reqID)
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}

	if t.identity != nil && !isAnonymous(ctx) {
		token, userID := t.identity.Identity()
		if token != "" {
			out.Header.Set("Authorization", "Bearer "+token)
		}
		if userID != "" {
			q := out.URL.Query()
			if q.Get(UserIDParam) == "" {
				q.Set(UserIDParam, userID)
				out.URL.RawQuery = q.Encode()
			}
		}
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(out)
	if err != nil {
		t.logger.Debug("request failed",
			"id", reqID, "method", out.Method, "path", out.URL.Path,
			"duration", time.Since(start), "error", err)
		return nil, err
	}
	t.logger.Debug("request completed",
		"id", reqID, "method", out.Method, "path", out.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
