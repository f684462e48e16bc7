package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/lms"
)

type fakeAuth struct {
	env       *envelope.Envelope
	err       error
	logoutErr error
	logins    int
	logouts   int
}

func (f *fakeAuth) Login(ctx context.Context, cr api.Credentials) (*envelope.Envelope, error) {
	f.logins++
	return f.env, f.err
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	return f.logoutErr
}

func okLogin(payload map[string]any) *envelope.Envelope {
	return envelope.Wrap(map[string]any{"status": "OK", "returnData": payload})
}

func TestNormalizeRole(t *testing.T) {
	tests := map[string]Role{
		"admin":         RoleAdmin,
		"Administrator": RoleAdmin,
		"SUPER_ADMIN":   RoleAdmin,
		"user":          RoleUser,
		"Student":       RoleUser,
		"":              RoleUser,
	}
	for raw, want := range tests {
		assert.Equal(t, want, NormalizeRole(raw), "NormalizeRole(%q)", raw)
	}
}

func TestSession_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	s := &Session{AccessToken: token}
	assert.True(t, s.ExpiresAt().Equal(exp))
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Second)))

	opaque := &Session{AccessToken: "not-a-jwt"}
	assert.True(t, opaque.ExpiresAt().IsZero())
	assert.False(t, opaque.Expired(time.Now()))

	var none *Session
	assert.True(t, none.ExpiresAt().IsZero())
}

func TestProvider_LoginPersistsAndIdentifies(t *testing.T) {
	store := NewMemoryStore(nil)
	auth := &fakeAuth{env: okLogin(map[string]any{
		"access_token": "tok-1",
		"user": map[string]any{
			"id":    int64(17),
			"name":  "Asha",
			"email": "asha@example.com",
			"role":  "administrator",
		},
	})}

	p, err := NewProvider(store, auth)
	require.NoError(t, err)
	assert.Nil(t, p.Current())

	s, err := p.Login(context.Background(), api.Credentials{Email: "asha@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &Session{ID: "17", Name: "Asha", Email: "asha@example.com", Role: RoleAdmin, AccessToken: "tok-1"}, s)

	token, userID := p.Identity()
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "17", userID)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, s, stored)
}

func TestFromEnvelope_Probing(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		cr   api.Credentials
		want *Session
	}{
		{
			name: "flat payload with token alias",
			body: map[string]any{"status": "OK", "returnData": map[string]any{
				"token": "t2", "id": "9", "email": "b@x.io", "user_role": "User",
			}},
			want: &Session{ID: "9", Name: "B", Email: "b@x.io", Role: RoleUser, AccessToken: "t2"},
		},
		{
			name: "top-level camelCase token",
			body: map[string]any{"status": "OK", "accessToken": "t3", "returnData": map[string]any{
				"user": map[string]any{"id": float64(3), "name": "C"},
			}},
			cr:   api.Credentials{Email: "c@x.io", UserRole: "Admin"},
			want: &Session{ID: "3", Name: "C", Email: "c@x.io", Role: RoleAdmin, AccessToken: "t3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromEnvelope(envelope.Wrap(tt.body), tt.cr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvider_LoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		auth    *fakeAuth
		message string
	}{
		{
			name:    "rejected",
			auth:    &fakeAuth{env: envelope.Wrap(map[string]any{"status": "ERROR", "errorMessage": []any{"Invalid credentials"}})},
			message: "Invalid credentials",
		},
		{
			name:    "transport",
			auth:    &fakeAuth{err: &api.APIError{Code: api.CodeConnection, Message: "dial tcp: refused"}},
			message: "dial tcp: refused",
		},
		{
			name:    "no token",
			auth:    &fakeAuth{env: okLogin(map[string]any{"id": 1})},
			message: "login response did not include an access token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(nil)
			p, err := NewProvider(store, tt.auth)
			require.NoError(t, err)

			_, err = p.Login(context.Background(), api.Credentials{Email: "a@b.c", Password: "x"})
			var loginErr *LoginError
			require.ErrorAs(t, err, &loginErr)
			assert.Equal(t, tt.message, loginErr.Message)
			assert.Nil(t, p.Current())

			stored, _ := store.Load()
			assert.Nil(t, stored)
		})
	}
}

func TestProvider_LoginRequiresCredentials(t *testing.T) {
	auth := &fakeAuth{}
	p, err := NewProvider(nil, auth)
	require.NoError(t, err)

	_, err = p.Login(context.Background(), api.Credentials{Email: "a@b.c"})
	var loginErr *LoginError
	require.ErrorAs(t, err, &loginErr)
	assert.Zero(t, auth.logins)
}

func TestProvider_LogoutIgnoresRemoteFailure(t *testing.T) {
	dir := t.TempDir()
	cache := NewProgressCache(dir)
	require.NoError(t, cache.Save("5", []lms.ModuleProgress{{ModuleID: "1", Progress: 40}}))

	seed := &Session{ID: "5", AccessToken: "tok", Role: RoleUser}
	store := NewMemoryStore(seed)
	auth := &fakeAuth{logoutErr: errors.New("unreachable")}

	p, err := NewProvider(store, auth, WithProgressCache(cache))
	require.NoError(t, err)
	assert.Equal(t, seed, p.Current())

	require.NoError(t, p.Logout(context.Background()))
	assert.Equal(t, 1, auth.logouts)
	assert.Nil(t, p.Current())

	token, userID := p.Identity()
	assert.Empty(t, token)
	assert.Empty(t, userID)

	stored, _ := store.Load()
	assert.Nil(t, stored)

	records, err := cache.Load("5")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestProvider_LogoutWithoutSessionSkipsRemote(t *testing.T) {
	auth := &fakeAuth{}
	p, err := NewProvider(NewMemoryStore(nil), auth)
	require.NoError(t, err)

	require.NoError(t, p.Logout(context.Background()))
	assert.Zero(t, auth.logouts)
}

func TestProvider_CurrentReturnsCopy(t *testing.T) {
	p, err := NewProvider(NewMemoryStore(&Session{ID: "1", AccessToken: "t"}), nil)
	require.NoError(t, err)

	s := p.Current()
	s.AccessToken = "changed"
	token, _ := p.Identity()
	assert.Equal(t, "t", token)
}

func TestFileStore_RoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	fs := NewFileStore(path)

	s, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &Session{ID: "2", Name: "N", Email: "n@x", Role: RoleAdmin, AccessToken: "tok"}
	require.NoError(t, fs.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, fs.Clear())
	require.NoError(t, fs.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewProvider_DiscardsCorruptSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	p, err := NewProvider(NewFileStore(path), nil)
	require.NoError(t, err)
	assert.Nil(t, p.Current())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewProvider_IgnoresTokenlessSession(t *testing.T) {
	p, err := NewProvider(NewMemoryStore(&Session{ID: "1"}), nil)
	require.NoError(t, err)
	assert.Nil(t, p.Current())
}

func TestProgressCache(t *testing.T) {
	cache := NewProgressCache(t.TempDir())

	records, err := cache.Load("u/1")
	require.NoError(t, err)
	assert.Nil(t, records)

	want := []lms.ModuleProgress{
		{ModuleID: "1", Code: "HMU08001", Name: "IP Management", Progress: 100},
		{ModuleID: "2", Code: "HMU08002", Name: "Fundraising", Progress: 20},
	}
	require.NoError(t, cache.Save("u/1", want))

	got, err := cache.Load("u/1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = cache.Load("")
	assert.ErrorIs(t, err, ErrNoSession)
}
