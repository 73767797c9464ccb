package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gigflow/internal/gigerrors"
	"gigflow/internal/repository"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*Service, *repository.MemoryRepo) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	return NewService(repo, NewTokenService(testSecret, time.Hour), bcrypt.MinCost), repo
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokenService(testSecret, time.Hour)
	userID := uuid.NewString()

	token, err := tokens.Issue(userID, "a@example.com")
	require.NoError(t, err)

	got, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	tokens := NewTokenService(testSecret, time.Hour)
	good, err := tokens.Issue("u1", "a@example.com")
	require.NoError(t, err)

	expired := NewTokenService(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("u1", "a@example.com")
	require.NoError(t, err)

	otherKey, err := NewTokenService("another-secret", time.Hour).Issue("u1", "a@example.com")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "expired", token: old},
		{name: "wrong_key", token: otherKey},
		{name: "alg_none", token: noneAlg},
		{name: "no_subject", token: noSubject},
		{name: "tampered", token: good[:len(good)-2] + "xx"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tokens.Verify(tc.token)
			require.ErrorIs(t, err, gigerrors.ErrUnauthenticated)
		})
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "  Alice ", "Alice@Example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "Alice", session.User.Name)
	require.Equal(t, "alice@example.com", session.User.Email)
	require.NotEqual(t, "password123", session.User.PasswordHash)
	require.True(t, CheckPassword(session.User.PasswordHash, "password123"))

	stored, err := repo.GetUser(ctx, session.User.ID)
	require.NoError(t, err)
	require.Equal(t, session.User.Email, stored.Email)

	userID, err := svc.tokens.Verify(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, userID)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{name: "duplicate_email", userName: "Bob", email: "ALICE@example.com", password: "password123", wantErr: gigerrors.ErrEmailTaken},
		{name: "missing_name", userName: " ", email: "b@example.com", password: "password123", wantErr: gigerrors.ErrInvalidArgument},
		{name: "bad_email", userName: "Bob", email: "bob", password: "password123", wantErr: gigerrors.ErrInvalidArgument},
		{name: "short_password", userName: "Bob", email: "b@example.com", password: "short", wantErr: gigerrors.ErrInvalidArgument},
		{name: "long_password", userName: "Bob", email: "b@example.com", password: strings.Repeat("x", 73), wantErr: gigerrors.ErrInvalidArgument},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.userName, tc.email, tc.password)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	session, err := svc.Login(ctx, " ALICE@example.com ", "password123")
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, session.User.ID)
	require.NotEmpty(t, session.Token)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, gigerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, gigerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, gigerrors.ErrInvalidArgument)
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, user.ID)

	// valid signature, user gone
	require.NoError(t, repo.Wipe(ctx))
	_, err = svc.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, gigerrors.ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, gigerrors.ErrUnauthenticated)
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{name: "cookie", cookie: "from-cookie", want: "from-cookie"},
		{name: "bearer", header: "Bearer from-header", want: "from-header"},
		{name: "bearer_lowercase", header: "bearer from-header", want: "from-header"},
		{name: "cookie_wins", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "basic_ignored", header: "Basic abc"},
		{name: "none"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "gigflow_token", Value: tc.cookie})
			}
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			require.Equal(t, tc.want, TokenFromRequest(r, "gigflow_token"))
		})
	}
}
