package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gigflow/internal/auth"
	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
	"gigflow/services/bidding/helpers"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeAuth accepts a single token.
type fakeAuth struct {
	token string
	user  models.User
	err   error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	if token != f.token {
		return models.User{}, gigerrors.ErrUnauthenticated
	}
	return f.user, nil
}

func (f fakeAuth) Register(context.Context, string, string, string) (auth.Session, error) {
	return auth.Session{}, errors.New("not used")
}

func (f fakeAuth) Login(context.Context, string, string) (auth.Session, error) {
	return auth.Session{}, errors.New("not used")
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(RequestIDMiddleware)
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{name: "generated", incoming: ""},
		{name: "reused", incoming: "abc-123", reuse: true},
		{name: "oversized_replaced", incoming: strings.Repeat("x", 200)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.incoming != "" {
				req.Header.Set(RequestIDHeader, tc.incoming)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			require.NotEmpty(t, got)
			require.Equal(t, got, w.Body.String())
			if tc.reuse {
				require.Equal(t, tc.incoming, got)
			} else {
				require.NotEqual(t, tc.incoming, got)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(CORSMiddleware("http://localhost:5173"))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	// preflight from the allowed origin
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	// foreign origin gets no CORS headers
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	alice := models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}

	tests := []struct {
		name           string
		auth           fakeAuth
		cookie         string
		bearer         string
		expectedStatus int
	}{
		{name: "cookie", auth: fakeAuth{token: "good", user: alice}, cookie: "good", expectedStatus: http.StatusOK},
		{name: "bearer", auth: fakeAuth{token: "good", user: alice}, bearer: "good", expectedStatus: http.StatusOK},
		{name: "missing", auth: fakeAuth{token: "good", user: alice}, expectedStatus: http.StatusUnauthorized},
		{name: "bad_token", auth: fakeAuth{token: "good", user: alice}, cookie: "bad", expectedStatus: http.StatusUnauthorized},
		{name: "storage_down", auth: fakeAuth{err: errors.New("db down")}, cookie: "good", expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.GET("/me", AuthMiddleware(tc.auth, "gigflow_token"), func(c *gin.Context) {
				user, ok := helpers.CurrentUser(c)
				require.True(t, ok)
				c.String(http.StatusOK, user.ID+"|"+c.GetString(helpers.ContextUserIDKey))
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "gigflow_token", Value: tc.cookie})
			}
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				require.Equal(t, "u1|u1", w.Body.String())
			} else {
				require.NotContains(t, w.Body.String(), "db down")
			}
		})
	}
}

func TestSetupRouter_Surface(t *testing.T) {
	t.Parallel()

	router := SetupRouter(Dependencies{
		Auth:       fakeAuth{token: "good"},
		Cookie:     helpers.CookieOptions{Name: "gigflow_token", MaxAge: time.Hour},
		CORSOrigin: "http://localhost:5173",
		LiveSocket: func(c *gin.Context) { c.Status(http.StatusTeapot) },
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/ws", http.StatusTeapot},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/gigs", http.StatusUnauthorized},
		{http.MethodPost, "/api/bids", http.StatusUnauthorized},
		{http.MethodGet, "/api/bids/some-gig", http.StatusUnauthorized},
		{http.MethodPatch, "/api/bids/some-bid/hire", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
		require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())
}
