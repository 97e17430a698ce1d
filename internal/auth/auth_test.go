package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestStatic(t *testing.T) {
	tok, err := Static("gcp-token").Token()
	require.NoError(t, err)
	assert.Equal(t, "gcp-token", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestNewTokenSource_Precedence(t *testing.T) {
	src, err := NewTokenSource(context.Background(), Credentials{
		AccessToken: "static",
		APIKey:      "k", Email: "e", Password: "p",
	}, nil)
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "static", tok.AccessToken)

	_, err = NewTokenSource(context.Background(), Credentials{APIKey: "k"}, nil)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestCredentials_Configured(t *testing.T) {
	assert.False(t, Credentials{}.Configured())
	assert.False(t, Credentials{APIKey: "k", Email: "e"}.Configured())
	assert.True(t, Credentials{AccessToken: "t"}.Configured())
	assert.True(t, Credentials{APIKey: "k", Email: "e", Password: "p"}.Configured())
}

func TestFirebasePassword_SignIn(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "api-key", r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "worker@example.com", req.Email)
		assert.Equal(t, "hunter2", req.Password)
		assert.True(t, req.ReturnSecureToken)

		w.Write([]byte(`{"idToken":"id-token","expiresIn":"3600","refreshToken":"r"}`))
	}))
	defer server.Close()

	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	src := FirebasePassword(context.Background(), Credentials{
		APIKey: "api-key", Email: "worker@example.com", Password: "hunter2",
	}, server.Client())
	src.baseURL = server.URL
	src.now = func() time.Time { return fixed }

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "id-token", tok.AccessToken)
	assert.Equal(t, fixed.Add(time.Hour), tok.Expiry)

	// Reuse keeps the unexpired token.
	src.now = time.Now
	reuse := oauth2.ReuseTokenSource(nil, src)
	for i := 0; i < 3; i++ {
		_, err := reuse.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestFirebasePassword_KeyEscaped(t *testing.T) {
	const key = "a+b&key=c d"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{key}, r.URL.Query()["key"])
		w.Write([]byte(`{"idToken":"id-token","expiresIn":"3600"}`))
	}))
	defer server.Close()

	src := FirebasePassword(context.Background(), Credentials{APIKey: key, Email: "e", Password: "p"}, server.Client())
	src.baseURL = server.URL

	_, err := src.Token()
	require.NoError(t, err)
}

func TestFirebasePassword_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
	}))
	defer server.Close()

	src := FirebasePassword(context.Background(), Credentials{APIKey: "k", Email: "e", Password: "bad"}, server.Client())
	src.baseURL = server.URL

	_, err := src.Token()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")
}
