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

	"github.com/vigilo-home/vigilo/session"
	"github.com/vigilo-home/vigilo/transport"
)

func newAuthClient(t *testing.T, url string) (*Client, *session.Store) {
	t.Helper()
	fs, err := session.NewFileStore(t.TempDir())
	require.NoError(t, err)
	store := session.NewStore(session.DefaultTTL)
	return NewClient(transport.NewClient(url, 5*time.Second), store, fs, nil), store
}

func TestLogin_Success(t *testing.T) {
	var variables map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		variables = payload.Variables

		w.Write([]byte(`{"data":{"xSLoginToken":{
			"res":"OK","msg":"","hash":"hash-123","lang":"es",
			"changePassword":false,"needDeviceAuthorization":false,
			"refreshToken":"refresh-456"}}}`))
	}))
	defer server.Close()

	client, store := newAuthClient(t, server.URL)

	result, err := client.Login(context.Background(), "user@example.com", "secret")
	require.NoError(t, err)
	assert.False(t, result.NeedDeviceAuthorization)

	token, data, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "hash-123", token)
	assert.Equal(t, "user@example.com", data.User)

	// Device identity rides along with the credentials.
	assert.Equal(t, "user@example.com", variables["user"])
	assert.Equal(t, transport.AppID, variables["id"])
	assert.Equal(t, transport.CallBy, variables["callby"])
	assert.NotEmpty(t, variables["idDevice"])
	assert.NotEmpty(t, variables["uuid"])
}

func TestLogin_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"xSLoginToken":{"res":"KO","msg":"Invalid user or password"}}}`))
	}))
	defer server.Close()

	client, store := newAuthClient(t, server.URL)

	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, session.ErrAuthenticationRejected)
	assert.Contains(t, err.Error(), "Invalid user or password")
	assert.False(t, store.Valid())
}

func TestLogin_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Service unavailable"}]}`))
	}))
	defer server.Close()

	client, _ := newAuthClient(t, server.URL)

	_, err := client.Login(context.Background(), "user@example.com", "secret")
	assert.ErrorIs(t, err, session.ErrAuthenticationRejected)
}

func TestRelogin_WithoutCredentials(t *testing.T) {
	client, _ := newAuthClient(t, "http://unused")

	err := client.Relogin(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestRelogin_RefreshesToken(t *testing.T) {
	logins := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logins++
		w.Write([]byte(`{"data":{"xSLoginToken":{"res":"OK","hash":"hash-v2","refreshToken":"r2"}}}`))
	}))
	defer server.Close()

	client, store := newAuthClient(t, server.URL)
	store.UpdateCredentials("user@example.com", "secret", "", "")

	require.NoError(t, client.Relogin(context.Background()))
	assert.Equal(t, 1, logins)

	token, _, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "hash-v2", token)
}

func TestLogout_ClearsSession(t *testing.T) {
	client, store := newAuthClient(t, "http://unused")
	store.UpdateCredentials("user", "pass", "hash", "refresh")

	client.Logout()
	assert.False(t, store.Valid())
}
