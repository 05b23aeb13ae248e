package transport

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
)

func TestClient_ExecuteDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload["query"], "xSCheckAlarm")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"xSCheckAlarm":{"res":"OK","referenceId":"ref-1"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	resp, err := client.Execute(context.Background(), "query { xSCheckAlarm }", nil, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Err())

	var out struct {
		Res         string `json:"res"`
		ReferenceID string `json:"referenceId"`
	}
	require.NoError(t, resp.Decode("xSCheckAlarm", &out))
	assert.Equal(t, "OK", out.Res)
	assert.Equal(t, "ref-1", out.ReferenceID)
}

func TestClient_ExecuteForwardsHeaders(t *testing.T) {
	var gotAuth, gotNuminst string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("auth")
		gotNuminst = r.Header.Get("numinst")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	headers := SessionHeaders("hash-token", session.Data{
		User:      "user@example.com",
		Lang:      "es",
		Country:   "ES",
		LoginTime: time.Now(),
	})
	for k, v := range InstallationHeaders("12345", "SDVFAST", "cap-token") {
		headers[k] = v
	}

	_, err := client.Execute(context.Background(), "query {}", nil, headers)
	require.NoError(t, err)

	var auth map[string]any
	require.NoError(t, json.Unmarshal([]byte(gotAuth), &auth))
	assert.Equal(t, "user@example.com", auth["user"])
	assert.Equal(t, "hash-token", auth["hash"])
	assert.Equal(t, "OWI_10", auth["callby"])
	assert.Equal(t, "12345", gotNuminst)
}

func TestClient_ExecuteBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Invalid session"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	resp, err := client.Execute(context.Background(), "query {}", nil, nil)
	require.NoError(t, err)
	require.Error(t, resp.Err())
	assert.Equal(t, "Invalid session", resp.Err().Error())
}

func TestClient_ExecuteHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	_, err := client.Execute(context.Background(), "query {}", nil, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ExecuteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Execute(ctx, "query {}", nil, nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestResponse_DecodeMissingField(t *testing.T) {
	resp := &Response{Data: map[string]json.RawMessage{"xSArmPanel": []byte(`null`)}}

	var out struct{}
	assert.Error(t, resp.Decode("xSArmPanel", &out))
	assert.Error(t, resp.Decode("xSDisarmPanel", &out))
}
