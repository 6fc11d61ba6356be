package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/client/config"
	"eventkeeper/internal/domain/event"
)

func newTestHTTPClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerAddress:  strings.TrimPrefix(srv.URL, "http://"),
		RequestTimeout: 2 * time.Second,
	}
	return NewHTTPClient(cfg, slog.Default())
}

func TestHTTPClient_CreateSendsBearerAndDecodes(t *testing.T) {
	h := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/events", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req event.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Standup", req.Name)

		created := req.Event("42")
		_ = json.NewEncoder(w).Encode(event.Response{Status: event.StatusOk, Event: &created})
	})
	h.SetToken("secret")

	created, err := h.Create(context.Background(), event.Event{ID: "local-1", Name: "Standup"})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		call     func(h *HTTPClient) error
		notFound bool
		unauth   bool
	}{
		{
			name:     "delete 404 is not found",
			status:   http.StatusNotFound,
			body:     `{"title":"Not Found","detail":"event not found"}`,
			call:     func(h *HTTPClient) error { return h.Delete(context.Background(), "7") },
			notFound: true,
		},
		{
			name:   "update 404 is not found",
			status: http.StatusNotFound,
			call: func(h *HTTPClient) error {
				_, err := h.Update(context.Background(), "7", event.Event{Name: "x"})
				return err
			},
			notFound: true,
		},
		{
			name:   "server error is transport",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			call: func(h *HTTPClient) error {
				_, err := h.List(context.Background())
				return err
			},
		},
		{
			name:   "401 is unauthorized transport",
			status: http.StatusUnauthorized,
			body:   `{"error":"Unauthorized"}`,
			call: func(h *HTTPClient) error {
				_, err := h.List(context.Background())
				return err
			},
			unauth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := tt.call(h)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, event.ErrNotFound))
			assert.True(t, IsTransport(err))
			assert.Equal(t, tt.unauth, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestHTTPClient_UnreachableIsTransport(t *testing.T) {
	cfg := &config.Config{ServerAddress: "127.0.0.1:1", RequestTimeout: time.Second}
	h := NewHTTPClient(cfg, slog.Default())

	err := h.HealthCheck(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, errors.Is(err, event.ErrNotFound))
}

func TestHTTPClient_LoginKeepsToken(t *testing.T) {
	h := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"token":"tok","status":"Ok"}`))
	})

	token, err := h.Login(context.Background(), "ann", "Secret#1")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.True(t, h.HasToken())
}

func TestHTTPClient_LoginRejected(t *testing.T) {
	h := newTestHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"","status":"Error","error":"Invalid credentials"}`))
	})

	_, err := h.Login(context.Background(), "ann", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.False(t, h.HasToken())
}
