// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot360/bot360-tui/internal/session"
)

func TestLoginStoresPair(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"access":"new-acc","refresh":"new-ref"}`))
	}))

	require.NoError(t, c.Login(context.Background(), "alice", "s3cret"))

	toks, err := store.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "new-acc", toks.Access)
	assert.Equal(t, "new-ref", toks.Refresh)
}

func TestLoginRejectionIsAuthFailed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	assert.ErrorIs(t, c.Login(context.Background(), "alice", "wrong"), ErrAuthFailed)
}

func TestRegisterSurfacesBackendError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/register/", r.URL.Path)
		w.Write([]byte(`{"error":"username taken"}`))
	}))

	err := c.Register(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "username taken")
}

func TestAuthRetryIdempotence(t *testing.T) {
	var protectedCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/assistant/configs/", func(w http.ResponseWriter, r *http.Request) {
		if protectedCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer refreshed", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"uuid":"u1","model":"gpt-4.1"}]`))
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Write([]byte(`{"access":"refreshed"}`))
	})

	c, store := newTestClient(t, mux)

	list, err := c.ListAssistants(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UUID)

	// Exactly one refresh, exactly one replay, token persisted.
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), protectedCalls.Load())
	toks, err := store.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", toks.Access)
}

func TestFatalRefreshClearsSessionWithoutSecondRetry(t *testing.T) {
	var protectedCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/assistant/configs/", func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, store := newTestClient(t, mux)

	_, err := c.ListAssistants(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), protectedCalls.Load())

	_, err = store.Tokens()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestMissingRefreshTokenFailsWithoutRefreshCall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/assistant/configs/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("refresh must not be called without a refresh token")
	})

	c, store := newTestClient(t, mux)
	require.NoError(t, store.SetPair("acc", ""))

	_, err := c.ListAssistants(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Tokens()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSecond401AfterRefreshEndsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analytics/assistant/configs/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access":"still-bad"}`))
	})

	c, store := newTestClient(t, mux)

	_, err := c.ListAssistants(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = store.Tokens()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestProtectedCallWithoutSession(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued without a session")
	}))
	require.NoError(t, store.Clear())

	_, err := c.ListAssistants(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
