package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavkapoor/campuschat/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Load())
	return store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientAttachesBearerWhenLoggedIn(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("tok-123", session.User{ID: 1, Role: "student"}))

	var gotAuth, gotRequestID string
	r := chi.NewRouter()
	r.Get("/chat", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotRequestID = req.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, []Chat{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Sessions: store})
	_, err := client.Chats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClientOmitsBearerWhenLoggedOut(t *testing.T) {
	store := newTestStore(t)

	var gotAuth string
	seen := false
	r := chi.NewRouter()
	r.Get("/courses/universities", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		seen = true
		writeJSON(w, http.StatusOK, []University{})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, Sessions: store})
	_, err := client.Universities(context.Background())
	require.NoError(t, err)
	require.True(t, seen)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsSessionOnceAndFiresHook(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("stale", session.User{ID: 7, Role: "student"}))

	r := chi.NewRouter()
	r.Get("/chat", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	r.Get("/student/profile", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var hookCalls atomic.Int32
	client := New(Options{
		BaseURL:          srv.URL,
		Sessions:         store,
		OnSessionExpired: func() { hookCalls.Add(1) },
	})

	// Two concurrent in-flight requests both observe the 401; teardown
	// must still happen exactly once.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = client.Chats(context.Background())
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = client.Profile(context.Background())
	}()
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	assert.Equal(t, int32(1), hookCalls.Load())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
}

func TestNonAuthErrorsPropagateAsAPIError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save("tok", session.User{ID: 1, Role: "student"}))

	r := chi.NewRouter()
	r.Get("/chat/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Chat not found or access denied"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	hookFired := false
	client := New(Options{BaseURL: srv.URL, Sessions: store, OnSessionExpired: func() { hookFired = true }})

	_, err := client.ChatMessages(context.Background(), 42)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Chat not found or access denied", apiErr.Detail)

	// Non-401 failures never touch the session.
	assert.False(t, hookFired)
	assert.Equal(t, "tok", store.Token())
}

func TestLoginPersistsSessionAndRearmsExpiry(t *testing.T) {
	store := newTestStore(t)

	uniID := 2
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		require.Equal(t, "asha@example.edu", body.Email)
		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: "fresh-token",
			TokenType:   "bearer",
			User:        session.User{ID: 12, Name: "Asha", Email: body.Email, Role: "student", UniversityID: &uniID},
		})
	})
	r.Get("/chat", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	var hookCalls atomic.Int32
	client := New(Options{BaseURL: srv.URL, Sessions: store, OnSessionExpired: func() { hookCalls.Add(1) }})

	resp, err := client.Login(context.Background(), "asha@example.edu", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", resp.AccessToken)
	assert.Equal(t, "fresh-token", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "student", store.User().Role)

	// First expiry fires the hook.
	_, err = client.Chats(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), hookCalls.Load())

	// A new login re-arms the teardown so a later expiry fires again.
	_, err = client.Login(context.Background(), "asha@example.edu", "secret123")
	require.NoError(t, err)
	_, err = client.Chats(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(2), hookCalls.Load())
}

func TestReconfigurePointsAtNewBackend(t *testing.T) {
	store := newTestStore(t)

	makeBackend := func(name string, hits *atomic.Int32) *httptest.Server {
		r := chi.NewRouter()
		r.Get("/courses/universities", func(w http.ResponseWriter, req *http.Request) {
			hits.Add(1)
			writeJSON(w, http.StatusOK, []University{{ID: 1, Name: name}})
		})
		return httptest.NewServer(r)
	}

	var oldHits, newHits atomic.Int32
	oldSrv := makeBackend("old", &oldHits)
	defer oldSrv.Close()
	newSrv := makeBackend("new", &newHits)
	defer newSrv.Close()

	client := New(Options{BaseURL: oldSrv.URL, Sessions: store})
	_, err := client.Universities(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), oldHits.Load())

	client.Reconfigure(newSrv.URL+"/", time.Second)
	unis, err := client.Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "new", unis[0].Name)
	assert.Equal(t, int32(1), oldHits.Load())
	assert.Equal(t, int32(1), newHits.Load())
	assert.Equal(t, time.Second, client.http.GetClient().Timeout)
}

func TestClientTimeoutConfigured(t *testing.T) {
	store := newTestStore(t)
	client := New(Options{BaseURL: "http://localhost:1", Sessions: store, Timeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, client.http.GetClient().Timeout)
}

func TestErrorDetailFallbacks(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		fallback string
		want     string
	}{
		{"detail field", `{"detail":"Subject not found"}`, "404 Not Found", "Subject not found"},
		{"plain body", `gateway exploded`, "502 Bad Gateway", "gateway exploded"},
		{"empty body", ``, "500 Internal Server Error", "500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorDetail([]byte(tc.body), tc.fallback))
		})
	}
}
