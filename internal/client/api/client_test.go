package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func respond(w http.ResponseWriter, status int, success bool, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"data":    data,
		"error":   errMsg,
	})
}

func TestCreateSession_StoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/session", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])

		respond(w, http.StatusOK, true, Session{Token: "tok-1", User: User{ID: "u1", Email: "a@b.c"}}, "")
	})

	s, err := c.CreateSession(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.True(t, c.HasSession())
}

func TestAuthAndShareHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-xyz", r.Header.Get(common.AuthHeaderName))
		assert.Equal(t, "my-share", r.Header.Get(common.ShareHeaderName))
		respond(w, http.StatusOK, true, Asset{ID: "a1", Name: "wallet", Data: "plain"}, "")
	})
	c.SetSession("tok-xyz")
	c.SetShare("my-share")

	a, err := c.GetAsset(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "plain", a.Data)
}

func TestErrorMapping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			respond(w, http.StatusUnauthorized, false, nil, "unauthorized")
		case "/api/assets/missing":
			respond(w, http.StatusNotFound, false, nil, "not found")
		default:
			respond(w, http.StatusBadRequest, false, nil, "invalid input")
		}
	})

	_, err := c.Me(context.Background())
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))

	_, err = c.GetAsset(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = c.CheckIn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestHeartbeatCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/heartbeat" && r.Method == http.MethodPost:
			respond(w, http.StatusOK, true, map[string]string{"lastHeartbeat": "2025-03-10T12:00:00Z"}, "")
		case r.URL.Path == "/api/heartbeat/status":
			respond(w, http.StatusOK, true, HeartbeatStatus{Status: "warning", RemainingDays: 2}, "")
		case r.URL.Path == "/api/heartbeat/config" && r.Method == http.MethodPut:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "monthly", body["frequency"])
			_, hasGrace := body["gracePeriodDays"]
			assert.False(t, hasGrace, "unset fields must not be sent")
			respond(w, http.StatusOK, true, HeartbeatConfig{Frequency: "monthly", GracePeriodDays: 7}, "")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	ts, err := c.CheckIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10T12:00:00Z", ts)

	st, err := c.HeartbeatStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "warning", st.Status)

	freq := "monthly"
	cfg, err := c.UpdateHeartbeatConfig(context.Background(), &freq, nil)
	require.NoError(t, err)
	assert.Equal(t, "monthly", cfg.Frequency)
}
