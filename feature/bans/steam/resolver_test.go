package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"banledger/feature/bans/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T, handler http.Handler) (*Resolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := NewResolver(Config{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		TimeoutSeconds:  5,
		CacheTTLMinutes: 60,
		CacheSize:       16,
	}, zap.NewNop())
	return r, srv
}

func TestPlayerName_CachesLookups(t *testing.T) {
	var calls atomic.Int64
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/ISteamUser/GetPlayerSummaries/v2/", req.URL.Path)
		assert.Equal(t, "test-key", req.URL.Query().Get("key"))
		assert.Equal(t, "76561197960287930", req.URL.Query().Get("steamids"))
		w.Write([]byte(`{"response":{"players":[{"personaname":"alice"}]}}`))
	}))

	id := model.SteamID(76561197960287930)
	name, err := r.PlayerName(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	name, err = r.PlayerName(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPlayerName_NoProfile(t *testing.T) {
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":{"players":[]}}`))
	}))

	_, err := r.PlayerName(context.Background(), model.SteamID(76561197960287930))
	assert.Error(t, err)
}

func TestResolveVanity(t *testing.T) {
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/ISteamUser/ResolveVanityURL/v1/", req.URL.Path)
		if req.URL.Query().Get("vanityurl") == "alice" {
			w.Write([]byte(`{"response":{"success":1,"steamid":"76561197960287930"}}`))
			return
		}
		w.Write([]byte(`{"response":{"success":42}}`))
	}))

	id, err := r.ResolveVanity(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, model.SteamID(76561197960287930), id)

	_, err = r.ResolveVanity(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestResolve_BestEffort(t *testing.T) {
	disabled := NewResolver(Config{}, zap.NewNop())
	_, ok := disabled.Resolve(context.Background(), model.SteamID(76561197960287930))
	assert.False(t, ok)

	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, ok = r.Resolve(context.Background(), model.SteamID(76561197960287930))
	assert.False(t, ok)
}
