package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/config"
	"github.com/arnavkapoor/campuschat/internal/api"
	"github.com/arnavkapoor/campuschat/internal/session"
)

func universitiesBackend(t *testing.T, name string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/courses/universities", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]api.University{{ID: 1, Name: name}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// Editing the persisted configuration while a chat is open must repoint
// the live client at the new backend without a restart.
func TestWatchConfigRepointsLiveClient(t *testing.T) {
	t.Setenv("CAMPUSCHAT_API_URL", "")
	t.Setenv("CAMPUSCHAT_REQUEST_TIMEOUT", "")

	before := universitiesBackend(t, "before")
	after := universitiesBackend(t, "after")

	stateDir := t.TempDir()
	cfg := config.DefaultConfigWithRoot(stateDir)
	cfg.APIBaseURL = before.URL

	mgr, err := config.NewManager(
		config.WithConfigDir(stateDir),
		config.WithInitialConfig(cfg),
	)
	require.NoError(t, err)

	store := session.NewStore(filepath.Join(stateDir, "session.json"))
	require.NoError(t, store.Load())

	app := &App{
		cfg:    cfg,
		cfgMgr: mgr,
		logger: zap.NewNop(),
		store:  store,
		client: api.New(api.Options{BaseURL: cfg.APIBaseURL, Sessions: store}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.watchConfig(ctx)

	unis, err := app.client.Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "before", unis[0].Name)

	updated := mgr.Get()
	updated.APIBaseURL = after.URL
	require.NoError(t, mgr.Update(updated))

	unis, err = app.client.Universities(context.Background())
	require.NoError(t, err)
	require.Len(t, unis, 1)
	assert.Equal(t, "after", unis[0].Name)
}
