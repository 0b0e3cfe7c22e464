package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/apierr"
	"github.com/dairyerp/dairyclient/internal/backendtest"
	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/storage"
	"github.com/dairyerp/dairyclient/internal/transport"
)

func newEnv(t *testing.T) (*backendtest.Server, storage.Store, *Manager) {
	t.Helper()

	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	mgr := newManagerOver(srv.URL, store)
	return backend, store, mgr
}

func newManagerOver(baseURL string, store storage.Store) *Manager {
	tc := transport.New(transport.Config{BaseURL: baseURL + "/api", Timeout: 5 * time.Second}, zap.NewNop())
	mgr := NewManager(tc, store, zap.NewNop())
	tc.SetCredentials(CredentialSource{Manager: mgr})
	return mgr
}

func adminLogin(t *testing.T, mgr *Manager) *models.Session {
	t.Helper()
	sess, err := mgr.Login(context.Background(), models.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	return sess
}

func TestLoginActivatesSession(t *testing.T) {
	_, _, mgr := newEnv(t)
	ctx := context.Background()

	_, ok := mgr.Current(ctx)
	require.False(t, ok)

	sess := adminLogin(t, mgr)
	require.Equal(t, "Admin", sess.Role)
	require.Equal(t, "Admin User", sess.FullName)
	require.NotEmpty(t, sess.Token)

	current, ok := mgr.Current(ctx)
	require.True(t, ok)
	require.Equal(t, sess.Token, current.Token)
	require.Equal(t, sess.Role, current.Role)
}

func TestLoginFailurePropagatesUnchanged(t *testing.T) {
	_, _, mgr := newEnv(t)

	_, err := mgr.Login(context.Background(), models.Credentials{Username: "admin", Password: "wrong"})
	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 401, httpErr.Status)
	require.Equal(t, "Invalid username or password", httpErr.Message)

	_, ok := mgr.Current(context.Background())
	require.False(t, ok)
}

func TestSessionPersistenceRoundTrip(t *testing.T) {
	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := newManagerOver(srv.URL, store)
	sess, err := first.Login(ctx, models.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	// Simulated process restart: a fresh manager over the same store.
	second := newManagerOver(srv.URL, store)
	restored, ok := second.Current(ctx)
	require.True(t, ok)
	require.Equal(t, sess.UserID, restored.UserID)
	require.Equal(t, sess.Username, restored.Username)
	require.Equal(t, sess.FullName, restored.FullName)
	require.Equal(t, sess.Role, restored.Role)
	require.Equal(t, sess.Token, restored.Token)
	require.WithinDuration(t, sess.TokenExpiry, restored.TokenExpiry, time.Second)
}

func TestLogoutIsIdempotent(t *testing.T) {
	_, store, mgr := newEnv(t)
	ctx := context.Background()

	adminLogin(t, mgr)
	require.NoError(t, mgr.Logout(ctx))
	require.NoError(t, mgr.Logout(ctx))

	_, ok := mgr.Current(ctx)
	require.False(t, ok)

	_, err := store.Get(ctx, "token")
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, "user")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRefreshReturnsLiveSession(t *testing.T) {
	_, _, mgr := newEnv(t)

	sess := adminLogin(t, mgr)

	refreshed, ok := mgr.Refresh(context.Background())
	require.True(t, ok)
	require.Equal(t, sess.Token, refreshed.Token)

	// Idempotent: repeated calls before any state change agree.
	again, ok := mgr.Refresh(context.Background())
	require.True(t, ok)
	require.Equal(t, refreshed.Token, again.Token)
}

func TestRefreshClearsExpiredSession(t *testing.T) {
	backend, store, mgr := newEnv(t)
	backend.TokenTTL = -time.Minute // issue already-expired tokens

	adminLogin(t, mgr)

	_, ok := mgr.Refresh(context.Background())
	require.False(t, ok)

	_, ok = mgr.Current(context.Background())
	require.False(t, ok)
	_, err := store.Get(context.Background(), "user")
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Still absent on repeat.
	_, ok = mgr.Refresh(context.Background())
	require.False(t, ok)
}

func TestHasRole(t *testing.T) {
	_, _, mgr := newEnv(t)
	ctx := context.Background()

	require.False(t, mgr.HasRole(ctx, "Admin"))

	adminLogin(t, mgr)
	require.True(t, mgr.HasRole(ctx, "Admin"))
	require.True(t, mgr.HasRole(ctx, "Operator", "Admin"))
	require.False(t, mgr.HasRole(ctx, "Operator"))
	require.False(t, mgr.HasRole(ctx))
}

func TestTransientRejectionRecoversTransparently(t *testing.T) {
	// A request that gets one 401 on a still-valid session must be retried
	// after the refresh and resolve cleanly for the caller.
	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	tc := transport.New(transport.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, zap.NewNop())
	mgr := NewManager(tc, store, zap.NewNop())
	tc.SetCredentials(CredentialSource{Manager: mgr})

	_, err := mgr.Login(context.Background(), models.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	backend.RejectNextAuthed(1)

	var farmers []models.Farmer
	require.NoError(t, tc.Get(context.Background(), "/Farmers", nil, &farmers))

	// Session untouched afterwards.
	_, ok := mgr.Current(context.Background())
	require.True(t, ok)
}

func TestRevokedTokensForceLogout(t *testing.T) {
	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	backend.TokenTTL = -time.Minute

	store := storage.NewMemoryStore()
	tc := transport.New(transport.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, zap.NewNop())
	mgr := NewManager(tc, store, zap.NewNop())
	tc.SetCredentials(CredentialSource{Manager: mgr})

	_, err := mgr.Login(context.Background(), models.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	// The expired token is rejected by the backend and cannot be refreshed,
	// so the request surfaces session expiry and state is wiped.
	err = tc.Get(context.Background(), "/Farmers", nil, nil)
	require.ErrorIs(t, err, apierr.ErrSessionExpired)

	_, ok := mgr.Current(context.Background())
	require.False(t, ok)
	_, storeErr := store.Get(context.Background(), "user")
	require.ErrorIs(t, storeErr, storage.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	_, _, mgr := newEnv(t)
	ctx := context.Background()

	adminLogin(t, mgr)

	err := mgr.ChangePassword(ctx, "not-the-password", "newpass456")
	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 400, httpErr.Status)

	require.NoError(t, mgr.ChangePassword(ctx, "admin123", "newpass456"))

	// Old credentials no longer work; new ones do.
	require.NoError(t, mgr.Logout(ctx))
	_, err = mgr.Login(ctx, models.Credentials{Username: "admin", Password: "admin123"})
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 401, httpErr.Status)

	_, err = mgr.Login(ctx, models.Credentials{Username: "admin", Password: "newpass456"})
	require.NoError(t, err)
}

func TestCorruptPersistedStateIsDiscarded(t *testing.T) {
	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "user", []byte("{not json")))

	mgr := newManagerOver(srv.URL, store)
	_, ok := mgr.Current(ctx)
	require.False(t, ok)
}
