// Package session owns the authenticated session's lifecycle: login,
// logout, persisted restore, refresh, and role queries. It is the only
// component that writes session state, in memory or in the durable store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/storage"
	"github.com/dairyerp/dairyclient/internal/transport"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// Manager holds the single active session and mirrors it into the durable
// store so a restarted process can resume authenticated.
type Manager struct {
	transport *transport.Client
	store     storage.Store
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	session *models.Session
	loaded  bool
}

// NewManager wires a session manager over the given transport and store.
func NewManager(tc *transport.Client, store storage.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		transport: tc,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Login posts credentials to the authentication endpoint and, on success,
// persists and activates the returned session. Transport errors propagate
// unchanged; login is never retried here.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	var sess models.Session
	if err := m.transport.Post(ctx, "/Auth/login", creds, &sess); err != nil {
		return nil, err
	}

	if sess.TokenExpiry.IsZero() {
		sess.TokenExpiry = expiryFromToken(sess.Token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persist(ctx, &sess); err != nil {
		return nil, err
	}
	m.session = &sess
	m.loaded = true

	m.logger.Info("login successful",
		zap.String("username", sess.Username),
		zap.String("role", sess.Role))

	copied := sess
	return &copied, nil
}

// Logout clears the in-memory and persisted session unconditionally.
// Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear(ctx)
}

// Current returns the active session, restoring it from the durable store
// on first access per process lifetime.
func (m *Manager) Current(ctx context.Context) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restoreOnce(ctx)
	if m.session == nil {
		return nil, false
	}
	copied := *m.session
	return &copied, true
}

// Refresh is the recovery contract consumed by the transport. The backend
// exposes no refresh endpoint, so a still-valid session (by wall-clock
// comparison against its expiry) is returned as-is; an expired or absent
// session clears all state and reports false. Safe to call concurrently and
// side-effect-idempotent.
func (m *Manager) Refresh(ctx context.Context) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restoreOnce(ctx)

	if m.session != nil && !m.session.Expired(m.now()) {
		copied := *m.session
		return &copied, true
	}

	if err := m.clear(ctx); err != nil {
		m.logger.Warn("failed clearing expired session", zap.Error(err))
	}
	return nil, false
}

// HasRole reports whether the current session's role is one of the given
// roles. Returns false when unauthenticated; never errors.
func (m *Manager) HasRole(ctx context.Context, roles ...string) bool {
	sess, ok := m.Current(ctx)
	if !ok {
		return false
	}
	return slices.Contains(roles, sess.Role)
}

// ChangePassword updates the authenticated user's password on the backend.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	payload := map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}
	return m.transport.Post(ctx, "/Auth/change-password", payload, nil)
}

// Token returns the current session's bearer token, if any.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	sess, ok := m.Current(ctx)
	if !ok {
		return "", false
	}
	return sess.Token, sess.Token != ""
}

// refreshToken returns the usable token, if any, after the session-level
// refresh has run. CredentialSource exposes it to the transport.
func (m *Manager) refreshToken(ctx context.Context) (string, bool) {
	sess, ok := m.Refresh(ctx)
	if !ok {
		return "", false
	}
	return sess.Token, sess.Token != ""
}

// persist mirrors the session into the durable store; caller holds the lock.
func (m *Manager) persist(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, tokenKey, []byte(sess.Token)); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(ctx, userKey, raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// clear wipes memory and durable state; caller holds the lock.
func (m *Manager) clear(ctx context.Context) error {
	m.session = nil
	m.loaded = true
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session store: %w", err)
	}
	return nil
}

// restoreOnce lazily loads persisted state the first time session state is
// consulted; caller holds the lock.
func (m *Manager) restoreOnce(ctx context.Context) {
	if m.loaded {
		return
	}
	m.loaded = true

	raw, err := m.store.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("failed reading persisted session", zap.Error(err))
		}
		return
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		m.logger.Warn("discarding corrupt persisted session", zap.Error(err))
		_ = m.store.Clear(ctx)
		return
	}

	m.session = &sess
	m.logger.Debug("session restored from storage", zap.String("username", sess.Username))
}

// expiryFromToken recovers an expiry from the JWT exp claim when the login
// payload omits tokenExpiry. The signature is not verified; the client never
// holds the signing key and the backend remains the authority.
func expiryFromToken(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// CredentialSource adapts the manager to the transport contract.
type CredentialSource struct {
	Manager *Manager
}

func (c CredentialSource) Token(ctx context.Context) (string, bool) {
	return c.Manager.Token(ctx)
}

func (c CredentialSource) Refresh(ctx context.Context) (string, bool) {
	return c.Manager.refreshToken(ctx)
}
