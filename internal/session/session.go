// Package session owns the authenticated session: the bearer token in durable
// storage and the user decoded from it. Manager is the only writer; everything
// else reads snapshots through Current.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/auth"
	"github.com/ukydev/aivodrive/internal/authz"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrMalformedResponse = errors.New("malformed login response")
	ErrSessionExpired    = errors.New("session expired")
)

// Status is the authentication state.
type Status int

const (
	Unauthenticated Status = iota
	Authenticated
)

func (s Status) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// State is a snapshot of the session. Loading is set while a restore is pending.
type State struct {
	Status  Status
	Loading bool
	Token   string
	Expiry  time.Time
	User    *models.User
}

// Authenticated reports whether the snapshot carries a live session.
func (s State) Authenticated() bool { return s.Status == Authenticated }

// Role returns the session role, or "" when unauthenticated.
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Viewer adapts the snapshot for the route guard.
func (s State) Viewer() authz.Viewer {
	return authz.Viewer{Authenticated: s.Authenticated(), Loading: s.Loading, Role: s.Role()}
}

// AuthAPI is the subset of the auth endpoints the manager calls.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error)
}

// Navigator moves the front end to a route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Manager is the session owner.
type Manager struct {
	store TokenStore
	api   AuthAPI
	nav   Navigator
	now   func() time.Time

	mu    sync.RWMutex
	state State
	// epoch increments on every login, logout and restore start; a restore only
	// applies its result if no other write happened meanwhile.
	epoch uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager. It starts in the loading state until the first
// RestoreSession completes.
func NewManager(store TokenStore, api AuthAPI, nav Navigator, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		api:   api,
		nav:   nav,
		now:   time.Now,
		state: State{Loading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a snapshot of the session.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// User returns the session user; ok is false when unauthenticated.
func (m *Manager) User() (models.User, bool) {
	s := m.Current()
	if !s.Authenticated() || s.User == nil {
		return models.User{}, false
	}
	return *s.User, true
}

// Login exchanges credentials for a session. On failure nothing changes.
func (m *Manager) Login(ctx context.Context, creds models.LoginRequest) error {
	if err := validation.Struct(creds); err != nil {
		return err
	}

	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return err
	}
	if resp == nil || resp.Token == "" {
		return ErrMalformedResponse
	}
	claims, err := auth.Decode(resp.Token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	expiry := time.Unix(claims.Exp, 0)
	if !expiry.After(m.now()) {
		return ErrSessionExpired
	}
	if err := m.store.Save(resp.Token); err != nil {
		return err
	}

	var profile *models.User
	if !resp.User.ID.IsZero() || resp.User.Email != "" {
		profile = &resp.User
	}
	user := userFromClaims(claims, profile)
	m.mu.Lock()
	m.epoch++
	m.state = State{Status: Authenticated, Token: resp.Token, Expiry: expiry, User: user}
	m.mu.Unlock()

	log.WithFields(log.Fields{"user_id": claims.UserID, "role": claims.Role}).Info("Logged in")
	m.navigate(authz.PathDashboard)
	return nil
}

// Logout clears durable and in-memory state and returns to the login view. Safe to
// call when already logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.epoch++
	m.clearLocked()
	m.mu.Unlock()
	m.navigate(authz.PathLogin)
}

func (m *Manager) clearLocked() {
	if err := m.store.Clear(); err != nil {
		log.WithError(err).Warn("Failed to clear stored token")
	}
	m.state = State{}
}

// RestoreSession rebuilds the session from the stored token: missing token stays
// unauthenticated, expired token or failed profile fetch logs out, otherwise the
// profile is refreshed. The returned error explains why the session was dropped.
func (m *Manager) RestoreSession(ctx context.Context) error {
	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	wasAuthenticated := m.state.Authenticated()
	m.state.Loading = true
	m.mu.Unlock()

	token, err := m.store.Load()
	if err != nil || token == "" {
		if wasAuthenticated {
			m.dropIfCurrent(epoch)
		} else {
			m.finish(epoch, func() { m.state = State{} })
		}
		return err
	}

	claims, err := auth.Decode(token)
	if err != nil {
		m.dropIfCurrent(epoch)
		return err
	}
	expiry := time.Unix(claims.Exp, 0)
	if !expiry.After(m.now()) {
		log.WithField("expired_at", expiry).Info("Stored session expired")
		m.dropIfCurrent(epoch)
		return ErrSessionExpired
	}

	profile, err := m.api.Me(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to restore session")
		m.dropIfCurrent(epoch)
		return err
	}

	user := userFromClaims(claims, profile)
	m.finish(epoch, func() {
		m.state = State{Status: Authenticated, Token: token, Expiry: expiry, User: user}
	})
	return nil
}

// UpdateProfile sends the editable fields and merges the result into the session
// user. On failure the session is unchanged.
func (m *Manager) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error) {
	if !m.Current().Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	updated, err := m.api.UpdateProfile(ctx, in)
	if err != nil {
		m.HandleError(err)
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User == nil {
		return nil, ErrNotAuthenticated
	}
	u := *m.state.User
	u.Merge(*updated)
	m.state.User = &u
	out := u
	return &out, nil
}

// HandleError logs out when err is a 401 from the API and reports whether it did.
// Screens pass every service error through it.
func (m *Manager) HandleError(err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	if m.Current().Authenticated() {
		log.Info("Session rejected by the server, logging out")
	}
	m.Logout()
	return true
}

// dropIfCurrent behaves like Logout unless another write superseded this restore.
func (m *Manager) dropIfCurrent(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.clearLocked()
	m.mu.Unlock()
	m.navigate(authz.PathLogin)
}

func (m *Manager) finish(epoch uint64, apply func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return
	}
	apply()
}

func (m *Manager) navigate(path string) {
	if m.nav != nil {
		m.nav.Navigate(path)
	}
}

// userFromClaims prefers the server profile but always takes identity and role from
// the token.
func userFromClaims(c *models.Claims, profile *models.User) *models.User {
	var u models.User
	if profile != nil {
		u = *profile
	} else {
		u = models.User{Name: c.Name, Email: c.Email}
	}
	if id, err := primitive.ObjectIDFromHex(c.UserID); err == nil {
		u.ID = id
	}
	u.Role = c.Role
	if c.DriverID != "" {
		u.DriverID = c.DriverID
	}
	return &u
}
