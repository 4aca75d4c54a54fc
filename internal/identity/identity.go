// Package identity models who the progress belongs to: the anonymous
// device user or an authenticated account.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/mlmathr/internal/store"
)

// Identity is either anonymous or an authenticated user ID.
type Identity struct {
	userID string
}

// Anonymous returns the device-scoped identity.
func Anonymous() Identity { return Identity{} }

// Authenticated returns the identity for userID.
func Authenticated(userID string) Identity { return Identity{userID: userID} }

// IsAnonymous reports whether no user is signed in.
func (i Identity) IsAnonymous() bool { return i.userID == "" }

// UserID returns the authenticated user ID, or "" when anonymous.
func (i Identity) UserID() string { return i.userID }

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return "user:" + i.userID
}

// Provider exposes the current identity and notifies subscribers of
// transitions.
type Provider interface {
	Current() Identity
	Subscribe(fn func(Identity)) (unsubscribe func())
}

// Storage keys used by Session.
const (
	KeyUser   = "auth:user"
	KeyDevice = "device:id"
)

// ErrInvalidUserID is returned by Login for an empty or whitespace ID.
var ErrInvalidUserID = errors.New("user ID must not be empty")

// Session is a Provider whose signed-in user is persisted in a local KV,
// so the identity survives restarts.
type Session struct {
	kv KV

	mu        sync.Mutex
	current   Identity
	listeners map[int]func(Identity)
	nextID    int
}

// KV is the subset of store.KV the session needs.
type KV = store.KV

// NewSession creates an anonymous session over kv. Call Restore to pick up
// a previously signed-in user.
func NewSession(kv KV) *Session {
	return &Session{kv: kv, listeners: make(map[int]func(Identity))}
}

// Restore loads the persisted identity without notifying subscribers.
func (s *Session) Restore(ctx context.Context) (Identity, error) {
	v, ok, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return Anonymous(), fmt.Errorf("restore session: %w", err)
	}
	id := Anonymous()
	if ok && strings.TrimSpace(v) != "" {
		id = Authenticated(strings.TrimSpace(v))
	}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return id, nil
}

// Current returns the signed-in identity.
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for identity transitions.
func (s *Session) Subscribe(fn func(Identity)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Login persists userID as the signed-in user and notifies subscribers.
// Logging in as the current user is a no-op.
func (s *Session) Login(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidUserID
	}
	if err := s.kv.Set(ctx, KeyUser, userID); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.transition(Authenticated(userID))
	return nil
}

// Logout clears the signed-in user and notifies subscribers.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, KeyUser); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.transition(Anonymous())
	return nil
}

func (s *Session) transition(next Identity) {
	s.mu.Lock()
	if s.current == next {
		s.mu.Unlock()
		return
	}
	s.current = next
	fns := make([]func(Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// DeviceID returns this device's stable random ID, generating and
// persisting one on first use.
func DeviceID(ctx context.Context, kv KV) (string, error) {
	v, ok, err := kv.Get(ctx, KeyDevice)
	if err != nil {
		return "", fmt.Errorf("load device id: %w", err)
	}
	if ok {
		if _, err := uuid.Parse(v); err == nil {
			return v, nil
		}
	}
	id := uuid.NewString()
	if err := kv.Set(ctx, KeyDevice, id); err != nil {
		return "", fmt.Errorf("save device id: %w", err)
	}
	return id, nil
}

// Static is a Provider with a fixed identity, useful for one-shot commands
// and tests. SetIdentity changes it and notifies subscribers.
type Static struct {
	mu        sync.Mutex
	current   Identity
	listeners []func(Identity)
}

// NewStatic creates a Static provider.
func NewStatic(id Identity) *Static {
	return &Static{current: id}
}

func (p *Static) Current() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Static) Subscribe(fn func(Identity)) func() {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	idx := len(p.listeners) - 1
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.listeners[idx] = nil
		p.mu.Unlock()
	}
}

// SetIdentity changes the identity and notifies subscribers, even when it
// is unchanged.
func (p *Static) SetIdentity(id Identity) {
	p.mu.Lock()
	p.current = id
	fns := make([]func(Identity), 0, len(p.listeners))
	for _, fn := range p.listeners {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}
