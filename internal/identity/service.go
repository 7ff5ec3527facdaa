package identity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nextpv/bd-academy/internal/platform/kv"
)

// CurrentKey is the storage slot holding the signed-in identity.
const CurrentKey = "auth:current"

// storedIdentity is the persisted shape of the current-identity slot.
// IsAdmin is deliberately never persisted; it is recomputed from the email
// on every load so admin status stays a pure function of the address.
type storedIdentity struct {
	Email string `json:"email"`
}

// Service owns the current identity and its persistence slot.
type Service struct {
	resolver *Resolver
	store    kv.Store

	mu      sync.RWMutex
	current *Identity
}

// NewService creates the identity service and restores any persisted
// sign-in. A corrupt or invalid slot is treated as signed-out.
func NewService(ctx context.Context, resolver *Resolver, store kv.Store) *Service {
	s := &Service{
		resolver: resolver,
		store:    store,
	}

	var saved storedIdentity
	if kv.Load(ctx, store, CurrentKey, &saved) && saved.Email != "" {
		if ident, ok := resolver.Resolve(saved.Email); ok {
			s.current = &ident
			slog.Info("restored identity", "email", ident.Email, "admin", ident.IsAdmin)
		}
	}

	return s
}

// Resolver returns the underlying email resolver.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// SignIn resolves input and, when valid, makes it the current identity and
// persists it. On failure the previous identity is left untouched.
func (s *Service) SignIn(ctx context.Context, input string) (Identity, bool) {
	ident, ok := s.resolver.Resolve(input)
	if !ok {
		return Identity{}, false
	}

	s.mu.Lock()
	s.current = &ident
	s.mu.Unlock()

	kv.SaveBestEffort(ctx, s.store, CurrentKey, storedIdentity{Email: ident.Email})
	slog.Info("signed in", "email", ident.Email, "admin", ident.IsAdmin)
	return ident, true
}

// SignOut clears the current identity and its persistence slot.
func (s *Service) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	kv.DeleteBestEffort(ctx, s.store, CurrentKey)
	slog.Info("signed out")
}

// Current returns the active identity, if any.
func (s *Service) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}
