// Package edits is the content-override layer: admins can shadow any piece of
// static curriculum text with a replacement, resolved preferentially at
// render time.
//
// The override map is deliberately global, not scoped per identity: it acts
// as a shared lightweight CMS, so an admin's edits are visible to every
// learner reading from the same store. Writes only happen from the admin's
// own interactive action, so last-write-wins is acceptable and no locking
// beyond the in-process mutex is provided.
package edits

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nextpv/bd-academy/internal/identity"
	"github.com/nextpv/bd-academy/internal/platform/kv"
)

// StorageKey is the single global slot holding the override map.
const StorageKey = "content-overrides"

// Proposal is a pending edit handed to the UI for input collection. The core
// never blocks on a prompt; the UI gathers the replacement text and calls
// CommitEdit or CancelEdit.
type Proposal struct {
	Key     string `json:"key"`
	Current string `json:"current"`
}

// Store owns the override map and its pending proposals.
type Store struct {
	store kv.Store

	mu        sync.RWMutex
	overrides map[string]string
	pending   map[string]Proposal
}

// NewStore creates the override store, restoring any persisted map. A missing
// or corrupt slot starts empty.
func NewStore(ctx context.Context, store kv.Store) *Store {
	s := &Store{
		store:     store,
		overrides: make(map[string]string),
		pending:   make(map[string]Proposal),
	}

	overrides := make(map[string]string)
	if kv.Load(ctx, store, StorageKey, &overrides) {
		s.overrides = overrides
		slog.Info("content overrides loaded", "count", len(overrides))
	}

	return s
}

// Resolve returns the override for key when one exists, otherwise fallback.
// Total and pure: there is no error path, and overrides are visible to every
// identity, admin or not.
func (s *Store) Resolve(key, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.overrides[key]; ok {
		return v
	}
	return fallback
}

// Has reports whether key currently has an override. An empty-string override
// counts: presence is distinct from value.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overrides[key]
	return ok
}

// Len returns the number of stored overrides.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}

// ProposeEdit opens a pending edit for key, prefilled with the currently
// resolved text. Non-admin identities get a no-op and ok=false.
func (s *Store) ProposeEdit(ident identity.Identity, key, fallback string) (Proposal, bool) {
	if !ident.IsAdmin {
		return Proposal{}, false
	}

	p := Proposal{Key: key, Current: s.Resolve(key, fallback)}

	s.mu.Lock()
	s.pending[key] = p
	s.mu.Unlock()

	return p, true
}

// CommitEdit stores value as the override for key and persists the whole map.
// It is a no-op unless the identity is admin and a proposal for key is live.
// An empty string is a valid override, distinct from "no override".
func (s *Store) CommitEdit(ctx context.Context, ident identity.Identity, key, value string) bool {
	if !ident.IsAdmin {
		return false
	}

	s.mu.Lock()
	if _, ok := s.pending[key]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, key)
	s.overrides[key] = value
	snapshot := s.snapshot()
	s.mu.Unlock()

	kv.SaveBestEffort(ctx, s.store, StorageKey, snapshot)
	slog.Info("content override saved", "key", key, "admin", ident.Email)
	return true
}

// CancelEdit drops the pending proposal for key, leaving the map untouched.
func (s *Store) CancelEdit(ident identity.Identity, key string) {
	if !ident.IsAdmin {
		return
	}

	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// ClearAll empties the override map and its persistence slot. No-op for
// non-admin identities. The caller is responsible for user confirmation.
func (s *Store) ClearAll(ctx context.Context, ident identity.Identity) bool {
	if !ident.IsAdmin {
		return false
	}

	s.mu.Lock()
	s.overrides = make(map[string]string)
	s.pending = make(map[string]Proposal)
	s.mu.Unlock()

	kv.DeleteBestEffort(ctx, s.store, StorageKey)
	slog.Info("content overrides cleared", "admin", ident.Email)
	return true
}

// snapshot copies the override map; callers must hold s.mu.
func (s *Store) snapshot() map[string]string {
	out := make(map[string]string, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out
}
