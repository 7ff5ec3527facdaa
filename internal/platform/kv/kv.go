// Package kv provides the key-value persistence layer used for learner
// progress, the current identity slot and content overrides.
//
// Persistence is best-effort by contract: reads that fail (missing key,
// corrupt payload, unreachable backend) degrade to a caller-supplied default
// and writes never surface errors to the caller. The application stays usable
// in memory even when durability is lost.
package kv

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Store is the minimal key-value contract every backend implements.
// Get reports ok=false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Load reads and unmarshals the value at key into v. When the key is absent,
// the payload does not parse, or the backend fails, v is left untouched and
// Load returns false; callers pre-populate v with their default.
func Load(ctx context.Context, s Store, key string, v any) bool {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		slog.Warn("kv read failed, using default", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("kv payload corrupt, using default", "key", key, "error", err)
		return false
	}
	return true
}

// SaveBestEffort marshals v and writes it at key. Failures are logged and
// swallowed.
func SaveBestEffort(ctx context.Context, s Store, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("kv marshal failed, value not persisted", "key", key, "error", err)
		return
	}
	if err := s.Set(ctx, key, raw); err != nil {
		slog.Warn("kv write failed, value not persisted", "key", key, "error", err)
	}
}

// DeleteBestEffort removes key. Failures are logged and swallowed.
func DeleteBestEffort(ctx context.Context, s Store, key string) {
	if err := s.Delete(ctx, key); err != nil {
		slog.Warn("kv delete failed", "key", key, "error", err)
	}
}
