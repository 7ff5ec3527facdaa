package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nextpv/bd-academy/internal/platform/kv"
)

type record struct {
	Name  string         `json:"name"`
	Score int            `json:"score"`
	Tags  map[string]int `json:"tags"`
}

func stores(t *testing.T) map[string]kv.Store {
	t.Helper()

	file, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	return map[string]kv.Store{
		"memory": kv.NewMemoryStore(),
		"file":   file,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := record{Name: "a@b.com", Score: 85, Tags: map[string]int{"s1": 1}}
			kv.SaveBestEffort(ctx, store, "progress:a@b.com", want)

			var got record
			if !kv.Load(ctx, store, "progress:a@b.com", &got) {
				t.Fatal("Load() = false, want true after save")
			}
			if got.Name != want.Name || got.Score != want.Score {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
			if got.Tags["s1"] != 1 {
				t.Errorf("Tags[s1] = %d, want 1", got.Tags["s1"])
			}
		})
	}
}

func TestStore_GetAbsent(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "nonexistent")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if ok {
				t.Error("Get() ok = true for absent key")
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "k", []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := store.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := store.Get(ctx, "k"); ok {
				t.Error("Get() ok = true after delete")
			}
		})
	}
}

func TestStore_DeleteAbsent(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Delete(ctx, "never-set"); err != nil {
				t.Errorf("Delete() of absent key error = %v, want nil", err)
			}
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			kv.SaveBestEffort(ctx, store, "k", record{Score: 1})
			kv.SaveBestEffort(ctx, store, "k", record{Score: 2})

			var got record
			if !kv.Load(ctx, store, "k", &got) {
				t.Fatal("Load() = false after save")
			}
			if got.Score != 2 {
				t.Errorf("Score = %d, want 2 (last write wins)", got.Score)
			}
		})
	}
}

func TestLoad_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.Set(ctx, "k", []byte("{not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got := record{Name: "default", Score: 42}
	if kv.Load(ctx, store, "k", &got) {
		t.Error("Load() = true for corrupt payload, want false")
	}
	if got.Name != "default" || got.Score != 42 {
		t.Errorf("default mutated: %+v", got)
	}
}

func TestLoad_CorruptFileOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := kv.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	kv.SaveBestEffort(ctx, store, "progress:x", record{Score: 9})

	// Corrupt every stored file behind the store's back.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		os.WriteFile(filepath.Join(dir, e.Name()), []byte("garbage"), 0o644)
	}

	got := record{Score: -1}
	if kv.Load(ctx, store, "progress:x", &got) {
		t.Error("Load() = true for corrupt file, want false")
	}
	if got.Score != -1 {
		t.Errorf("Score = %d, want untouched default -1", got.Score)
	}
}

func TestFileStore_KeyCharacters(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// Keys carry colons, slashes and emails; none may leak into the path.
	keys := []string{
		"auth:current",
		"progress:jan.novak@example.com",
		"content-overrides",
		"weird/../key",
	}
	for _, key := range keys {
		if err := store.Set(ctx, key, []byte(`{"ok":true}`)); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
		if _, ok, err := store.Get(ctx, key); err != nil || !ok {
			t.Errorf("Get(%q) = ok %v, err %v; want ok", key, ok, err)
		}
	}
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	if _, err := kv.NewFileStore(""); err == nil {
		t.Fatal("NewFileStore(\"\") should return error")
	}
}

// failingStore simulates an unavailable backend.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, context.DeadlineExceeded
}
func (failingStore) Set(context.Context, string, []byte) error { return context.DeadlineExceeded }
func (failingStore) Delete(context.Context, string) error      { return context.DeadlineExceeded }

func TestBestEffort_BackendDown(t *testing.T) {
	ctx := context.Background()
	store := failingStore{}

	// None of these may panic or surface an error.
	kv.SaveBestEffort(ctx, store, "k", record{Score: 1})
	kv.DeleteBestEffort(ctx, store, "k")

	got := record{Score: 7}
	if kv.Load(ctx, store, "k", &got) {
		t.Error("Load() = true with backend down, want false")
	}
	if got.Score != 7 {
		t.Errorf("Score = %d, want untouched default 7", got.Score)
	}
}
