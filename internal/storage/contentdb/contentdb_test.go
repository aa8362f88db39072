package contentdb

import (
	"bytes"
	"context"
	"testing"

	"PortalDHT/internal/domain"
)

// contentStore is the contract both implementations must satisfy.
type contentStore interface {
	Put(ctx context.Context, key domain.ContentKey, value []byte) error
	Get(ctx context.Context, key domain.ContentKey) ([]byte, error)
	Delete(ctx context.Context, key domain.ContentKey) error
	SizeBytes() uint64
	Close() error
}

func testStores(t *testing.T) map[string]contentStore {
	t.Helper()
	badgerStore, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return map[string]contentStore{
		"badger": badgerStore,
		"memory": NewMemory(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			key := domain.ContentKey("content-key-1")
			value := []byte("some content bytes")

			if err := store.Put(ctx, key, value); err != nil {
				t.Fatalf("Put() unexpected error: %v", err)
			}
			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if !bytes.Equal(got, value) {
				t.Errorf("Get() = %q, want %q", got, value)
			}

			// overwrite keeps the latest value
			newValue := []byte("rewritten")
			if err := store.Put(ctx, key, newValue); err != nil {
				t.Fatalf("Put() unexpected error: %v", err)
			}
			got, err = store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if !bytes.Equal(got, newValue) {
				t.Errorf("Get() after overwrite = %q, want %q", got, newValue)
			}
		})
	}
}

func TestStoreGetAbsent(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			got, err := store.Get(ctx, domain.ContentKey("never-stored"))
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if got != nil {
				t.Errorf("Get() on absent key = %q, want nil", got)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			key := domain.ContentKey("doomed")
			if err := store.Put(ctx, key, []byte("v")); err != nil {
				t.Fatalf("Put() unexpected error: %v", err)
			}
			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("Delete() unexpected error: %v", err)
			}
			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if got != nil {
				t.Errorf("Get() after Delete() = %q, want nil", got)
			}

			// deleting an absent key is not an error
			if err := store.Delete(ctx, domain.ContentKey("absent")); err != nil {
				t.Errorf("Delete() on absent key unexpected error: %v", err)
			}
		})
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := domain.ContentKey("persisted")
	value := []byte("survives a restart")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if err := store.Put(ctx, key, value); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("New() on existing dir unexpected error: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get() after reopen = %q, want %q", got, value)
	}
}

func TestMemorySizeBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if got := m.SizeBytes(); got != 0 {
		t.Fatalf("SizeBytes() of empty store = %d, want 0", got)
	}
	if err := m.Put(ctx, domain.ContentKey("a"), make([]byte, 100)); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if err := m.Put(ctx, domain.ContentKey("b"), make([]byte, 50)); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if got := m.SizeBytes(); got != 150 {
		t.Errorf("SizeBytes() = %d, want 150", got)
	}

	// overwrite replaces the accounted size, delete releases it
	if err := m.Put(ctx, domain.ContentKey("a"), make([]byte, 10)); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if got := m.SizeBytes(); got != 60 {
		t.Errorf("SizeBytes() after overwrite = %d, want 60", got)
	}
	if err := m.Delete(ctx, domain.ContentKey("b")); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if got := m.SizeBytes(); got != 10 {
		t.Errorf("SizeBytes() after delete = %d, want 10", got)
	}
	if got := m.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
