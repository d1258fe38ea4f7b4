package xvector

import (
	"context"
	"errors"
	"testing"

	"github.com/haivivi/ttspipe/pkg/storage"
)

func newTestStore(t *testing.T) *storage.Local {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func seedRecord(t *testing.T, store storage.FileStore, dataset string, index int, rec *Record) {
	t.Helper()
	if err := WriteRecord(context.Background(), store, dataset, index, rec); err != nil {
		t.Fatal(err)
	}
}

func TestDatasetVector(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := []float32{0.1, -0.2, 0.3}
	seedRecord(t, store, DatasetCMUArctic, DefaultSpeakerIndex, &Record{
		Speaker: "slt",
		XVector: want,
	})

	ds := NewDataset(DatasetCMUArctic, store)
	got, err := ds.Vector(ctx, DefaultSpeakerIndex)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vector[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDatasetRecordNotFound(t *testing.T) {
	ds := NewDataset("empty", newTestStore(t))

	_, err := ds.Vector(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDatasetRecordKeepsSpeaker(t *testing.T) {
	store := newTestStore(t)
	seedRecord(t, store, "ds", 7, &Record{Speaker: "bdl", XVector: []float32{1}})

	ds := NewDataset("ds", store)
	rec, err := ds.Record(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Speaker != "bdl" {
		t.Fatalf("speaker = %q, want %q", rec.Speaker, "bdl")
	}
}

func TestDatasetCacheHit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRecord(t, store, "ds", 1, &Record{XVector: []float32{0.5}})

	cache := NewMemoryCache()
	ds := NewDataset("ds", store, WithCache(cache))

	if _, err := ds.Vector(ctx, 1); err != nil {
		t.Fatal(err)
	}

	// Remove the backing file; a second read must come from the cache.
	if err := store.Delete(ctx, "ds/records/1"); err != nil {
		t.Fatal(err)
	}
	got, err := ds.Vector(ctx, 1)
	if err != nil {
		t.Fatalf("expected cache hit, got %v", err)
	}
	if got[0] != 0.5 {
		t.Fatalf("cached vector = %v, want 0.5", got[0])
	}
}

func TestDatasetCachePutFailureIsNonFatal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRecord(t, store, "ds", 2, &Record{XVector: []float32{0.7}})

	ds := NewDataset("ds", store, WithCache(failingCache{}))
	got, err := ds.Vector(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0.7 {
		t.Fatalf("vector = %v, want 0.7", got[0])
	}
}

// failingCache misses every Get and rejects every Put.
type failingCache struct{}

func (failingCache) Get(context.Context, string, int) (*Record, error) { return nil, ErrNotFound }
func (failingCache) Put(context.Context, string, int, *Record) error {
	return errors.New("cache full")
}
func (failingCache) Close() error { return nil }

func TestDatasetCacheErrorPropagates(t *testing.T) {
	store := newTestStore(t)
	seedRecord(t, store, "ds", 3, &Record{XVector: []float32{1}})

	ds := NewDataset("ds", store, WithCache(brokenCache{}))
	if _, err := ds.Vector(context.Background(), 3); err == nil {
		t.Fatal("expected cache error to propagate")
	}
}

// brokenCache fails Get with a non-miss error.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string, int) (*Record, error) {
	return nil, errors.New("disk corrupted")
}
func (brokenCache) Put(context.Context, string, int, *Record) error { return nil }
func (brokenCache) Close() error                                    { return nil }

func TestDefaultSourceRegistry(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	if Default() != nil {
		t.Fatal("expected nil default before registration")
	}

	store := newTestStore(t)
	ds := NewDataset("ds", store)
	SetDefault(ds)
	if Default() != Source(ds) {
		t.Fatal("Default did not return the registered source")
	}

	SetDefault(nil)
	if Default() != nil {
		t.Fatal("expected nil default after clearing")
	}
}
