package xvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/ttspipe/pkg/storage"
)

// Dataset reads speaker-embedding records from a FileStore, one
// msgpack-encoded [Record] per index under
// "<dataset>/records/<index>". Reads go through the configured cache when
// one is set; fetched records are cached best-effort.
type Dataset struct {
	name  string
	store storage.FileStore
	cache Cache
}

var _ Source = (*Dataset)(nil)

// DatasetOption configures a Dataset.
type DatasetOption func(*Dataset)

// WithCache routes record reads through a cache.
func WithCache(c Cache) DatasetOption {
	return func(d *Dataset) { d.cache = c }
}

// NewDataset creates a dataset reader for the named dataset.
func NewDataset(name string, store storage.FileStore, opts ...DatasetOption) *Dataset {
	d := &Dataset{name: name, store: store}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the dataset identifier.
func (d *Dataset) Name() string { return d.name }

// Vector returns the embedding vector stored at the given record index.
func (d *Dataset) Vector(ctx context.Context, index int) ([]float32, error) {
	rec, err := d.Record(ctx, index)
	if err != nil {
		return nil, err
	}
	return rec.XVector, nil
}

// Record returns the full record at the given index.
func (d *Dataset) Record(ctx context.Context, index int) (*Record, error) {
	if d.cache != nil {
		rec, err := d.cache.Get(ctx, d.name, index)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	rec, err := d.fetch(ctx, index)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Put(ctx, d.name, index, rec); err != nil {
			slog.Warn("xvector: cache put failed", "dataset", d.name, "index", index, "err", err)
		}
	}
	return rec, nil
}

// recordPath builds the storage path of one record.
func (d *Dataset) recordPath(index int) string {
	return path.Join(d.name, "records", strconv.Itoa(index))
}

func (d *Dataset) fetch(ctx context.Context, index int) (*Record, error) {
	rc, err := d.store.Read(ctx, d.recordPath(index))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("xvector: %s[%d]: %w", d.name, index, ErrNotFound)
		}
		return nil, fmt.Errorf("xvector: read %s[%d]: %w", d.name, index, err)
	}
	defer rc.Close()

	var rec Record
	if err := msgpack.NewDecoder(rc).Decode(&rec); err != nil {
		return nil, fmt.Errorf("xvector: decode %s[%d]: %w", d.name, index, err)
	}
	return &rec, nil
}

// WriteRecord stores a record at the given index, for seeding datasets.
func WriteRecord(ctx context.Context, store storage.FileStore, dataset string, index int, rec *Record) error {
	w, err := store.Write(ctx, path.Join(dataset, "records", strconv.Itoa(index)))
	if err != nil {
		return fmt.Errorf("xvector: write %s[%d]: %w", dataset, index, err)
	}
	if err := msgpack.NewEncoder(w).Encode(rec); err != nil {
		w.Close()
		return fmt.Errorf("xvector: encode %s[%d]: %w", dataset, index, err)
	}
	return w.Close()
}
