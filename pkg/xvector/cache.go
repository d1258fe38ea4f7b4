package xvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores fetched records keyed by dataset identifier and record
// index. Implementations must be safe for concurrent use; teardown is the
// host application's call via Close.
type Cache interface {
	// Get returns the cached record, or an error wrapping ErrNotFound on a
	// miss.
	Get(ctx context.Context, dataset string, index int) (*Record, error)

	// Put stores a record, overwriting any cached value.
	Put(ctx context.Context, dataset string, index int, rec *Record) error

	// Close releases cache resources.
	Close() error
}

// cacheKey builds the flat cache key for a record.
func cacheKey(dataset string, index int) string {
	return dataset + "/" + strconv.Itoa(index)
}

// MemoryCache is an in-memory Cache for tests and short-lived processes.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]*Record
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]*Record)}
}

func (c *MemoryCache) Get(_ context.Context, dataset string, index int) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.m[cacheKey(dataset, index)]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (c *MemoryCache) Put(_ context.Context, dataset string, index int, rec *Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[cacheKey(dataset, index)] = rec
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// BadgerOptions configures the BadgerDB-backed cache.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence; useful for testing
	// against the real engine.
	InMemory bool

	// Logger sets the badger logger. Nil installs a quiet logger that
	// forwards only warnings and errors to slog.
	Logger badger.Logger
}

// BadgerCache is a persistent Cache backed by BadgerDB v4. Records are
// stored msgpack-encoded under "<dataset>/<index>" keys.
type BadgerCache struct {
	db *badger.DB
}

var _ Cache = (*BadgerCache)(nil)

// NewBadger opens (or creates) a BadgerDB-backed cache.
func NewBadger(opts BadgerOptions) (*BadgerCache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("xvector: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(quietLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("xvector: open cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func (c *BadgerCache) Get(_ context.Context, dataset string, index int) (*Record, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey(dataset, index)))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("xvector: decode cached %s[%d]: %w", dataset, index, err)
	}
	return &rec, nil
}

func (c *BadgerCache) Put(_ context.Context, dataset string, index int, rec *Record) error {
	raw, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("xvector: encode %s[%d]: %w", dataset, index, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cacheKey(dataset, index)), raw)
	})
}

// Close releases the underlying BadgerDB.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// quietLogger forwards badger warnings and errors to slog and drops the
// rest.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...any) { slog.Error("badger: " + fmt.Sprintf(f, v...)) }
func (quietLogger) Warningf(f string, v ...any) {
	slog.Warn("badger: " + fmt.Sprintf(f, v...))
}
func (quietLogger) Infof(string, ...any)  {}
func (quietLogger) Debugf(string, ...any) {}
