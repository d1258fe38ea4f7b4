// Package xvector provides speaker-embedding datasets for conditioning
// text-to-speech backends.
//
// A [Dataset] reads msgpack-encoded records from a [storage.FileStore]
// (local directory, S3 bucket, ...), optionally through a [Cache]. The
// package-level default source is the process-wide fallback consulted by
// the tts pipeline when a caller supplies no conditioning; the host
// application decides when to configure and when to tear it down.
//
//	store, _ := storage.NewLocal("/var/lib/ttspipe/datasets")
//	cache, _ := xvector.NewBadger(xvector.BadgerOptions{Dir: cacheDir})
//	xvector.SetDefault(xvector.NewDataset(xvector.DatasetCMUArctic, store,
//	    xvector.WithCache(cache)))
package xvector

import (
	"context"
	"errors"
	"sync"
)

const (
	// DatasetCMUArctic is the dataset identifier of the CMU-Arctic xvector
	// corpus, the customary source of default SpeechT5 speaker conditioning.
	DatasetCMUArctic = "cmu-arctic-xvectors"

	// DefaultSpeakerIndex is the fixed record used as default conditioning
	// when a caller supplies none. This is a hardcoded fallback, not a
	// sampled one.
	DefaultSpeakerIndex = 7305
)

// ErrNotFound is returned when a dataset record does not exist.
var ErrNotFound = errors.New("xvector: record not found")

// Source supplies speaker-embedding vectors by record index.
type Source interface {
	Vector(ctx context.Context, index int) ([]float32, error)
}

// Record is one dataset entry.
type Record struct {
	// Speaker is the corpus speaker label (e.g. "slt"), when present.
	Speaker string `msgpack:"speaker,omitempty"`

	// XVector is the speaker-embedding vector.
	XVector []float32 `msgpack:"xvector"`
}

var (
	defaultMu     sync.RWMutex
	defaultSource Source
)

// SetDefault registers the process-wide default embedding source. Pass nil
// to clear it. Teardown of the underlying store or cache stays with the
// caller.
func SetDefault(s Source) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSource = s
}

// Default returns the process-wide default embedding source, or nil when
// none is registered.
func Default() Source {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSource
}
