package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/ttspipe/pkg/storage"
)

// Vocoder artifact layout inside a FileStore. A reference names the
// directory holding both files.
const (
	vocoderConfigFile  = "config.yaml"
	vocoderWeightsFile = "model.bin"
)

// vocoderConfig is the stored configuration of a vocoder artifact.
type vocoderConfig struct {
	SamplingRate int `yaml:"sampling_rate"`
}

// StoredVocoder is a vocoder resolved from a FileStore artifact. It carries
// the configured output rate and opens the weights on demand; running the
// weights is the speech backend's job.
type StoredVocoder struct {
	store storage.FileStore
	ref   string
	rate  int
}

var _ Vocoder = (*StoredVocoder)(nil)

// SampleRate returns the artifact's configured output rate.
func (v *StoredVocoder) SampleRate() int { return v.rate }

// Ref returns the storage reference the vocoder was loaded from.
func (v *StoredVocoder) Ref() string { return v.ref }

// OpenWeights opens the weights blob for a backend to consume. The caller
// must close the returned reader.
func (v *StoredVocoder) OpenWeights(ctx context.Context) (io.ReadCloser, error) {
	return v.store.Read(ctx, v.ref+"/"+vocoderWeightsFile)
}

// StoreVocoderLoader resolves vocoder references against a FileStore. A
// reference is a directory holding config.yaml (with "sampling_rate") and
// model.bin.
type StoreVocoderLoader struct {
	store storage.FileStore
}

var _ VocoderLoader = (*StoreVocoderLoader)(nil)

// NewStoreVocoderLoader creates a loader over the given store.
func NewStoreVocoderLoader(store storage.FileStore) *StoreVocoderLoader {
	return &StoreVocoderLoader{store: store}
}

// LoadVocoder implements VocoderLoader.
func (l *StoreVocoderLoader) LoadVocoder(ctx context.Context, ref string) (Vocoder, error) {
	rc, err := l.store.Read(ctx, ref+"/"+vocoderConfigFile)
	if err != nil {
		return nil, fmt.Errorf("tts: load vocoder %s: %w", ref, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("tts: read vocoder config %s: %w", ref, err)
	}
	var cfg vocoderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("tts: parse vocoder config %s: %w", ref, err)
	}
	if cfg.SamplingRate <= 0 {
		return nil, fmt.Errorf("tts: vocoder %s declares no sampling_rate", ref)
	}

	ok, err := l.store.Exists(ctx, ref+"/"+vocoderWeightsFile)
	if err != nil {
		return nil, fmt.Errorf("tts: check vocoder weights %s: %w", ref, err)
	}
	if !ok {
		return nil, fmt.Errorf("tts: vocoder %s has no weights", ref)
	}

	return &StoredVocoder{store: l.store, ref: ref, rate: cfg.SamplingRate}, nil
}
