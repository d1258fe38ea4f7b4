package tts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haivivi/ttspipe/pkg/xvector"
)

// Pipeline is the text-to-speech adapter. It is immutable after New;
// per-call state lives entirely in the call.
type Pipeline struct {
	backend   Backend
	modelType string
	family    Family
	handler   familyHandler

	vocoder    Vocoder
	processor  Processor
	embeddings EmbeddingSource

	// defaultSpeaker is the fixed embedding record index used when the
	// vocoder-dependent family is called without conditioning.
	defaultSpeaker int

	// sampleRate of produced waveforms; 0 when unresolved.
	sampleRate int

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	vocoder    Vocoder
	vocoderRef string
	loader     VocoderLoader
	processor  Processor
	sampleRate int
	embeddings EmbeddingSource
	logger     *slog.Logger
}

// WithVocoder supplies a vocoder instance. Required for vocoder-dependent
// families unless WithVocoderRef is used.
func WithVocoder(v Vocoder) Option {
	return func(o *options) { o.vocoder = v }
}

// WithVocoderRef supplies a vocoder by reference, resolved at construction
// through the configured [VocoderLoader]. Ignored when WithVocoder is set.
func WithVocoderRef(ref string) Option {
	return func(o *options) { o.vocoderRef = ref }
}

// WithVocoderLoader sets the loader used to resolve WithVocoderRef.
func WithVocoderLoader(l VocoderLoader) Option {
	return func(o *options) { o.loader = l }
}

// WithProcessor sets the input processor. When unset, families that do not
// require tokenization fall back to a passthrough processor that forwards
// raw texts.
func WithProcessor(p Processor) Option {
	return func(o *options) { o.processor = p }
}

// WithSampleRate overrides the sampling rate when the backend configuration
// does not declare one. A vocoder's configured rate still takes precedence.
func WithSampleRate(rate int) Option {
	return func(o *options) { o.sampleRate = rate }
}

// WithEmbeddingSource sets the source for the default speaker embedding.
// When unset, the process-wide default registered with [xvector.SetDefault]
// is used.
func WithEmbeddingSource(s EmbeddingSource) Option {
	return func(o *options) { o.embeddings = s }
}

// WithLogger sets the pipeline logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a Pipeline around a generation backend.
//
// Construction fails with a [ConfigError] when the backend's model family
// requires a vocoder and none is supplied or loadable. Resolving a vocoder
// reference may hit the network; ctx bounds it.
//
// The sampling rate is resolved once, in order: the vocoder's configured
// rate (vocoder-dependent families), an explicit [WithSampleRate] override,
// then the backend's static configuration merged with its generation
// configuration (generation values win) under the keys "sample_rate" and
// "sampling_rate". If none match it stays unresolved and
// [Pipeline.SampleRate] reports 0.
func New(ctx context.Context, backend Backend, opts ...Option) (*Pipeline, error) {
	if backend == nil {
		return nil, &ConfigError{Op: "backend", Err: errors.New("backend is nil")}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	modelType := backend.ModelType()
	fam := familyFor(modelType)

	voc := o.vocoder
	if fam.RequiresVocoder {
		if _, ok := backend.(SpeechBackend); !ok {
			return nil, &ConfigError{Op: "backend", Err: errors.New("family " + modelType + " requires a backend with GenerateSpeech")}
		}
		if voc == nil && o.vocoderRef != "" {
			if o.loader == nil {
				return nil, &ConfigError{Op: "vocoder", Err: errors.New("vocoder reference given but no loader configured")}
			}
			v, err := o.loader.LoadVocoder(ctx, o.vocoderRef)
			if err != nil {
				return nil, &ConfigError{Op: "vocoder", Err: err}
			}
			voc = v
		}
		if voc == nil {
			return nil, &ConfigError{Op: "vocoder", Err: ErrVocoderRequired}
		}
	}

	embeddings := o.embeddings
	if embeddings == nil {
		if src := xvector.Default(); src != nil {
			embeddings = src
		}
	}

	return &Pipeline{
		backend:        backend,
		modelType:      modelType,
		family:         fam,
		handler:        handlerFor(fam),
		vocoder:        voc,
		processor:      o.processor,
		embeddings:     embeddings,
		defaultSpeaker: xvector.DefaultSpeakerIndex,
		sampleRate:     resolveSampleRate(backend, voc, fam, o.sampleRate),
		logger:         o.logger,
	}, nil
}

// ModelType returns the backend's model-family tag.
func (p *Pipeline) ModelType() string { return p.modelType }

// SampleRate returns the sampling rate of produced waveforms in Hz, or 0
// when it could not be resolved from the vocoder, an explicit override, or
// the backend configuration.
func (p *Pipeline) SampleRate() int { return p.sampleRate }

// proc returns the effective processor, falling back to passthrough for
// backends that tokenize server-side.
func (p *Pipeline) proc() Processor {
	if p.processor != nil {
		return p.processor
	}
	return passthroughProcessor{}
}

// resolveSampleRate applies the deterministic first-match resolution order
// documented on New.
func resolveSampleRate(backend Backend, voc Vocoder, fam Family, explicit int) int {
	if fam.RequiresVocoder && voc != nil {
		return voc.SampleRate()
	}
	if explicit > 0 {
		return explicit
	}

	merged := map[string]any{}
	for k, v := range backend.Config() {
		merged[k] = v
	}
	for k, v := range backend.GenerationConfig() {
		merged[k] = v
	}
	for _, name := range []string{"sample_rate", "sampling_rate"} {
		if v, ok := merged[name]; ok {
			if rate, ok := asInt(v); ok {
				return rate
			}
		}
	}
	return 0
}

// asInt normalizes the numeric types a configuration map may carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
