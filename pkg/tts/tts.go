// Package tts adapts heterogeneous text-to-speech model backends behind a
// single synthesis pipeline.
//
// A [Pipeline] wires three collaborators together: a [Backend] that turns
// prepared inputs into audio, an optional [Processor] that builds those
// inputs from raw text, and — for vocoder-dependent model families — a
// [Vocoder] that renders the backend's intermediate representation into a
// waveform. Which inputs are built and which generation entry point is
// called is decided per model family by a dispatch table (see [Family] and
// [RegisterFamily]), so new families can be added without touching the
// existing variants.
//
// # Quick Start
//
//	backend := tts.NewOpenAIBackend("sk-xxx")
//	pipe, err := tts.New(ctx, backend)
//
//	wave, err := pipe.Synthesize(ctx, "Hello from ttspipe!",
//	    tts.WithSpeakerPreset("alloy"))
//
// The returned waveform is mono float32 samples; interpret its time axis
// with [Pipeline.SampleRate].
//
// The pipeline holds no mutable state after construction. Concurrent calls
// on one Pipeline are safe as long as the backend's generation entry points
// are themselves safe for concurrent use.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// Waveform is a mono audio signal as float32 samples in [-1, 1].
type Waveform []float32

// Inputs is the prepared input structure a backend consumes.
// Backends pick the fields their family expects and ignore the rest.
type Inputs struct {
	// Texts carries the raw input texts for backends that tokenize
	// server-side (the passthrough processor fills this).
	Texts []string

	// InputIDs is the tokenized text, one row per input.
	InputIDs [][]int64

	// Conditioning steers the output voice. See [Conditioning].
	Conditioning Conditioning

	// ConditioningKey is the parameter name the model family expects the
	// conditioning under (e.g. "speaker_embeddings", "history_prompt").
	ConditioningKey string

	// Extra holds processor output the adapter does not interpret.
	Extra map[string]any
}

// batchSize reports how many inputs are stacked in the tokenized text,
// falling back to raw texts when the processor did not tokenize.
func (in *Inputs) batchSize() int {
	if len(in.InputIDs) > 0 {
		return len(in.InputIDs)
	}
	return len(in.Texts)
}

// Backend is the external generation capability: a pretrained model that
// turns prepared inputs into audio.
type Backend interface {
	// ModelType returns the model-family tag (e.g. "speecht5", "bark").
	ModelType() string

	// Config returns the backend's static model configuration.
	Config() map[string]any

	// GenerationConfig returns generation-time configuration. Values here
	// override Config when the pipeline resolves its sampling rate.
	GenerationConfig() map[string]any

	// Generate produces one waveform per prepared input. Params are
	// backend generation parameters passed through unmodified.
	Generate(ctx context.Context, inputs Inputs, params map[string]any) ([]Waveform, error)
}

// SpeechBackend is implemented by vocoder-dependent backends. The pipeline
// routes the speecht5 family through GenerateSpeech instead of Generate.
type SpeechBackend interface {
	Backend

	// GenerateSpeech generates audio from tokenized text and a single
	// speaker-embedding vector, rendering through the given vocoder.
	GenerateSpeech(ctx context.Context, inputIDs [][]int64, speakerVector []float32, vocoder Vocoder) ([]Waveform, error)
}

// Vocoder converts a backend's intermediate acoustic representation into a
// waveform. The pipeline only needs its configured output rate; the actual
// rendering happens inside [SpeechBackend.GenerateSpeech].
type Vocoder interface {
	SampleRate() int
}

// VocoderLoader resolves a vocoder reference (a model identifier or storage
// path) into a usable instance. Loading may hit the network or a local
// cache; the context bounds it.
type VocoderLoader interface {
	LoadVocoder(ctx context.Context, ref string) (Vocoder, error)
}

// VocoderLoaderFunc adapts a function to the VocoderLoader interface.
type VocoderLoaderFunc func(ctx context.Context, ref string) (Vocoder, error)

// LoadVocoder implements VocoderLoader.
func (f VocoderLoaderFunc) LoadVocoder(ctx context.Context, ref string) (Vocoder, error) {
	return f(ctx, ref)
}

// ProcessRequest is what the pipeline hands the processor alongside the
// input texts.
type ProcessRequest struct {
	// ConditioningKey is the parameter name the active family expects the
	// conditioning under.
	ConditioningKey string

	// Conditioning is the caller-supplied conditioning value, possibly zero.
	Conditioning Conditioning

	// Extra carries additional processor parameters unchanged.
	Extra map[string]any
}

// Processor maps raw text plus conditioning parameters to the prepared
// input structure a specific model family expects (tokenization, feature
// extraction, prompt lookup).
type Processor interface {
	Process(ctx context.Context, texts []string, req ProcessRequest) (Inputs, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, texts []string, req ProcessRequest) (Inputs, error)

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, texts []string, req ProcessRequest) (Inputs, error) {
	return f(ctx, texts, req)
}

// passthroughProcessor forwards raw texts untouched, for backends that
// tokenize server-side.
type passthroughProcessor struct{}

func (passthroughProcessor) Process(_ context.Context, texts []string, req ProcessRequest) (Inputs, error) {
	return Inputs{
		Texts:           texts,
		Conditioning:    req.Conditioning,
		ConditioningKey: req.ConditioningKey,
		Extra:           req.Extra,
	}, nil
}

// EmbeddingSource supplies speaker-embedding vectors by record index. It is
// consulted for the fixed default record when the vocoder-dependent family
// is invoked without explicit conditioning. [xvector.Dataset] satisfies it.
type EmbeddingSource interface {
	Vector(ctx context.Context, index int) ([]float32, error)
}

// Sentinel errors.
var (
	// ErrVocoderRequired is returned from New when the model family needs a
	// vocoder and none was supplied or loadable.
	ErrVocoderRequired = errors.New("tts: model family requires a vocoder")

	// ErrProcessorRequired is returned when the active family cannot prepare
	// inputs without a processor.
	ErrProcessorRequired = errors.New("tts: model family requires a processor")

	// ErrNoEmbeddingSource is returned when the vocoder-dependent family is
	// called without conditioning and no embedding source is configured.
	ErrNoEmbeddingSource = errors.New("tts: no speaker conditioning and no embedding source configured")
)

// ConfigError reports an invalid pipeline configuration detected at
// construction time.
type ConfigError struct {
	Op  string // the part of the configuration that failed
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tts: config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
