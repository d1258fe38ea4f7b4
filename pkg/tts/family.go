package tts

import (
	"context"
	"fmt"
	"sync"
)

// Built-in model-family tags.
const (
	// ModelTypeSpeechT5 is the vocoder-dependent family: generation goes
	// through [SpeechBackend.GenerateSpeech] with an external vocoder.
	ModelTypeSpeechT5 = "speecht5"

	// ModelTypeBark accepts one conditioning value per generation call and
	// expects it under the "history_prompt" key.
	ModelTypeBark = "bark"

	// ModelTypeOpenAITTS is the family tag of [OpenAIBackend].
	ModelTypeOpenAITTS = "openai_tts"
)

// DefaultConditioningKey is the conditioning parameter name used by
// families without an override.
const DefaultConditioningKey = "speaker_embeddings"

// Family describes the calling convention of one model family. The zero
// value is the generic family: processor-prepared inputs, Generate entry
// point, conditioning under [DefaultConditioningKey].
type Family struct {
	// RequiresVocoder routes generation through GenerateSpeech with an
	// external vocoder. Construction fails without one.
	RequiresVocoder bool

	// SingleConditioning marks families whose backend accepts only one
	// conditioning value per generation call regardless of text batch size.
	// Batched conditioning is narrowed to its first element before the call.
	SingleConditioning bool

	// ConditioningKey overrides the conditioning parameter name.
	// Empty means DefaultConditioningKey.
	ConditioningKey string
}

// key returns the effective conditioning parameter name.
func (f Family) key() string {
	if f.ConditioningKey != "" {
		return f.ConditioningKey
	}
	return DefaultConditioningKey
}

var (
	familyMu sync.RWMutex
	families = map[string]Family{
		ModelTypeSpeechT5:  {RequiresVocoder: true},
		ModelTypeBark:      {SingleConditioning: true, ConditioningKey: "history_prompt"},
		ModelTypeOpenAITTS: {},
	}
)

// RegisterFamily registers the calling convention for a model-family tag.
// Returns an error if the tag is already registered.
func RegisterFamily(modelType string, f Family) error {
	familyMu.Lock()
	defer familyMu.Unlock()
	if _, ok := families[modelType]; ok {
		return fmt.Errorf("tts: family already registered for %s", modelType)
	}
	families[modelType] = f
	return nil
}

// LookupFamily returns the registered family for a model-family tag.
func LookupFamily(modelType string) (Family, bool) {
	familyMu.RLock()
	defer familyMu.RUnlock()
	f, ok := families[modelType]
	return f, ok
}

// familyFor returns the registered family, or the generic family for
// unknown tags.
func familyFor(modelType string) Family {
	f, _ := LookupFamily(modelType)
	return f
}

// familyHandler is one variant of the family dispatch table. Each variant
// implements input preparation and generation invocation for its calling
// convention.
type familyHandler interface {
	prepare(ctx context.Context, p *Pipeline, texts []string, params *SynthesisParams) (Inputs, error)
	invoke(ctx context.Context, p *Pipeline, in Inputs, params *SynthesisParams) ([]Waveform, error)
}

// handlerFor selects the dispatch variant for a family.
func handlerFor(f Family) familyHandler {
	switch {
	case f.RequiresVocoder:
		return vocoderHandler{}
	case f.SingleConditioning:
		return singleEmbeddingHandler{genericHandler{family: f}}
	default:
		return genericHandler{family: f}
	}
}

// genericHandler delegates preparation to the processor and calls the
// generic Generate entry point with passthrough generation parameters.
type genericHandler struct {
	family Family
}

func (h genericHandler) prepare(ctx context.Context, p *Pipeline, texts []string, params *SynthesisParams) (Inputs, error) {
	return p.proc().Process(ctx, texts, ProcessRequest{
		ConditioningKey: h.family.key(),
		Conditioning:    params.Conditioning,
	})
}

func (h genericHandler) invoke(ctx context.Context, p *Pipeline, in Inputs, params *SynthesisParams) ([]Waveform, error) {
	return p.backend.Generate(ctx, in, params.Generate)
}

// singleEmbeddingHandler narrows batched conditioning to its first element
// before the generic invocation, matching backends that accept a single
// conditioning value per call. The narrowing drops conditioning for every
// input but the first, so it is logged.
type singleEmbeddingHandler struct {
	genericHandler
}

func (h singleEmbeddingHandler) invoke(ctx context.Context, p *Pipeline, in Inputs, params *SynthesisParams) ([]Waveform, error) {
	if in.batchSize() > 1 && !in.Conditioning.IsZero() && in.Conditioning.BatchLen() > 1 {
		params.log(p).Warn("tts: narrowing batched conditioning to first element",
			"model_type", p.modelType,
			"batch", in.batchSize(),
			"conditioning", in.Conditioning.BatchLen(),
		)
		in.Conditioning = in.Conditioning.First()
	}
	return h.genericHandler.invoke(ctx, p, in, params)
}

// vocoderHandler tokenizes through the processor, fills in the fixed
// default speaker vector when the caller supplied no conditioning, and
// invokes the dedicated speech-generation entry point with the vocoder.
type vocoderHandler struct{}

func (vocoderHandler) prepare(ctx context.Context, p *Pipeline, texts []string, params *SynthesisParams) (Inputs, error) {
	if p.processor == nil {
		return Inputs{}, ErrProcessorRequired
	}
	in, err := p.processor.Process(ctx, texts, ProcessRequest{})
	if err != nil {
		return Inputs{}, err
	}

	cond := params.Conditioning
	if cond.IsZero() {
		if p.embeddings == nil {
			return Inputs{}, ErrNoEmbeddingSource
		}
		vec, err := p.embeddings.Vector(ctx, p.defaultSpeaker)
		if err != nil {
			return Inputs{}, fmt.Errorf("tts: load default speaker embedding: %w", err)
		}
		cond = Conditioning{Vector: vec}
	}

	in.Conditioning = cond
	in.ConditioningKey = DefaultConditioningKey
	return in, nil
}

func (vocoderHandler) invoke(ctx context.Context, p *Pipeline, in Inputs, _ *SynthesisParams) ([]Waveform, error) {
	sb := p.backend.(SpeechBackend) // checked at construction
	return sb.GenerateSpeech(ctx, in.InputIDs, in.Conditioning.Vector, p.vocoder)
}
