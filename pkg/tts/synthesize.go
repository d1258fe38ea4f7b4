package tts

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// SynthesisParams is the typed split of per-call parameters: Conditioning
// is consumed at preparation time, Generate is passed through to the
// backend's generation entry point unmodified.
type SynthesisParams struct {
	// Conditioning is the speaker conditioning value for this call.
	Conditioning Conditioning

	// Generate holds backend generation parameters (e.g. "speed",
	// "do_sample"). The adapter does not interpret them.
	Generate map[string]any

	logger *slog.Logger
}

// log returns the per-call logger.
func (sp *SynthesisParams) log(p *Pipeline) *slog.Logger {
	if sp.logger != nil {
		return sp.logger
	}
	return p.logger
}

// SynthesisOption configures one synthesis call.
type SynthesisOption func(*SynthesisParams)

// WithSpeakerPreset conditions the call on a provider-defined voice preset.
func WithSpeakerPreset(name string) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning.Preset = name }
}

// WithSpeakerPresets supplies one voice preset per batched input text.
func WithSpeakerPresets(names ...string) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning.Presets = names }
}

// WithSpeakerVector conditions the call on a precomputed speaker-embedding
// vector.
func WithSpeakerVector(vec []float32) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning.Vector = vec }
}

// WithSpeakerVectors supplies one embedding vector per batched input text.
// Families marked single-conditioning use only the first (see
// [Conditioning.First]).
func WithSpeakerVectors(vecs [][]float32) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning.Vectors = vecs }
}

// WithVoicePrompt conditions the call on a keyed bundle of prompt arrays.
func WithVoicePrompt(named map[string][]float32) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning.Named = named }
}

// WithConditioning sets the full conditioning value directly.
func WithConditioning(c Conditioning) SynthesisOption {
	return func(sp *SynthesisParams) { sp.Conditioning = c }
}

// WithGenerateParam adds one backend generation parameter, passed through
// to the generation entry point unchanged.
func WithGenerateParam(key string, value any) SynthesisOption {
	return func(sp *SynthesisParams) {
		if sp.Generate == nil {
			sp.Generate = map[string]any{}
		}
		sp.Generate[key] = value
	}
}

// WithGenerateParams merges backend generation parameters into the call.
func WithGenerateParams(params map[string]any) SynthesisOption {
	return func(sp *SynthesisParams) {
		if sp.Generate == nil {
			sp.Generate = make(map[string]any, len(params))
		}
		for k, v := range params {
			sp.Generate[k] = v
		}
	}
}

// Synthesize generates audio for a single text. See SynthesizeBatch.
func (p *Pipeline) Synthesize(ctx context.Context, text string, opts ...SynthesisOption) (Waveform, error) {
	ws, err := p.SynthesizeBatch(ctx, []string{text}, opts...)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, nil
	}
	return ws[0], nil
}

// SynthesizeBatch generates one waveform per input text.
//
// The call runs synchronously: inputs are prepared for the backend's model
// family, the family's generation entry point is invoked, and the result is
// returned as produced. Collaborator errors (processor, backend, embedding
// source) propagate unchanged; there are no retries and no timeouts beyond
// ctx.
func (p *Pipeline) SynthesizeBatch(ctx context.Context, texts []string, opts ...SynthesisOption) ([]Waveform, error) {
	params := &SynthesisParams{}
	for _, opt := range opts {
		opt(params)
	}
	params.logger = p.logger.With("call", uuid.NewString())

	params.logger.Debug("tts: synthesize",
		"model_type", p.modelType,
		"texts", len(texts),
		"conditioning", params.Conditioning.BatchLen(),
	)

	in, err := p.handler.prepare(ctx, p, texts, params)
	if err != nil {
		return nil, err
	}
	ws, err := p.handler.invoke(ctx, p, in, params)
	if err != nil {
		return nil, err
	}
	return p.postprocess(ws), nil
}

// postprocess is an identity hook: output shaping can be added here later
// without changing the calling contract.
func (p *Pipeline) postprocess(ws []Waveform) []Waveform { return ws }
