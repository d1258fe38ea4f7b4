package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/haivivi/ttspipe/pkg/audio"
)

// OpenAI TTS defaults.
const (
	// ModelOpenAITTS1 is the low-latency speech model.
	ModelOpenAITTS1 = "tts-1"

	// ModelOpenAITTS1HD is the higher-quality speech model.
	ModelOpenAITTS1HD = "tts-1-hd"

	openAIDefaultVoice = "alloy"

	// openAISampleRate is the fixed rate of the PCM response format.
	openAISampleRate = 24000
)

// OpenAIBackend implements [Backend] on the OpenAI speech API. It accepts
// raw texts (no tokenization) and treats conditioning presets as provider
// voice names. Any OpenAI-compatible provider works via WithOpenAIBaseURL.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	voice  string
}

var _ Backend = (*OpenAIBackend)(nil)

// OpenAIOption configures an OpenAIBackend.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model      string
	voice      string
	baseURL    string
	httpClient *http.Client
}

// WithOpenAIModel sets the speech model. Defaults to [ModelOpenAITTS1].
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.model = model }
}

// WithOpenAIVoice sets the default voice used when a call carries no
// preset conditioning.
func WithOpenAIVoice(voice string) OpenAIOption {
	return func(c *openAIConfig) { c.voice = voice }
}

// WithOpenAIBaseURL points the backend at an OpenAI-compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithOpenAIHTTPClient sets the HTTP client used for API calls.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) { c.httpClient = hc }
}

// NewOpenAIBackend creates a backend for the OpenAI speech API.
func NewOpenAIBackend(apiKey string, opts ...OpenAIOption) *OpenAIBackend {
	cfg := openAIConfig{
		model:      ModelOpenAITTS1,
		voice:      openAIDefaultVoice,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAIBackend{
		client: &client,
		model:  cfg.model,
		voice:  cfg.voice,
	}
}

// ModelType tags this backend's model family.
func (b *OpenAIBackend) ModelType() string { return ModelTypeOpenAITTS }

// Config declares the fixed 24 kHz rate of the PCM response format.
func (b *OpenAIBackend) Config() map[string]any {
	return map[string]any{"sample_rate": openAISampleRate}
}

// GenerationConfig returns nil; the API has no generation defaults to
// merge.
func (b *OpenAIBackend) GenerationConfig() map[string]any { return nil }

// Generate synthesizes one waveform per input text. The API takes one
// input per request, so batches are issued sequentially. Recognized
// generation parameters: "speed" (float64, 0.25 to 4.0).
func (b *OpenAIBackend) Generate(ctx context.Context, in Inputs, params map[string]any) ([]Waveform, error) {
	if len(in.Texts) == 0 {
		return nil, errors.New("tts: openai backend requires raw texts, not token IDs")
	}

	ws := make([]Waveform, len(in.Texts))
	for i, text := range in.Texts {
		w, err := b.speak(ctx, text, b.voiceFor(in.Conditioning, i), params)
		if err != nil {
			return nil, fmt.Errorf("tts: openai speech [%d]: %w", i, err)
		}
		ws[i] = w
	}
	return ws, nil
}

// voiceFor picks the voice for one batch element from preset conditioning,
// falling back to the configured default.
func (b *OpenAIBackend) voiceFor(c Conditioning, i int) string {
	if i < len(c.Presets) {
		return c.Presets[i]
	}
	if c.Preset != "" {
		return c.Preset
	}
	return b.voice
}

func (b *OpenAIBackend) speak(ctx context.Context, text, voice string, params map[string]any) (Waveform, error) {
	req := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(b.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}
	if speed, ok := asFloat(params["speed"]); ok {
		req.Speed = openai.Float(speed)
	}

	resp, err := b.client.Audio.Speech.New(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return Waveform(audio.DecodePCM16(raw)), nil
}

// asFloat normalizes the numeric types a generation-parameter map may
// carry.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
