package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/haivivi/ttspipe/pkg/audio"
)

// speechRequest mirrors the wire shape of a speech API call.
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

func newSpeechServer(t *testing.T, samples []float32) (*httptest.Server, *[]speechRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []speechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		reqs = append(reqs, req)
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/pcm")
		w.Write(audio.EncodePCM16(samples))
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestOpenAIBackendGenerate(t *testing.T) {
	samples := []float32{0, 0.5, -0.5}
	srv, reqs := newSpeechServer(t, samples)

	b := NewOpenAIBackend("test-key",
		WithOpenAIBaseURL(srv.URL),
		WithOpenAIModel(ModelOpenAITTS1HD),
		WithOpenAIVoice("nova"),
	)

	ws, err := b.Generate(context.Background(), Inputs{
		Texts: []string{"hello", "world"},
	}, map[string]any{"speed": 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 2 {
		t.Fatalf("waveforms = %d, want 2", len(ws))
	}
	if len(ws[0]) != len(samples) {
		t.Fatalf("samples = %d, want %d", len(ws[0]), len(samples))
	}

	got := *reqs
	if len(got) != 2 {
		t.Fatalf("requests = %d, want 2", len(got))
	}
	if got[0].Model != ModelOpenAITTS1HD {
		t.Fatalf("model = %q", got[0].Model)
	}
	if got[0].Voice != "nova" {
		t.Fatalf("voice = %q, want configured default", got[0].Voice)
	}
	if got[0].Input != "hello" || got[1].Input != "world" {
		t.Fatalf("inputs = %q, %q", got[0].Input, got[1].Input)
	}
	if got[0].ResponseFormat != "pcm" {
		t.Fatalf("response_format = %q, want pcm", got[0].ResponseFormat)
	}
	if got[0].Speed != 1.5 {
		t.Fatalf("speed = %v, want 1.5", got[0].Speed)
	}
}

func TestOpenAIBackendPresetOverridesVoice(t *testing.T) {
	srv, reqs := newSpeechServer(t, []float32{0})

	b := NewOpenAIBackend("test-key", WithOpenAIBaseURL(srv.URL))

	_, err := b.Generate(context.Background(), Inputs{
		Texts:        []string{"a", "b"},
		Conditioning: Conditioning{Presets: []string{"shimmer", "echo"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := *reqs
	if got[0].Voice != "shimmer" || got[1].Voice != "echo" {
		t.Fatalf("voices = %q, %q", got[0].Voice, got[1].Voice)
	}
}

func TestOpenAIBackendDefaultVoice(t *testing.T) {
	srv, reqs := newSpeechServer(t, []float32{0})

	b := NewOpenAIBackend("test-key", WithOpenAIBaseURL(srv.URL))

	if _, err := b.Generate(context.Background(), Inputs{Texts: []string{"a"}}, nil); err != nil {
		t.Fatal(err)
	}
	if got := *reqs; got[0].Voice != "alloy" {
		t.Fatalf("voice = %q, want alloy", got[0].Voice)
	}
}

func TestOpenAIBackendRejectsTokenIDs(t *testing.T) {
	b := NewOpenAIBackend("test-key")
	_, err := b.Generate(context.Background(), Inputs{InputIDs: [][]int64{{1, 2}}}, nil)
	if err == nil {
		t.Fatal("expected error for tokenized inputs")
	}
}

func TestOpenAIBackendInPipeline(t *testing.T) {
	srv, _ := newSpeechServer(t, []float32{0.1, 0.2})

	b := NewOpenAIBackend("test-key", WithOpenAIBaseURL(srv.URL))
	p, err := New(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}

	if p.ModelType() != ModelTypeOpenAITTS {
		t.Fatalf("model type = %q", p.ModelType())
	}
	if p.SampleRate() != 24000 {
		t.Fatalf("rate = %d, want 24000", p.SampleRate())
	}

	w, err := p.Synthesize(context.Background(), "hi", WithSpeakerPreset("fable"))
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 2 {
		t.Fatalf("samples = %d, want 2", len(w))
	}
}
