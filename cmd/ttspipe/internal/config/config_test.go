package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromCreatesEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != path {
		t.Fatalf("path = %q, want %q", cfg.Path(), path)
	}
	if cfg.APIKey != "" {
		t.Fatalf("fresh config should be empty, got %+v", cfg)
	}
}

func TestSetSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}

	for key, value := range map[string]string{
		"api_key":     "sk-test",
		"base_url":    "https://example.com/v1",
		"model":       "tts-1-hd",
		"voice":       "nova",
		"dataset_dir": "/data/datasets",
		"cache_dir":   "/data/cache",
	} {
		if err := cfg.Set(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.APIKey != "sk-test" || got.Model != "tts-1-hd" || got.Voice != "nova" {
		t.Fatalf("reloaded config = %+v", got)
	}
	if got.DatasetDir != "/data/datasets" || got.CacheDir != "/data/cache" {
		t.Fatalf("reloaded config = %+v", got)
	}
}

func TestSetUnknownKey(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("short"); got != "*****" {
		t.Fatalf("MaskAPIKey(short) = %q", got)
	}
	got := MaskAPIKey("sk-1234567890abcdef")
	if !strings.HasPrefix(got, "sk-1") || !strings.HasSuffix(got, "cdef") {
		t.Fatalf("MaskAPIKey = %q", got)
	}
	if strings.Contains(got, "567890") {
		t.Fatalf("middle not masked: %q", got)
	}
}
