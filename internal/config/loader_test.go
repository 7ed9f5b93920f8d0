package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecantero/habla/internal/config"
)

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  log_level: bananas
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	t.Parallel()

	yaml := `
practice:
  correct_threshold: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range threshold, got nil")
	}
	if !strings.Contains(err.Error(), "correct_threshold") {
		t.Errorf("error should mention correct_threshold, got: %v", err)
	}
}

func TestValidate_CloseAboveCorrect(t *testing.T) {
	t.Parallel()

	yaml := `
practice:
  correct_threshold: 0.6
  close_threshold: 0.8
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error when close_threshold >= correct_threshold, got nil")
	}
	if !strings.Contains(err.Error(), "close_threshold") {
		t.Errorf("error should mention close_threshold, got: %v", err)
	}
}

func TestValidate_RateOutOfRange(t *testing.T) {
	t.Parallel()

	yaml := `
practice:
  slow_rate: 0.1
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range rate, got nil")
	}
	if !strings.Contains(err.Error(), "slow_rate") {
		t.Errorf("error should mention slow_rate, got: %v", err)
	}
}

func TestValidate_NegativeWindowSize(t *testing.T) {
	t.Parallel()

	yaml := `
practice:
  window_size: -3
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative window_size, got nil")
	}
}

func TestValidate_MissingCorpusFile(t *testing.T) {
	t.Parallel()

	yaml := `
corpus:
  path: /nonexistent/corpus.yaml
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unreadable corpus path, got nil")
	}
	if !strings.Contains(err.Error(), "corpus.path") {
		t.Errorf("error should mention corpus.path, got: %v", err)
	}
}

func TestValidate_FallbackWithoutName(t *testing.T) {
	t.Parallel()

	yaml := `
providers:
  stt:
    name: deepgram
  stt_fallbacks:
    - api_key: key-without-name
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unnamed fallback, got nil")
	}
	if !strings.Contains(err.Error(), "stt_fallbacks") {
		t.Errorf("error should mention stt_fallbacks, got: %v", err)
	}
}

func TestValidate_FallbackWithoutPrimary(t *testing.T) {
	t.Parallel()

	yaml := `
providers:
  tts_fallbacks:
    - name: local
      base_url: http://localhost:5003
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for fallbacks without a primary, got nil")
	}
	if !strings.Contains(err.Error(), "tts_fallbacks") {
		t.Errorf("error should mention tts_fallbacks, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  log_level: loud
practice:
  window_size: -1
  normal_rate: 9.0
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	for _, want := range []string{"log_level", "window_size", "normal_rate"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_ZeroValuesAreDefaults(t *testing.T) {
	t.Parallel()

	// An entirely empty practice block must pass: zero means "use default".
	yaml := `
providers:
  stt:
    name: deepgram
  tts:
    name: local
practice: {}
`
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  listen_addr: ":8080"
providers:
  stt:
    name: deepgram
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
