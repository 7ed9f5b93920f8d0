package config_test

import (
	"testing"

	"github.com/ecantero/habla/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo},
		Practice: config.PracticeConfig{
			WindowSize:       5,
			CorrectThreshold: 0.85,
			CloseThreshold:   0.5,
			NormalRate:       0.9,
			SlowRate:         0.7,
		},
	}
	d := config.Diff(cfg, cfg)
	if d.Any() {
		t.Errorf("expected no changes for identical configs, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel = %q, want %q", d.NewLogLevel, config.LogDebug)
	}
}

func TestDiff_ThresholdsChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{Practice: config.PracticeConfig{CorrectThreshold: 0.85}}
	new := &config.Config{Practice: config.PracticeConfig{CorrectThreshold: 0.9}}

	d := config.Diff(old, new)
	if !d.ThresholdsChanged {
		t.Error("expected ThresholdsChanged=true")
	}
	if d.RatesChanged || d.VoiceChanged || d.CorpusChanged {
		t.Errorf("unexpected extra changes: %+v", d)
	}
}

func TestDiff_WindowSizeChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{Practice: config.PracticeConfig{WindowSize: 5}}
	new := &config.Config{Practice: config.PracticeConfig{WindowSize: 8}}

	if d := config.Diff(old, new); !d.ThresholdsChanged {
		t.Error("expected ThresholdsChanged=true for window size change")
	}
}

func TestDiff_RatesChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{Practice: config.PracticeConfig{SlowRate: 0.7}}
	new := &config.Config{Practice: config.PracticeConfig{SlowRate: 0.6}}

	d := config.Diff(old, new)
	if !d.RatesChanged {
		t.Error("expected RatesChanged=true")
	}
	if d.ThresholdsChanged {
		t.Error("expected ThresholdsChanged=false")
	}
}

func TestDiff_VoiceChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{Practice: config.PracticeConfig{Voice: "es-1", Language: "es"}}
	new := &config.Config{Practice: config.PracticeConfig{Voice: "es-2", Language: "es"}}

	if d := config.Diff(old, new); !d.VoiceChanged {
		t.Error("expected VoiceChanged=true")
	}

	new2 := &config.Config{Practice: config.PracticeConfig{Voice: "es-1", Language: "es-MX"}}
	if d := config.Diff(old, new2); !d.VoiceChanged {
		t.Error("expected VoiceChanged=true for language change")
	}
}

func TestDiff_CorpusChanged(t *testing.T) {
	t.Parallel()

	old := &config.Config{}
	new := &config.Config{Corpus: config.CorpusConfig{Path: "/etc/habla/corpus.yaml"}}

	d := config.Diff(old, new)
	if !d.CorpusChanged {
		t.Error("expected CorpusChanged=true")
	}
	if !d.Any() {
		t.Error("Any() should report true when corpus changed")
	}
}
