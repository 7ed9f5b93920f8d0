package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"deepgram"},
	"tts": {"local"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	for i, entry := range cfg.Providers.STTFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.stt_fallbacks[%d] has no name", i))
			continue
		}
		validateProviderName("stt", entry.Name)
	}
	for i, entry := range cfg.Providers.TTSFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.tts_fallbacks[%d] has no name", i))
			continue
		}
		validateProviderName("tts", entry.Name)
	}

	// Provider availability warnings
	if cfg.Providers.STT.Name == "" {
		slog.Warn("no capture provider configured; recording attempts will not be possible")
	}
	if cfg.Providers.TTS.Name == "" {
		slog.Warn("no playback provider configured; model pronunciation will not be available")
	}
	if cfg.Providers.STT.Name == "" && len(cfg.Providers.STTFallbacks) > 0 {
		errs = append(errs, errors.New("providers.stt_fallbacks configured without a primary providers.stt"))
	}
	if cfg.Providers.TTS.Name == "" && len(cfg.Providers.TTSFallbacks) > 0 {
		errs = append(errs, errors.New("providers.tts_fallbacks configured without a primary providers.tts"))
	}

	// Practice tuning ranges. A zero value means "use the default" and is
	// always accepted.
	p := cfg.Practice
	if p.WindowSize < 0 {
		errs = append(errs, fmt.Errorf("practice.window_size %d is negative", p.WindowSize))
	}
	if p.CorrectThreshold != 0 && (p.CorrectThreshold <= 0 || p.CorrectThreshold > 1) {
		errs = append(errs, fmt.Errorf("practice.correct_threshold %.2f is out of range (0, 1]", p.CorrectThreshold))
	}
	if p.CloseThreshold != 0 && (p.CloseThreshold <= 0 || p.CloseThreshold > 1) {
		errs = append(errs, fmt.Errorf("practice.close_threshold %.2f is out of range (0, 1]", p.CloseThreshold))
	}
	if p.CorrectThreshold != 0 && p.CloseThreshold != 0 && p.CloseThreshold >= p.CorrectThreshold {
		errs = append(errs, fmt.Errorf("practice.close_threshold %.2f must be below practice.correct_threshold %.2f", p.CloseThreshold, p.CorrectThreshold))
	}
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"practice.normal_rate", p.NormalRate},
		{"practice.slow_rate", p.SlowRate},
	} {
		if rate.value != 0 && (rate.value < 0.5 || rate.value > 2.0) {
			errs = append(errs, fmt.Errorf("%s %.2f is out of range [0.5, 2.0]", rate.name, rate.value))
		}
	}
	if p.NormalRate != 0 && p.SlowRate != 0 && p.SlowRate > p.NormalRate {
		slog.Warn("practice.slow_rate is faster than practice.normal_rate",
			"slow_rate", p.SlowRate,
			"normal_rate", p.NormalRate,
		)
	}

	// Corpus availability
	if cfg.Corpus.Path != "" {
		if _, err := os.Stat(cfg.Corpus.Path); err != nil {
			errs = append(errs, fmt.Errorf("corpus.path %q is not readable: %w", cfg.Corpus.Path, err))
		}
	}

	// History availability
	if cfg.History.PostgresDSN == "" {
		slog.Warn("history.postgres_dsn is empty; attempt history will not survive restarts")
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
