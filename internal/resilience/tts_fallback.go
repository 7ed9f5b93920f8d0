package resilience

import (
	"context"

	"github.com/ecantero/habla/pkg/provider/tts"
)

// TTSFallback implements [tts.Provider] with automatic failover across multiple
// playback backends. Each backend has its own circuit breaker.
type TTSFallback struct {
	group *FallbackGroup[tts.Provider]
}

// Compile-time interface assertion.
var _ tts.Provider = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred backend.
func NewTTSFallback(primary tts.Provider, primaryName string, cfg FallbackConfig) *TTSFallback {
	return &TTSFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional playback provider as a fallback.
func (f *TTSFallback) AddFallback(name string, provider tts.Provider) {
	f.group.AddFallback(name, provider)
}

// Speak synthesizes and plays req using the first healthy provider.
func (f *TTSFallback) Speak(ctx context.Context, req tts.SpeechRequest) error {
	return f.group.Execute(func(p tts.Provider) error {
		return p.Speak(ctx, req)
	})
}

// Voices returns available voices from the first healthy provider.
func (f *TTSFallback) Voices(ctx context.Context) ([]tts.Voice, error) {
	return ExecuteWithResult(f.group, func(p tts.Provider) ([]tts.Voice, error) {
		return p.Voices(ctx)
	})
}
