// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to verify which text, voice, and rate were passed to the
// playback backend and to simulate synthesis failures or a backend that
// blocks until its context is cancelled.
package mock

import (
	"context"
	"sync"

	"github.com/ecantero/habla/pkg/provider/tts"
)

// SpeakCall records a single invocation of Speak.
type SpeakCall struct {
	// Ctx is the context passed to Speak.
	Ctx context.Context
	// Req is the SpeechRequest passed to Speak.
	Req tts.SpeechRequest
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// SpeakErr, if non-nil, is returned by every Speak call.
	SpeakErr error

	// BlockUntilCancelled makes Speak wait for ctx.Done() and return
	// ctx.Err(), simulating a long utterance that only ends when
	// interrupted.
	BlockUntilCancelled bool

	// VoicesResult is returned by Voices.
	VoicesResult []tts.Voice

	// VoicesErr, if non-nil, is returned as the error from Voices.
	VoicesErr error

	// SpeakCalls records every call to Speak in order.
	SpeakCalls []SpeakCall
}

// Speak records the call and returns SpeakErr, or blocks on ctx when
// BlockUntilCancelled is set.
func (p *Provider) Speak(ctx context.Context, req tts.SpeechRequest) error {
	p.mu.Lock()
	p.SpeakCalls = append(p.SpeakCalls, SpeakCall{Ctx: ctx, Req: req})
	err := p.SpeakErr
	block := p.BlockUntilCancelled
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// Voices returns VoicesResult, VoicesErr.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.VoicesErr != nil {
		return nil, p.VoicesErr
	}
	out := make([]tts.Voice, len(p.VoicesResult))
	copy(out, p.VoicesResult)
	return out, nil
}

// Calls returns a copy of the recorded Speak calls. Thread-safe.
func (p *Provider) Calls() []SpeakCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SpeakCall, len(p.SpeakCalls))
	copy(out, p.SpeakCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SpeakCalls = nil
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
