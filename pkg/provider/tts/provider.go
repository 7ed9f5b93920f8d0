// Package tts defines the speech-playback collaborator boundary.
//
// A playback provider accepts a text string, an optional voice selection,
// and a speech-rate multiplier, and speaks it. Playback is fire-and-forget:
// the scoring engine never consumes a return value beyond the error, and a
// caller that wants to interrupt an in-flight utterance cancels its context
// and issues a new Speak call.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// SpeechRequest describes one utterance to synthesize.
type SpeechRequest struct {
	// Text is the content to speak, exactly as authored (punctuation helps
	// most synthesizers phrase correctly).
	Text string

	// VoiceID selects a voice from the provider's catalogue. Empty uses
	// the provider default.
	VoiceID string

	// Rate is the speaking-rate multiplier. The practice tool uses 0.9 for
	// normal playback and 0.7 for slow playback; 0 means provider default.
	Rate float64
}

// Provider is the abstraction over any speech-playback backend.
type Provider interface {
	// Speak synthesizes and plays req. It returns once playback has been
	// handed off (or completed, for synchronous backends). Cancelling ctx
	// interrupts synthesis and playback.
	Speak(ctx context.Context, req SpeechRequest) error

	// Voices returns the provider's current voice catalogue. Returns an
	// error if the provider cannot be reached or ctx is cancelled first.
	Voices(ctx context.Context) ([]Voice, error)
}
