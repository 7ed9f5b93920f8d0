// Package stt defines the speech-capture collaborator boundary.
//
// A capture provider wraps a speech-to-text service and exposes a recording
// session: audio goes in, finalized transcript segments come out on a
// channel. The scoring engine only ever sees the segments after the session
// has fully terminated — they are concatenated space-joined into the single
// raw transcript handed to the aligner. Interim/partial recognition results
// are deliberately not part of this interface; nothing downstream consumes
// them.
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// StreamConfig describes the audio format and recognition hints for a new
// recording session.
type StreamConfig struct {
	// SampleRate is the audio sample rate in Hz (commonly 16000 for mono
	// speech capture).
	SampleRate int

	// Channels is the number of audio channels; 1 is what most recognizers
	// expect.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g. "es",
	// "es-MX"). Empty lets the provider use its default.
	Language string

	// Keywords biases recognition toward the given vocabulary. Sessions
	// pass the target paragraph's words here so the recognizer is less
	// likely to mangle exactly the words being practiced.
	Keywords []string
}

// SessionHandle is one open recording session. Callers must Close the
// handle when recording ends; Close flushes pending audio and causes the
// Finals channel to drain and close. All methods are safe for concurrent
// use.
type SessionHandle interface {
	// SendAudio delivers a chunk of raw PCM audio to the recognizer. The
	// chunk must match the format agreed in StreamConfig. Calling SendAudio
	// after Close returns an error.
	SendAudio(chunk []byte) error

	// Finals returns the channel of finalized transcript segments. The
	// channel is closed once the session has ended and every committed
	// segment has been delivered.
	Finals() <-chan Transcript

	// Close ends the session and releases its resources. Calling Close
	// more than once is safe and returns nil.
	Close() error
}

// Provider is the abstraction over any speech-capture backend.
type Provider interface {
	// StartStream opens a new recording session. The returned handle is
	// ready to accept audio immediately. Returns an error if the session
	// cannot be established or ctx is already cancelled.
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}
