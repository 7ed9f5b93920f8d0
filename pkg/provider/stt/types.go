package stt

import "time"

// Transcript is one finalized recognition segment from a capture provider.
type Transcript struct {
	// Text is the recognized speech content for this segment.
	Text string

	// Confidence is the provider's overall confidence in the segment
	// (0.0–1.0). Zero when the provider does not report confidence.
	Confidence float64

	// Timestamp marks when the segment's utterance started, relative to
	// session start.
	Timestamp time.Duration

	// Duration is the length of the utterance.
	Duration time.Duration
}
