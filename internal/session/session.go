// Package session coordinates one learner's practice flow: loading a
// paragraph, recording an attempt through the capture provider, scoring the
// transcript, playing model pronunciation, and persisting results.
//
// A [Session] is safe for concurrent use, but the practice flow itself is
// sequential: at most one recording attempt and one playback can be in
// flight at a time. Starting a new playback interrupts the previous one.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/history"
	"github.com/ecantero/habla/internal/observe"
	"github.com/ecantero/habla/internal/paragraph"
	"github.com/ecantero/habla/pkg/provider/stt"
	"github.com/ecantero/habla/pkg/provider/tts"
)

// Sentinel errors returned by Session operations.
var (
	// ErrNoCapture is returned when a recording operation is requested but
	// no capture provider is configured.
	ErrNoCapture = errors.New("session: no capture provider configured")

	// ErrNoPlayback is returned when playback is requested but no playback
	// provider is configured.
	ErrNoPlayback = errors.New("session: no playback provider configured")

	// ErrNoParagraph is returned when an attempt is started before a
	// paragraph has been loaded.
	ErrNoParagraph = errors.New("session: no paragraph loaded")

	// ErrAttemptInProgress is returned by StartAttempt while a previous
	// attempt is still recording.
	ErrAttemptInProgress = errors.New("session: attempt already in progress")

	// ErrNotRecording is returned by PushAudio and FinishAttempt when no
	// attempt is recording.
	ErrNotRecording = errors.New("session: no attempt in progress")
)

// Default audio format for capture streams.
const (
	captureSampleRate = 16000
	captureChannels   = 1
)

// Settings tunes the scoring engine and playback voice. The zero value of
// any field selects the default noted on the corresponding
// config.PracticeConfig field.
type Settings struct {
	WindowSize       int
	CorrectThreshold float64
	CloseThreshold   float64
	NormalRate       float64
	SlowRate         float64
	Language         string
	Voice            string
}

// withDefaults fills in zero-valued fields.
func (s Settings) withDefaults() Settings {
	if s.NormalRate == 0 {
		s.NormalRate = 0.9
	}
	if s.SlowRate == 0 {
		s.SlowRate = 0.7
	}
	if s.Language == "" {
		s.Language = "es"
	}
	return s
}

// Capabilities reports which collaborator-dependent operations the session
// can perform. Loading and re-scoring a paragraph never require providers.
type Capabilities struct {
	// Capture is true when recording attempts is possible.
	Capture bool

	// Playback is true when model pronunciation is possible.
	Playback bool
}

// Config holds the dependencies for a [Session].
type Config struct {
	// Corpus supplies the practice paragraphs. Must not be nil.
	Corpus *paragraph.Corpus

	// Capture is the speech-capture provider. May be nil; recording
	// operations then return [ErrNoCapture].
	Capture stt.Provider

	// Playback is the pronunciation playback provider. May be nil; playback
	// operations then return [ErrNoPlayback].
	Playback tts.Provider

	// Store persists evaluated attempts. When nil an in-memory store is
	// used.
	Store history.Store

	// Metrics receives session telemetry. When nil the package-level
	// default instruments are used.
	Metrics *observe.Metrics
}

// Result is the outcome of one finished attempt.
type Result struct {
	// Transcript is the space-joined recognized text the attempt was
	// scored on. Empty when nothing was recognized.
	Transcript string

	// Words carries the per-word verdicts after scoring.
	Words []align.Word

	// Summary aggregates the verdicts. Summary.Evaluated is false when the
	// transcript was empty; the paragraph state is then left untouched.
	Summary align.Summary
}

// Session is one learner's practice session.
type Session struct {
	corpus   *paragraph.Corpus
	capture  stt.Provider
	playback tts.Provider
	store    history.Store
	metrics  *observe.Metrics
	aligner  *align.Aligner
	settings Settings

	mu           sync.Mutex
	tier         paragraph.Difficulty
	para         *paragraph.Paragraph
	handle       stt.SessionHandle
	captureStart time.Time
	speakCancel  context.CancelFunc
	speakGen     int
	lastSummary  align.Summary
	closed       bool
}

// New creates a [Session]. Settings zero values select defaults.
func New(cfg Config, settings Settings) (*Session, error) {
	if cfg.Corpus == nil {
		return nil, errors.New("session: Corpus must not be nil")
	}
	if cfg.Store == nil {
		cfg.Store = history.NewMemStore()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	settings = settings.withDefaults()

	var opts []align.Option
	if settings.WindowSize > 0 {
		opts = append(opts, align.WithWindowSize(settings.WindowSize))
	}
	if settings.CorrectThreshold > 0 {
		opts = append(opts, align.WithCorrectThreshold(settings.CorrectThreshold))
	}
	if settings.CloseThreshold > 0 {
		opts = append(opts, align.WithCloseThreshold(settings.CloseThreshold))
	}

	s := &Session{
		corpus:   cfg.Corpus,
		capture:  cfg.Capture,
		playback: cfg.Playback,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		aligner:  align.New(opts...),
		settings: settings,
	}
	s.metrics.ActiveSessions.Add(context.Background(), 1)
	return s, nil
}

// Capabilities reports which provider-backed operations are available.
func (s *Session) Capabilities() Capabilities {
	return Capabilities{
		Capture:  s.capture != nil,
		Playback: s.playback != nil,
	}
}

// Load selects the paragraph at index within the given difficulty tier and
// makes it the session's current paragraph. The index wraps around the tier
// size. Loading aborts a recording attempt in progress.
func (s *Session) Load(tier paragraph.Difficulty, index int) error {
	para, err := s.corpus.Pick(tier, index)
	if err != nil {
		return fmt.Errorf("session: load paragraph: %w", err)
	}

	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	s.tier = tier
	s.para = para
	s.lastSummary = align.Summary{}
	s.mu.Unlock()

	if handle != nil {
		_ = handle.Close()
	}
	return nil
}

// Paragraph returns the current paragraph, or nil when none is loaded.
func (s *Session) Paragraph() *paragraph.Paragraph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.para
}

// Summary returns the summary of the most recent evaluated attempt on the
// current paragraph. The zero Summary is returned before the first
// evaluated attempt.
func (s *Session) Summary() align.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}

// StartAttempt begins a recording attempt on the current paragraph. All
// verdicts are reset to neutral and a capture stream is opened with the
// paragraph's words as recognition keywords.
func (s *Session) StartAttempt(ctx context.Context) error {
	if s.capture == nil {
		return ErrNoCapture
	}

	s.mu.Lock()
	if s.para == nil {
		s.mu.Unlock()
		return ErrNoParagraph
	}
	if s.handle != nil {
		s.mu.Unlock()
		return ErrAttemptInProgress
	}
	s.para.Reset()
	s.lastSummary = align.Summary{}
	words := s.para.Words()
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if w.Normalized != "" {
			keywords = append(keywords, w.Normalized)
		}
	}
	s.mu.Unlock()

	handle, err := s.capture.StartStream(ctx, stt.StreamConfig{
		SampleRate: captureSampleRate,
		Channels:   captureChannels,
		Language:   s.settings.Language,
		Keywords:   keywords,
	})
	if err != nil {
		s.metrics.RecordProviderError(ctx, "capture", "stt")
		return fmt.Errorf("session: start capture stream: %w", err)
	}

	s.mu.Lock()
	if s.handle != nil {
		// A concurrent StartAttempt won the race.
		s.mu.Unlock()
		_ = handle.Close()
		return ErrAttemptInProgress
	}
	s.handle = handle
	s.captureStart = time.Now()
	s.mu.Unlock()

	observe.Logger(ctx).Info("attempt started",
		"tier", string(s.tier),
		"words", len(keywords),
	)
	return nil
}

// PushAudio forwards a chunk of captured audio to the open recording
// session.
func (s *Session) PushAudio(chunk []byte) error {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()

	if handle == nil {
		return ErrNotRecording
	}
	if err := handle.SendAudio(chunk); err != nil {
		return fmt.Errorf("session: push audio: %w", err)
	}
	return nil
}

// FinishAttempt ends the recording, collects the finalized transcript
// segments, and scores them against the current paragraph.
//
// When nothing was recognized the attempt is discarded: verdicts keep their
// reset state, nothing is persisted, and the returned Summary has
// Evaluated set to false.
func (s *Session) FinishAttempt(ctx context.Context) (Result, error) {
	s.mu.Lock()
	handle := s.handle
	s.handle = nil
	para := s.para
	tier := s.tier
	started := s.captureStart
	s.mu.Unlock()

	if handle == nil {
		return Result{}, ErrNotRecording
	}
	if err := handle.Close(); err != nil {
		s.metrics.RecordProviderError(ctx, "capture", "stt")
		return Result{}, fmt.Errorf("session: close capture stream: %w", err)
	}
	s.metrics.CaptureDuration.Record(ctx, time.Since(started).Seconds())

	var segments []string
	for t := range handle.Finals() {
		if t.Text != "" {
			segments = append(segments, t.Text)
		}
	}
	transcript := strings.Join(segments, " ")

	words, summary := s.aligner.Align(para.Words(), transcript)
	if !summary.Evaluated {
		s.metrics.EmptyTranscripts.Add(ctx, 1)
		observe.Logger(ctx).Info("attempt discarded, nothing recognized",
			"tier", string(tier),
		)
		return Result{Words: para.Words(), Summary: summary}, nil
	}

	s.mu.Lock()
	para.SetWords(words)
	s.lastSummary = summary
	s.mu.Unlock()

	s.metrics.RecordAttempt(ctx, string(tier), string(summary.Band), summary.Score)

	attempt := &history.Attempt{
		Tier:       tier,
		Paragraph:  para.Text,
		Transcript: transcript,
		Score:      summary.Score,
		Band:       summary.Band,
		Correct:    summary.Correct,
		Close:      summary.Close,
		Poor:       summary.Poor,
	}
	if err := s.store.Record(ctx, attempt); err != nil {
		// History is a write-behind; a storage hiccup must not void the
		// learner's attempt.
		observe.Logger(ctx).Warn("failed to record attempt", "err", err)
	}

	observe.Logger(ctx).Info("attempt evaluated",
		"tier", string(tier),
		"score", summary.Score,
		"band", string(summary.Band),
	)
	return Result{Transcript: transcript, Words: words, Summary: summary}, nil
}

// Say plays model pronunciation for text. A playback already in flight is
// interrupted first. With slow set, the reduced speaking rate is used.
func (s *Session) Say(ctx context.Context, text string, slow bool) error {
	if s.playback == nil {
		return ErrNoPlayback
	}

	speakCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.speakCancel != nil {
		s.speakCancel()
	}
	s.speakCancel = cancel
	s.speakGen++
	gen := s.speakGen
	s.mu.Unlock()

	rate := s.settings.NormalRate
	if slow {
		rate = s.settings.SlowRate
	}

	start := time.Now()
	err := s.playback.Speak(speakCtx, tts.SpeechRequest{
		Text:    text,
		VoiceID: s.settings.Voice,
		Rate:    rate,
	})
	s.metrics.PlaybackDuration.Record(ctx, time.Since(start).Seconds())

	s.mu.Lock()
	// Only clear the cancel func if no newer playback has replaced it.
	if s.speakGen == gen {
		s.speakCancel = nil
	}
	s.mu.Unlock()
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.metrics.RecordProviderError(ctx, "playback", "tts")
		return fmt.Errorf("session: speak: %w", err)
	}
	return err
}

// SayWord plays model pronunciation for the target word at index in the
// current paragraph.
func (s *Session) SayWord(ctx context.Context, index int, slow bool) error {
	s.mu.Lock()
	para := s.para
	s.mu.Unlock()

	if para == nil {
		return ErrNoParagraph
	}
	words := para.Words()
	if index < 0 || index >= len(words) {
		return fmt.Errorf("session: word index %d out of range [0, %d)", index, len(words))
	}
	return s.Say(ctx, words[index].Original, slow)
}

// SayParagraph plays model pronunciation for the whole current paragraph.
func (s *Session) SayParagraph(ctx context.Context, slow bool) error {
	s.mu.Lock()
	para := s.para
	s.mu.Unlock()

	if para == nil {
		return ErrNoParagraph
	}
	return s.Say(ctx, para.Text, slow)
}

// History returns up to limit recent recorded attempts, newest first.
func (s *Session) History(ctx context.Context, limit int) ([]history.Attempt, error) {
	return s.store.ListRecent(ctx, limit)
}

// Close releases session resources: an open capture stream is closed and
// in-flight playback is interrupted. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	handle := s.handle
	s.handle = nil
	cancel := s.speakCancel
	s.speakCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if handle != nil {
		err = handle.Close()
	}
	s.metrics.ActiveSessions.Add(context.Background(), -1)
	return err
}
