// Package mock provides test doubles for the stt package interfaces.
//
// Use Provider to verify that the caller starts sessions with the expected
// StreamConfig. Use Session to feed controlled final transcript segments and
// to inspect which audio chunks were delivered.
//
// Example:
//
//	sess := &mock.Session{FinalsCh: make(chan stt.Transcript, 2)}
//	sess.FinalsCh <- stt.Transcript{Text: "hola mundo"}
//	close(sess.FinalsCh)
//	p := &mock.Provider{Session: sess}
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/ecantero/habla/pkg/provider/stt"
)

// StartStreamCall records a single invocation of Provider.StartStream.
type StartStreamCall struct {
	// Ctx is the context passed to StartStream.
	Ctx context.Context
	// Cfg is the StreamConfig passed to StartStream.
	Cfg stt.StreamConfig
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is the SessionHandle returned by StartStream. If nil,
	// StartStream returns a new Session with a buffered, already-closed
	// Finals channel.
	Session stt.SessionHandle

	// StartStreamErr, if non-nil, is returned as the error from StartStream.
	StartStreamErr error

	// StartStreamCalls records every call to StartStream.
	StartStreamCalls []StartStreamCall
}

// StartStream records the call and returns Session, StartStreamErr.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartStreamCalls = append(p.StartStreamCalls, StartStreamCall{Ctx: ctx, Cfg: cfg})
	if p.StartStreamErr != nil {
		return nil, p.StartStreamErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	ch := make(chan stt.Transcript)
	close(ch)
	return &Session{FinalsCh: ch}, nil
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartStreamCalls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)

// Session is a mock implementation of stt.SessionHandle. Pre-populate
// FinalsCh with the transcript segments the consumer should receive, then
// close it (or let Close do so when CloseClosesFinals is set).
type Session struct {
	mu sync.Mutex

	// FinalsCh is the channel returned by Finals(). Callers own this
	// channel and are responsible for sending to it in tests.
	FinalsCh chan stt.Transcript

	// CloseClosesFinals makes Close close FinalsCh, mimicking providers
	// that flush and terminate the stream on Close.
	CloseClosesFinals bool

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// SentChunks records a copy of every chunk passed to SendAudio.
	SentChunks [][]byte

	closed bool
}

// SendAudio records the chunk and returns SendAudioErr. Sending after Close
// returns an error.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("mock: send on closed session")
	}
	if s.SendAudioErr != nil {
		return s.SendAudioErr
	}
	c := make([]byte, len(chunk))
	copy(c, chunk)
	s.SentChunks = append(s.SentChunks, c)
	return nil
}

// Finals returns FinalsCh.
func (s *Session) Finals() <-chan stt.Transcript {
	return s.FinalsCh
}

// Close marks the session closed. Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.CloseClosesFinals {
		close(s.FinalsCh)
	}
	return nil
}

// Ensure Session implements stt.SessionHandle at compile time.
var _ stt.SessionHandle = (*Session)(nil)
