// Package local provides a playback provider backed by a local speech
// synthesis server (Piper, Coqui, or anything with a compatible HTTP API).
// It implements the tts.Provider interface.
//
// The server contract is small: POST /api/tts with a JSON body of
// {"text","voice","rate"} returns raw audio bytes, and GET /api/voices
// returns a JSON voice list. Synthesized audio is streamed into the
// configured sink, which is expected to be a player process or audio
// device writer supplied by the host application.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ecantero/habla/pkg/provider/tts"
)

const defaultTimeout = 30 * time.Second

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Useful for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithSink sets the writer that receives synthesized audio. The default
// discards audio, which suits servers that play locally themselves.
func WithSink(w io.Writer) Option {
	return func(c *Client) {
		c.sink = w
	}
}

// Client implements tts.Provider against a local synthesis server.
type Client struct {
	baseURL string
	http    *http.Client
	sink    io.Writer
}

// New creates a Client for the synthesis server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("local: baseURL must not be empty")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		sink:    io.Discard,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// speakBody is the JSON request body for /api/tts.
type speakBody struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
}

// Speak synthesizes req on the server and streams the returned audio into
// the sink. A non-2xx response is an error; the caller decides whether to
// surface or swallow it (playback failures must never disturb scoring
// state).
func (c *Client) Speak(ctx context.Context, req tts.SpeechRequest) error {
	body, err := json.Marshal(speakBody{Text: req.Text, Voice: req.VoiceID, Rate: req.Rate})
	if err != nil {
		return fmt.Errorf("local: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("local: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("local: synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("local: synthesize: unexpected status %s", resp.Status)
	}

	if _, err := io.Copy(c.sink, resp.Body); err != nil {
		return fmt.Errorf("local: stream audio: %w", err)
	}
	return nil
}

// voiceEntry is one element of the /api/voices JSON response.
type voiceEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Voices fetches the server's voice catalogue.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("local: build request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("local: list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local: list voices: unexpected status %s", resp.Status)
	}

	var entries []voiceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("local: decode voices: %w", err)
	}

	voices := make([]tts.Voice, len(entries))
	for i, e := range entries {
		voices[i] = tts.Voice{ID: e.ID, Name: e.Name, Language: e.Language}
	}
	return voices, nil
}

// Ensure Client implements tts.Provider at compile time.
var _ tts.Provider = (*Client)(nil)
