package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ecantero/habla/internal/align"
	"github.com/ecantero/habla/internal/history"
	"github.com/ecantero/habla/internal/paragraph"
	"github.com/ecantero/habla/internal/session"
)

// maxAudioChunk bounds one audio POST body. Chunks come from short capture
// buffers; anything larger indicates a misbehaving client.
const maxAudioChunk = 1 << 20

// registerAPI mounts the practice REST API on mux.
func (a *App) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", a.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", a.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/paragraph", a.handleGetParagraph)
	mux.HandleFunc("POST /api/sessions/{id}/paragraph", a.handleLoadParagraph)
	mux.HandleFunc("POST /api/sessions/{id}/attempt/start", a.handleStartAttempt)
	mux.HandleFunc("POST /api/sessions/{id}/attempt/audio", a.handlePushAudio)
	mux.HandleFunc("POST /api/sessions/{id}/attempt/finish", a.handleFinishAttempt)
	mux.HandleFunc("POST /api/sessions/{id}/say", a.handleSay)
	mux.HandleFunc("GET /api/sessions/{id}/history", a.handleHistory)
}

// Wire DTOs. The engine types stay internal; handlers translate at the
// boundary.

type sessionResponse struct {
	ID       string `json:"id"`
	Capture  bool   `json:"capture"`
	Playback bool   `json:"playback"`
}

type loadParagraphRequest struct {
	Tier  string `json:"tier"`
	Index int    `json:"index"`
}

type wordDTO struct {
	Original string `json:"original"`
	Hint     string `json:"hint"`
	Status   string `json:"status"`
}

type paragraphResponse struct {
	Tier    string      `json:"tier,omitempty"`
	Text    string      `json:"text"`
	Words   []wordDTO   `json:"words"`
	Summary *summaryDTO `json:"summary,omitempty"`
}

type summaryDTO struct {
	Score   int    `json:"score"`
	Band    string `json:"band"`
	Correct int    `json:"correct"`
	Close   int    `json:"close"`
	Poor    int    `json:"poor"`
}

type attemptResponse struct {
	Evaluated  bool        `json:"evaluated"`
	Transcript string      `json:"transcript,omitempty"`
	Words      []wordDTO   `json:"words"`
	Summary    *summaryDTO `json:"summary,omitempty"`
}

type sayRequest struct {
	// Exactly one of Text, WordIndex, or Paragraph selects what to speak.
	Text      string `json:"text,omitempty"`
	WordIndex *int   `json:"word_index,omitempty"`
	Paragraph bool   `json:"paragraph,omitempty"`
	Slow      bool   `json:"slow,omitempty"`
}

type attemptDTO struct {
	ID         int64     `json:"id"`
	Tier       string    `json:"tier"`
	Paragraph  string    `json:"paragraph"`
	Transcript string    `json:"transcript"`
	Score      int       `json:"score"`
	Band       string    `json:"band"`
	Correct    int       `json:"correct"`
	Close      int       `json:"close"`
	Poor       int       `json:"poor"`
	CreatedAt  time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, s, err := a.manager.Create()
	if err != nil {
		writeError(w, r, err)
		return
	}
	caps := s.Capabilities()
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:       id,
		Capture:  caps.Capture,
		Playback: caps.Playback,
	})
}

func (a *App) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.Remove(r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleLoadParagraph(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req loadParagraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	tier := paragraph.Difficulty(req.Tier)
	if !tier.IsValid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown tier " + strconv.Quote(req.Tier)})
		return
	}

	if err := s.Load(tier, req.Index); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paragraphDTO(string(tier), s.Paragraph(), s.Summary()))
}

func (a *App) handleGetParagraph(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	para := s.Paragraph()
	if para == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no paragraph loaded"})
		return
	}
	writeJSON(w, http.StatusOK, paragraphDTO("", para, s.Summary()))
}

func (a *App) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.StartAttempt(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handlePushAudio(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxAudioChunk+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read audio body"})
		return
	}
	if len(chunk) > maxAudioChunk {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "audio chunk too large"})
		return
	}
	if err := s.PushAudio(chunk); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleFinishAttempt(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	res, err := s.FinishAttempt(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := attemptResponse{
		Evaluated:  res.Summary.Evaluated,
		Transcript: res.Transcript,
		Words:      wordDTOs(res.Words),
	}
	if res.Summary.Evaluated {
		resp.Summary = newSummaryDTO(res.Summary)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleSay(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	var req sayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	var err error
	switch {
	case req.WordIndex != nil:
		err = s.SayWord(r.Context(), *req.WordIndex, req.Slow)
	case req.Paragraph:
		err = s.SayParagraph(r.Context(), req.Slow)
	case req.Text != "":
		err = s.Say(r.Context(), req.Text, req.Slow)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "one of text, word_index, or paragraph is required"})
		return
	}
	if err != nil {
		// Interrupted by a newer playback request; the learner asked for it.
		if errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	attempts, err := s.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptDTOs(attempts))
}

// session resolves the {id} path value to a live session, writing the error
// response itself when the lookup fails.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := a.manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return s, true
}

// writeError maps engine errors to HTTP status codes.
func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoCapture), errors.Is(err, session.ErrNoPlayback):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrNoParagraph),
		errors.Is(err, session.ErrAttemptInProgress),
		errors.Is(err, session.ErrNotRecording):
		status = http.StatusConflict
	case errors.Is(err, paragraph.ErrEmptyTier):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}

func paragraphDTO(tier string, para *paragraph.Paragraph, summary align.Summary) paragraphResponse {
	resp := paragraphResponse{
		Tier:  tier,
		Text:  para.Text,
		Words: wordDTOs(para.Words()),
	}
	if summary.Evaluated {
		resp.Summary = newSummaryDTO(summary)
	}
	return resp
}

func wordDTOs(words []align.Word) []wordDTO {
	out := make([]wordDTO, len(words))
	for i, w := range words {
		out[i] = wordDTO{
			Original: w.Original,
			Hint:     w.Hint,
			Status:   w.Status.String(),
		}
	}
	return out
}

func newSummaryDTO(s align.Summary) *summaryDTO {
	return &summaryDTO{
		Score:   s.Score,
		Band:    string(s.Band),
		Correct: s.Correct,
		Close:   s.Close,
		Poor:    s.Poor,
	}
}

func attemptDTOs(attempts []history.Attempt) []attemptDTO {
	out := make([]attemptDTO, len(attempts))
	for i, a := range attempts {
		out[i] = attemptDTO{
			ID:         a.ID,
			Tier:       string(a.Tier),
			Paragraph:  a.Paragraph,
			Transcript: a.Transcript,
			Score:      a.Score,
			Band:       string(a.Band),
			Correct:    a.Correct,
			Close:      a.Close,
			Poor:       a.Poor,
			CreatedAt:  a.CreatedAt,
		}
	}
	return out
}
