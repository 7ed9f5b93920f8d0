package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ecantero/habla/internal/paragraph"
)

// ErrSessionNotFound is returned by Manager lookups for unknown session IDs.
var ErrSessionNotFound = errors.New("session: not found")

// Manager tracks live practice sessions by ID. It is safe for concurrent
// use.
type Manager struct {
	cfg      Config
	settings Settings

	mu       sync.Mutex
	nextID   int
	sessions map[string]*Session
}

// NewManager creates a [Manager] that builds sessions from cfg and settings.
func NewManager(cfg Config, settings Settings) *Manager {
	return &Manager{
		cfg:      cfg,
		settings: settings,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns it with its assigned ID.
func (m *Manager) Create() (string, *Session, error) {
	m.mu.Lock()
	cfg := m.cfg
	settings := m.settings
	m.mu.Unlock()

	s, err := New(cfg, settings)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("s%d", m.nextID)
	m.sessions[id] = s
	m.mu.Unlock()

	return id, s, nil
}

// UpdateSettings replaces the settings used for sessions created from now
// on. Live sessions keep the settings they were built with.
func (m *Manager) UpdateSettings(settings Settings) {
	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()
}

// UpdateCorpus replaces the corpus used for sessions created from now on.
// Live sessions keep their current corpus.
func (m *Manager) UpdateCorpus(c *paragraph.Corpus) {
	m.mu.Lock()
	m.cfg.Corpus = c
	m.mu.Unlock()
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

// Remove closes the session with the given ID and forgets it.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s.Close()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every live session and empties the manager.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
