package modal

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jainjy/servo-sub017/internal/reservation"
)

var ErrNotFound = errors.New("modal not found")

// DefaultPerSession bounds the shells one session may keep around.
const DefaultPerSession = 8

type entry struct {
	shell   *Shell
	session string
	created time.Time
}

// Manager indexes shells by instance id. A shell is only visible to the
// session that created it.
type Manager struct {
	mu         sync.Mutex
	entries    map[string]*entry
	perSession int
	now        func() time.Time
}

func NewManager(perSession int) *Manager {
	if perSession <= 0 {
		perSession = DefaultPerSession
	}
	return &Manager{entries: map[string]*entry{}, perSession: perSession, now: time.Now}
}

// Create registers a new closed shell around ctrl.
func (m *Manager) Create(sessionID string, ctrl *reservation.Controller) *Shell {
	s := NewShell(uuid.NewString(), ctrl)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(sessionID)
	m.entries[s.ID()] = &entry{shell: s, session: sessionID, created: m.now()}
	return s
}

func (m *Manager) Get(sessionID, id string) (*Shell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.session != sessionID {
		return nil, ErrNotFound
	}
	return e.shell, nil
}

// Remove closes and forgets a shell.
func (m *Manager) Remove(sessionID, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok || e.session != sessionID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.entries, id)
	m.mu.Unlock()
	e.shell.Close()
	return nil
}

func (m *Manager) Count(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.session == sessionID {
			n++
		}
	}
	return n
}

// evictLocked makes room for one more shell: closed shells go first, then
// the oldest open one.
func (m *Manager) evictLocked(sessionID string) {
	var mine []string
	for id, e := range m.entries {
		if e.session == sessionID {
			mine = append(mine, id)
		}
	}
	if len(mine) < m.perSession {
		return
	}
	victim := ""
	for _, id := range mine {
		e := m.entries[id]
		if !e.shell.IsOpen() && (victim == "" || e.created.Before(m.entries[victim].created)) {
			victim = id
		}
	}
	if victim == "" {
		for _, id := range mine {
			if victim == "" || m.entries[id].created.Before(m.entries[victim].created) {
				victim = id
			}
		}
	}
	e := m.entries[victim]
	delete(m.entries, victim)
	go e.shell.Close()
}
