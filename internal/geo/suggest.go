package geo

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxSessions bounds the address searches kept in memory.
const DefaultMaxSessions = 10000

// Suggestion is the settled geocoder answer for the text a session typed.
type Suggestion struct {
	Query string `json:"query"`
	Place Place  `json:"place"`
}

type sessionSearch struct {
	search *AddressSearch
	used   time.Time

	mu   sync.Mutex
	last *Suggestion
}

// Suggester keeps one debounced AddressSearch per browser session. Clients
// push keystrokes with Input and poll Latest for the settled place.
type Suggester struct {
	geo   Searcher
	delay time.Duration
	max   int
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionSearch
}

func NewSuggester(g Searcher, delay time.Duration, maxSessions int, log *zap.Logger) *Suggester {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Suggester{
		geo:      g,
		delay:    delay,
		max:      maxSessions,
		log:      log,
		now:      time.Now,
		sessions: map[string]*sessionSearch{},
	}
}

// Input records the current address text of a session.
func (s *Suggester) Input(sid, text string) {
	s.session(sid).search.Input(text)
}

// Latest returns the place found for the session's current text. It
// reports false while the lookup is pending or when the text changed since.
func (s *Suggester) Latest(sid string) (Suggestion, bool) {
	s.mu.Lock()
	ss, ok := s.sessions[sid]
	s.mu.Unlock()
	if !ok {
		return Suggestion{}, false
	}
	ss.mu.Lock()
	last := ss.last
	ss.mu.Unlock()
	if last == nil || last.Query != ss.search.Current() {
		return Suggestion{}, false
	}
	return *last, true
}

func (s *Suggester) session(sid string) *sessionSearch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss, ok := s.sessions[sid]; ok {
		ss.used = s.now()
		return ss
	}
	if len(s.sessions) >= s.max {
		s.evictLocked()
	}
	ss := &sessionSearch{used: s.now()}
	ss.search = NewAddressSearch(s.geo, s.delay, func(q string, p Place) {
		ss.mu.Lock()
		ss.last = &Suggestion{Query: q, Place: p}
		ss.mu.Unlock()
	}, s.log)
	s.sessions[sid] = ss
	return ss
}

// evictLocked drops the least recently used session.
func (s *Suggester) evictLocked() {
	oldest := ""
	for sid, ss := range s.sessions {
		if oldest == "" || ss.used.Before(s.sessions[oldest].used) {
			oldest = sid
		}
	}
	if ss, ok := s.sessions[oldest]; ok {
		ss.search.Close()
		delete(s.sessions, oldest)
	}
}
