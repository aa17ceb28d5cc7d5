// Package modal wraps reservation controllers in open/closed shells and
// tracks the shells each browser session has opened.
package modal

import (
	"context"
	"sync"

	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/reservation"
)

// Shell is the visibility state around one form controller. Opening
// re-initializes the controller; closing resets it.
type Shell struct {
	id   string
	ctrl *reservation.Controller

	mu   sync.Mutex
	open bool
}

func NewShell(id string, ctrl *reservation.Controller) *Shell {
	s := &Shell{id: id, ctrl: ctrl}
	ctrl.SetCloser(s.Close)
	return s
}

type Snapshot struct {
	ID    string                      `json:"id"`
	Open  bool                        `json:"open"`
	Form  string                      `json:"form"`
	Item  domain.CatalogItem          `json:"item"`
	State domain.ReservationFormState `json:"state"`
}

func (s *Shell) ID() string                          { return s.id }
func (s *Shell) Controller() *reservation.Controller { return s.ctrl }

func (s *Shell) Open(ctx context.Context, item domain.CatalogItem, preset map[string]string) Snapshot {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
	s.ctrl.Open(ctx, reservation.InitialContext{Item: item, Fields: preset})
	return s.Snapshot()
}

// Close hides the shell and discards the form. Closing twice is harmless.
func (s *Shell) Close() {
	s.mu.Lock()
	wasOpen := s.open
	s.open = false
	s.mu.Unlock()
	if wasOpen {
		s.ctrl.Reset()
	}
}

func (s *Shell) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Shell) Snapshot() Snapshot {
	return Snapshot{
		ID:    s.id,
		Open:  s.IsOpen(),
		Form:  s.ctrl.Definition().Name,
		Item:  s.ctrl.Item(),
		State: s.ctrl.State(),
	}
}
